package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/surendratiwari3/taskexec/schema"
)

// TriggerResponse is returned by the synchronous trigger endpoint
type TriggerResponse struct {
	RequestID   string        `json:"request_id"`
	TriggerID   string        `json:"trigger_id"`
	Results     []interface{} `json:"results"`
	FetchResult string        `json:"fetch_result"`
}

// RunTriggerHandlerV1 handles POST /triggers: it runs the matching tasks and waits for all of them
func (h *TaskHandler) RunTriggerHandlerV1(c echo.Context) error {
	trigger, err := h.bindTrigger(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	done := make(chan []interface{}, 1)
	req, err := h.service.RunTasks(c.Request().Context(), trigger, func(results []interface{}) {
		done <- results
	})
	if err != nil {
		return errorJSON(c, err)
	}

	select {
	case results := <-done:
		return c.JSON(http.StatusOK, TriggerResponse{
			RequestID:   req.ID(),
			TriggerID:   trigger.UUID,
			Results:     results,
			FetchResult: schema.AggregateFetchResults(results).String(),
		})
	case <-c.Request().Context().Done():
		return c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "request cancelled before all tasks finished"})
	}
}

// SendTriggerHandlerV1 handles POST /triggers/async: the trigger is queued on the broker
func (h *TaskHandler) SendTriggerHandlerV1(c echo.Context) error {
	trigger, err := h.bindTrigger(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	if err := h.service.SendTrigger(c.Request().Context(), trigger); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"trigger_id": trigger.UUID})
}

// GetRequestHandlerV1 handles GET /requests/:request_id
func (h *TaskHandler) GetRequestHandlerV1(c echo.Context) error {
	record, err := h.service.GetRequestRecord(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, record)
}

func (h *TaskHandler) bindTrigger(c echo.Context) (*schema.Trigger, error) {
	var trigger schema.Trigger
	if err := c.Bind(&trigger); err != nil {
		return nil, errors.New("invalid JSON payload")
	}
	if trigger.UUID == "" {
		trigger.UUID = fmt.Sprintf("trigger_%v", uuid.NewString())
	}
	if trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = time.Now().UTC()
	}
	if err := h.validate.Struct(trigger); err != nil {
		return nil, fmt.Errorf("invalid trigger: %s", err.Error())
	}
	return &trigger, nil
}
