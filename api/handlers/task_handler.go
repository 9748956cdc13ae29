package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/api/webhook"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/schema"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
	"github.com/surendratiwari3/taskexec/service"
)

// RegisterTaskRequest registers a webhook backed task
type RegisterTaskRequest struct {
	AppURL  string                 `json:"app_url" validate:"required,url"`
	Reasons []string               `json:"reasons" validate:"required,min=1,dive,oneof=background-fetch remote-notification location geofencing manual"`
	Options map[string]interface{} `json:"options"`
}

// TaskResponse describes a registered task
type TaskResponse struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	AppID   string                 `json:"app_id"`
	AppURL  string                 `json:"app_url,omitempty"`
	Reasons []string               `json:"reasons"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type TaskHandler struct {
	service  service.Service
	client   *http.Client
	validate *validator.Validate
}

// NewTaskHandler creates the handlers; client is used by webhook tasks and may be nil
func NewTaskHandler(svc service.Service, client *http.Client) *TaskHandler {
	return &TaskHandler{
		service:  svc,
		client:   client,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterTaskHandlerV1 handles POST /apps/:app_id/tasks/:task_name
func (h *TaskHandler) RegisterTaskHandlerV1(c echo.Context) error {
	var req RegisterTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON payload"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Invalid task: %s", err.Error())})
	}

	task, err := h.service.RegisterTask(c.Param("app_id"), c.Param("task_name"), req.AppURL, webhook.NewConsumer(req.Reasons, h.client), req.Options)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// UnregisterTaskHandlerV1 handles DELETE /apps/:app_id/tasks/:task_name
func (h *TaskHandler) UnregisterTaskHandlerV1(c echo.Context) error {
	if err := h.service.UnregisterTask(c.Param("app_id"), c.Param("task_name")); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UnregisterAllTasksHandlerV1 handles DELETE /apps/:app_id/tasks
func (h *TaskHandler) UnregisterAllTasksHandlerV1(c echo.Context) error {
	removed := h.service.UnregisterAllTasks(c.Param("app_id"))
	return c.JSON(http.StatusOK, map[string]int{"removed": removed})
}

// GetTaskHandlerV1 handles GET /apps/:app_id/tasks/:task_name
func (h *TaskHandler) GetTaskHandlerV1(c echo.Context) error {
	task, err := h.service.GetTask(c.Param("app_id"), c.Param("task_name"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// ListTasksHandlerV1 handles GET /apps/:app_id/tasks
func (h *TaskHandler) ListTasksHandlerV1(c echo.Context) error {
	tasks := h.service.TasksForApp(c.Param("app_id"))
	resp := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	return c.JSON(http.StatusOK, resp)
}

func toTaskResponse(task schema.Task) TaskResponse {
	resp := TaskResponse{
		ID:      task.ID(),
		Name:    task.Name(),
		AppID:   task.AppID(),
		AppURL:  task.AppURL(),
		Reasons: []string{},
		Options: task.Options(),
	}
	if consumer := task.Consumer(); consumer != nil {
		resp.Reasons = consumer.Reasons()
	}
	return resp
}

// errorJSON maps service errors to status codes
func errorJSON(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, appErrors.ErrTaskNotRegistered), errors.Is(err, appErrors.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, appErrors.ErrInvalidTask), errors.Is(err, appErrors.ErrInvalidTrigger),
		errors.Is(err, appErrors.ErrNilConsumer):
		status = http.StatusBadRequest
	case errors.Is(err, appErrors.ErrUnsupportedBroker), errors.Is(err, appErrors.ErrServiceStopped):
		status = http.StatusServiceUnavailable
	default:
		logger.ApplicationLogger.WithFields(logrus.Fields{"path": c.Path()}).WithError(err).Error("request failed")
	}
	return c.JSON(status, ErrorResponse{Error: err.Error()})
}
