// Package webhook runs a task by POSTing the trigger to the app_url the task was registered with.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/internal/utils"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/schema"
)

// Task options understood by the consumer
const (
	TimeoutOption       = "timeout_seconds"
	AuthorizationOption = "authorization"
	OmitOptionsOption   = "omit_options"
)

const maxResponseBytes = 1 << 20

// Payload is the body sent to the app
type Payload struct {
	TaskID   string                 `json:"task_id"`
	TaskName string                 `json:"task_name"`
	AppID    string                 `json:"app_id"`
	Options  map[string]interface{} `json:"options,omitempty"`
	Trigger  *schema.Trigger        `json:"trigger"`
}

// Response is what the app answers with. Result may be a fetch result string or any JSON value.
type Response struct {
	Result interface{} `json:"result"`
}

type Consumer struct {
	reasons []string
	client  *http.Client
}

func NewConsumer(reasons []string, client *http.Client) *Consumer {
	if client == nil {
		client = &http.Client{}
	}
	return &Consumer{reasons: reasons, client: client}
}

func (c *Consumer) Reasons() []string {
	return c.reasons
}

// Execute posts the trigger to the task's app_url. A 2xx answer with an empty body counts as no data.
func (c *Consumer) Execute(ctx context.Context, task schema.Task, trigger *schema.Trigger) (interface{}, error) {
	if task.AppURL() == "" {
		return nil, fmt.Errorf("task %s has no app_url", task.ID())
	}
	if timeout := utils.GetInt(task.Options()[TimeoutOption]); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	payload := Payload{
		TaskID:   task.ID(),
		TaskName: task.Name(),
		AppID:    task.AppID(),
		Trigger:  trigger,
	}
	if !utils.GetBool(task.Options()[OmitOptionsOption]) {
		payload.Options = task.Options()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("JSON marshal error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, task.AppURL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if trigger != nil {
		req.Header.Set("X-Taskexec-Trigger", trigger.UUID)
	}
	if auth := utils.GetString(task.Options()[AuthorizationOption]); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("app answered %d for task %s", resp.StatusCode, task.ID())
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return schema.FetchResultNoData, nil
	}

	var answer Response
	if err := json.Unmarshal(raw, &answer); err != nil {
		logger.ApplicationLogger.WithFields(logrus.Fields{"task": task.ID()}).WithError(err).Warn("unreadable webhook answer")
		return nil, fmt.Errorf("JSON unmarshal error: %w", err)
	}
	if s, ok := answer.Result.(string); ok {
		if parsed, err := schema.ParseFetchResult(s); err == nil {
			return parsed, nil
		}
	}
	return answer.Result, nil
}
