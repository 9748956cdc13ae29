package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Launch reasons a trigger can carry
const (
	ReasonBackgroundFetch    = "background-fetch"
	ReasonRemoteNotification = "remote-notification"
	ReasonLocation           = "location"
	ReasonGeofencing         = "geofencing"
	ReasonManual             = "manual"
)

// Trigger asks the service to run every registered task that reacts to Reason.
// AppID and TaskName narrow the selection when set.
type Trigger struct {
	UUID      string                 `json:"uuid"`
	Reason    string                 `json:"reason" validate:"required,oneof=background-fetch remote-notification location geofencing manual"`
	AppID     string                 `json:"app_id,omitempty"`
	TaskName  string                 `json:"task_name,omitempty" validate:"omitempty,max=128"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewTrigger creates a trigger with a fresh uuid
func NewTrigger(reason string, data map[string]interface{}) *Trigger {
	return &Trigger{
		UUID:      fmt.Sprintf("trigger_%v", uuid.New().String()),
		Reason:    reason,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
}

// Matches reports whether task is selected by the trigger's filters and reason
func (t *Trigger) Matches(task Task) bool {
	if task == nil {
		return false
	}
	if t.AppID != "" && t.AppID != task.AppID() {
		return false
	}
	if t.TaskName != "" && t.TaskName != task.Name() {
		return false
	}
	return SupportsReason(task.Consumer(), t.Reason)
}

func TriggerToBytes(trigger *Trigger) ([]byte, error) {
	return json.Marshal(trigger)
}

func BytesToTrigger(data []byte) (*Trigger, error) {
	var trigger Trigger

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	if err := decoder.Decode(&trigger); err != nil {
		return nil, fmt.Errorf("failed to decode trigger: %w", err)
	}

	return &trigger, nil
}
