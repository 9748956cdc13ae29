package schema

import (
	"context"
	"strings"
)

// Task is a background task registered by an app. Tasks are compared by ID.
type Task interface {
	ID() string
	Name() string
	AppID() string
	AppURL() string
	Options() map[string]interface{}
	Consumer() TaskConsumer
}

// TaskConsumer runs the body of a task when one of its launch reasons fires.
type TaskConsumer interface {
	// Reasons lists the trigger reasons the consumer reacts to.
	Reasons() []string
	Execute(ctx context.Context, task Task, trigger *Trigger) (interface{}, error)
}

// ResultNormalizer is implemented by consumers that map raw execution output to the value
// reported to execution requests.
type ResultNormalizer interface {
	NormalizeResult(task Task, result interface{}, err error) interface{}
}

// TaskConsumerFunc adapts a plain function into a TaskConsumer for the given reasons.
type TaskConsumerFunc struct {
	LaunchReasons []string
	Fn            func(ctx context.Context, task Task, trigger *Trigger) (interface{}, error)
}

func (f TaskConsumerFunc) Reasons() []string {
	return f.LaunchReasons
}

func (f TaskConsumerFunc) Execute(ctx context.Context, task Task, trigger *Trigger) (interface{}, error) {
	return f.Fn(ctx, task, trigger)
}

var appIDEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// TaskID builds the identity of the task name within appID. The app id is
// escaped so the first ':' always separates it from the name.
func TaskID(appID, name string) string {
	return appIDEscaper.Replace(appID) + ":" + name
}

// SupportsReason reports whether consumer handles reason
func SupportsReason(consumer TaskConsumer, reason string) bool {
	if consumer == nil {
		return false
	}
	for _, r := range consumer.Reasons() {
		if strings.EqualFold(r, reason) {
			return true
		}
	}
	return false
}

// BackgroundTask is the default Task implementation held by the registry
type BackgroundTask struct {
	TaskName    string                 `json:"name" validate:"required,max=128"`
	TaskAppID   string                 `json:"app_id" validate:"required,max=128,excludes=:"`
	TaskAppURL  string                 `json:"app_url,omitempty" validate:"omitempty,url"`
	TaskOptions map[string]interface{} `json:"options,omitempty"`
	consumer    TaskConsumer
}

// NewBackgroundTask creates a task bound to consumer
func NewBackgroundTask(appID, name, appURL string, consumer TaskConsumer, options map[string]interface{}) *BackgroundTask {
	if options == nil {
		options = map[string]interface{}{}
	}
	return &BackgroundTask{
		TaskName:    name,
		TaskAppID:   appID,
		TaskAppURL:  appURL,
		TaskOptions: options,
		consumer:    consumer,
	}
}

func (t *BackgroundTask) ID() string {
	return TaskID(t.TaskAppID, t.TaskName)
}

func (t *BackgroundTask) Name() string {
	return t.TaskName
}

func (t *BackgroundTask) AppID() string {
	return t.TaskAppID
}

func (t *BackgroundTask) AppURL() string {
	return t.TaskAppURL
}

func (t *BackgroundTask) Options() map[string]interface{} {
	return t.TaskOptions
}

func (t *BackgroundTask) Consumer() TaskConsumer {
	return t.consumer
}
