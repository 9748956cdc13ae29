package task

import (
	"github.com/surendratiwari3/taskexec/schema"
)

type TaskRegistrarInterface interface {
	RegisterTask(appID, name, appURL string, consumer schema.TaskConsumer, options map[string]interface{}) (schema.Task, error)
	UnregisterTask(appID, name string) error
	UnregisterAllTasks(appID string) int
	GetTask(appID, name string) (schema.Task, error)
	IsTaskRegistered(appID, name string) bool
	TasksForApp(appID string) []schema.Task
	TasksForTrigger(trigger *schema.Trigger) []schema.Task
	GetRegisteredTaskCount() uint
}
