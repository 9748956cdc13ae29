package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/internal/task"
	"github.com/surendratiwari3/taskexec/internal/validation"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/schema"
	appError "github.com/surendratiwari3/taskexec/schema/errors"
)

type DefaultTaskRegistrar struct {
	registeredTasks *sync.Map
	// guards registration so the count stays in step with the map
	mu                   sync.Mutex
	registeredTasksCount uint
	validate             *validator.Validate
}

func NewDefaultTaskRegistrar() task.TaskRegistrarInterface {
	return &DefaultTaskRegistrar{
		registeredTasks: new(sync.Map),
		validate:        validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterTask stores a task for appID. Registering an existing name replaces its url,
// consumer and options but keeps its identity.
func (r *DefaultTaskRegistrar) RegisterTask(appID, name, appURL string, consumer schema.TaskConsumer, options map[string]interface{}) (schema.Task, error) {
	if err := validation.ValidateConsumer(consumer); err != nil {
		return nil, err
	}
	bgTask := schema.NewBackgroundTask(appID, name, appURL, consumer, options)
	if err := r.validate.Struct(bgTask); err != nil {
		return nil, fmt.Errorf("%w: %s", appError.ErrInvalidTask, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, loaded := r.registeredTasks.Swap(bgTask.ID(), bgTask); !loaded {
		r.registeredTasksCount = r.registeredTasksCount + 1
		logger.ApplicationLogger.WithFields(logrus.Fields{"task": bgTask.ID()}).Info("task registered")
	} else {
		logger.ApplicationLogger.WithFields(logrus.Fields{"task": bgTask.ID()}).Info("task re-registered with new options")
	}
	return bgTask, nil
}

// UnregisterTask removes a task
func (r *DefaultTaskRegistrar) UnregisterTask(appID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, loaded := r.registeredTasks.LoadAndDelete(schema.TaskID(appID, name)); !loaded {
		return fmt.Errorf("%w: %s", appError.ErrTaskNotRegistered, schema.TaskID(appID, name))
	}
	r.registeredTasksCount = r.registeredTasksCount - 1
	return nil
}

// UnregisterAllTasks removes every task of appID and returns how many were removed
func (r *DefaultTaskRegistrar) UnregisterAllTasks(appID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	r.registeredTasks.Range(func(key, value interface{}) bool {
		if value.(schema.Task).AppID() == appID {
			r.registeredTasks.Delete(key)
			removed++
		}
		return true
	})
	r.registeredTasksCount = r.registeredTasksCount - uint(removed)
	return removed
}

// IsTaskRegistered returns true if the task name is registered for appID
func (r *DefaultTaskRegistrar) IsTaskRegistered(appID, name string) bool {
	_, ok := r.registeredTasks.Load(schema.TaskID(appID, name))
	return ok
}

// GetTask returns registered task by app and name
func (r *DefaultTaskRegistrar) GetTask(appID, name string) (schema.Task, error) {
	registered, ok := r.registeredTasks.Load(schema.TaskID(appID, name))
	if !ok {
		return nil, fmt.Errorf("%w: %s", appError.ErrTaskNotRegistered, schema.TaskID(appID, name))
	}
	return registered.(schema.Task), nil
}

// TasksForApp returns the tasks of appID sorted by name
func (r *DefaultTaskRegistrar) TasksForApp(appID string) []schema.Task {
	return r.collect(func(t schema.Task) bool { return t.AppID() == appID })
}

// TasksForTrigger returns the tasks selected by trigger, sorted by id
func (r *DefaultTaskRegistrar) TasksForTrigger(trigger *schema.Trigger) []schema.Task {
	if trigger == nil {
		return nil
	}
	return r.collect(trigger.Matches)
}

func (r *DefaultTaskRegistrar) GetRegisteredTaskCount() uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registeredTasksCount
}

func (r *DefaultTaskRegistrar) collect(keep func(schema.Task) bool) []schema.Task {
	tasks := make([]schema.Task, 0)
	r.registeredTasks.Range(func(_, value interface{}) bool {
		if t := value.(schema.Task); keep(t) {
			tasks = append(tasks, t)
		}
		return true
	})
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID() < tasks[j].ID() })
	return tasks
}
