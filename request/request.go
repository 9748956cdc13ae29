// Package request tracks the tasks started for one trigger and reports their
// aggregated results through a single callback once all of them have finished.
package request

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/schema"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
)

// Callback receives the non-nil results of every tracked task, in the order the tasks were added.
type Callback func(results []interface{})

type trackedTask struct {
	task     schema.Task
	result   interface{}
	reported bool
}

// ExecutionRequest waits for a set of tasks to report a result and then fires its callback
// exactly once. It is safe for concurrent use.
type ExecutionRequest struct {
	id        string
	createdAt time.Time

	mu       sync.Mutex
	callback Callback
	order    []string
	tasks    map[string]*trackedTask
	fired    bool
}

// NewExecutionRequest creates a request that will hand the results to callback
func NewExecutionRequest(callback Callback) (*ExecutionRequest, error) {
	if callback == nil {
		return nil, appErrors.ErrNilCallback
	}
	return &ExecutionRequest{
		id:        fmt.Sprintf("request_%v", uuid.New().String()),
		createdAt: time.Now().UTC(),
		callback:  callback,
		tasks:     make(map[string]*trackedTask),
	}, nil
}

func (r *ExecutionRequest) ID() string {
	return r.id
}

func (r *ExecutionRequest) CreatedAt() time.Time {
	return r.createdAt
}

// AddTask makes the request wait for task. Adding a task twice, adding nil, or adding
// after the callback fired has no effect.
func (r *ExecutionRequest) AddTask(task schema.Task) {
	if isNilTask(task) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fired {
		logger.ApplicationLogger.WithFields(logrus.Fields{"request": r.id, "task": task.ID()}).Warn("task added to a finished execution request, ignoring")
		return
	}
	id := task.ID()
	if _, ok := r.tasks[id]; ok {
		return
	}
	r.tasks[id] = &trackedTask{task: task}
	r.order = append(r.order, id)
}

// TaskDidFinishWithResult records the result of task and evaluates the request.
// Results for tasks the request does not track, and repeated results, are dropped.
func (r *ExecutionRequest) TaskDidFinishWithResult(task schema.Task, result interface{}) {
	if isNilTask(task) {
		return
	}
	r.mu.Lock()
	tracked, ok := r.tasks[task.ID()]
	switch {
	case !ok:
		r.mu.Unlock()
		logger.ApplicationLogger.WithFields(logrus.Fields{"request": r.id, "task": task.ID()}).Warn("result for a task not tracked by execution request")
		return
	case tracked.reported:
		r.mu.Unlock()
		logger.ApplicationLogger.WithFields(logrus.Fields{"request": r.id, "task": task.ID()}).Warn("duplicate result for task, ignoring")
		return
	}
	tracked.result = result
	tracked.reported = true
	r.mu.Unlock()

	r.MaybeEvaluate()
}

// IsIncludingTask reports whether task is tracked by the request
func (r *ExecutionRequest) IsIncludingTask(task schema.Task) bool {
	if isNilTask(task) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[task.ID()]
	return ok
}

// MaybeEvaluate fires the callback when every tracked task has reported. A request with
// no tasks fires with an empty slice.
func (r *ExecutionRequest) MaybeEvaluate() {
	r.mu.Lock()
	if r.fired {
		r.mu.Unlock()
		return
	}
	results := make([]interface{}, 0, len(r.order))
	for _, id := range r.order {
		tracked := r.tasks[id]
		if !tracked.reported {
			r.mu.Unlock()
			return
		}
		if tracked.result != nil {
			results = append(results, tracked.result)
		}
	}
	r.fired = true
	callback := r.callback
	r.callback = nil
	r.mu.Unlock()

	callback(results)
}

// Done reports whether the callback has fired
func (r *ExecutionRequest) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fired
}

// Pending returns the ids of tracked tasks that have not reported yet
func (r *ExecutionRequest) Pending() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	pending := make([]string, 0)
	for _, id := range r.order {
		if !r.tasks[id].reported {
			pending = append(pending, id)
		}
	}
	return pending
}

// Tasks returns the tracked tasks in the order they were added
func (r *ExecutionRequest) Tasks() []schema.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := make([]schema.Task, 0, len(r.order))
	for _, id := range r.order {
		tasks = append(tasks, r.tasks[id].task)
	}
	return tasks
}

func isNilTask(task schema.Task) bool {
	if task == nil {
		return true
	}
	v := reflect.ValueOf(task)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
