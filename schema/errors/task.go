package errors

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotRegistered = errors.New("task not registered")
	ErrInvalidTask       = errors.New("task is invalid")
	ErrNilConsumer       = errors.New("task consumer cannot be nil")
	ErrInvalidTrigger    = errors.New("trigger is invalid")
	ErrRecordNotFound    = errors.New("execution request record not found")
	ErrInvalidRecord     = errors.New("execution request record is invalid")
	ErrExecutionTimeout  = errors.New("task execution timed out")
)

// TaskError carries the identity of the task whose execution failed
type TaskError struct {
	TaskID string
	Err    error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.TaskID, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// NewTaskError wraps err with the failing task id
func NewTaskError(taskID string, err error) error {
	return &TaskError{TaskID: taskID, Err: err}
}
