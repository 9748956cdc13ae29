package errors

import "errors"

var (
	ErrNilCallback        = errors.New("execution request callback cannot be nil")
	ErrServiceStopped     = errors.New("task service is stopped")
	ErrWorkerGroupStopped = errors.New("worker group is stopped")
)
