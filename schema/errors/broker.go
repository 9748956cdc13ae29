package errors

import "errors"

var (
	ErrUnsupportedBroker   = errors.New("unsupported broker")
	ErrUnsupportedStore    = errors.New("unsupported store")
	ErrEmptyMessage        = errors.New("received an empty message")
	ErrConsumerNotRunning  = errors.New("consumer is not running")
	ErrNilHandler          = errors.New("handler function cannot be nil")
	ErrEmptyQueueName      = errors.New("queue name cannot be empty")
	ErrConnectionPoolEmpty = errors.New("connection pool is empty")
)
