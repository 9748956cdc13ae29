package broker

import (
	"context"

	"github.com/surendratiwari3/taskexec/schema"
)

// TriggerHandler is called for every trigger the consumer receives
type TriggerHandler func(trigger *schema.Trigger) error

// Broker - a common interface for all brokers
type Broker interface {
	// StartConsumer blocks, handing triggers to handler, until ctx is done or StopConsumer is called.
	StartConsumer(ctx context.Context, consumerTag string, handler TriggerHandler) error
	StopConsumer()
	Publish(ctx context.Context, trigger *schema.Trigger) error
	BrokerType() string
	Close() error
}
