package redis

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/internal/broker"
	"github.com/surendratiwari3/taskexec/internal/provider"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/schema"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
)

// RedisBroker queues triggers on a redis list: LPUSH to publish, BRPOP to consume
type RedisBroker struct {
	provider provider.RedisProviderInterface
	config   *config.Config

	mu     sync.Mutex
	stopFn context.CancelFunc
	done   chan struct{}
}

func NewRedisBroker(provider provider.RedisProviderInterface, config *config.Config) (broker.Broker, error) {
	if config == nil {
		return nil, appErrors.ErrNilConfig
	}
	if config.TaskQueueName == "" {
		return nil, appErrors.ErrEmptyQueueName
	}
	return &RedisBroker{
		provider: provider,
		config:   config,
	}, nil
}

func (rb *RedisBroker) Publish(ctx context.Context, trigger *schema.Trigger) error {
	if trigger == nil {
		return appErrors.ErrInvalidTrigger
	}
	if err := rb.provider.Publish(ctx, rb.config.TaskQueueName, trigger); err != nil {
		logger.ApplicationLogger.WithFields(logrus.Fields{"trigger": trigger.UUID}).WithError(err).Error("failed to publish trigger")
		return err
	}
	return nil
}

// StartConsumer blocks until ctx is done, StopConsumer is called or redis fails
func (rb *RedisBroker) StartConsumer(ctx context.Context, consumerTag string, handler broker.TriggerHandler) error {
	if handler == nil {
		return appErrors.ErrNilHandler
	}

	consumerCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	rb.mu.Lock()
	rb.stopFn, rb.done = cancel, done
	rb.mu.Unlock()
	defer func() {
		rb.mu.Lock()
		rb.stopFn, rb.done = nil, nil
		rb.mu.Unlock()
		cancel()
		close(done)
	}()

	logger.ApplicationLogger.WithFields(logrus.Fields{"queue": rb.config.TaskQueueName, "consumer": consumerTag}).Info("[*] Waiting for triggers")
	return rb.provider.Subscribe(consumerCtx, rb.config.TaskQueueName, handler)
}

func (rb *RedisBroker) StopConsumer() {
	rb.mu.Lock()
	stop, done := rb.stopFn, rb.done
	rb.mu.Unlock()
	if stop == nil {
		return
	}
	stop()
	<-done
}

func (rb *RedisBroker) BrokerType() string {
	return "redis"
}

func (rb *RedisBroker) Close() error {
	rb.StopConsumer()
	return rb.provider.CloseConnection()
}
