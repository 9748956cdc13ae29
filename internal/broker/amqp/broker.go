package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/internal/broker"
	"github.com/surendratiwari3/taskexec/internal/provider"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/schema"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
)

// AMQPBroker delivers triggers through a RabbitMQ queue
type AMQPBroker struct {
	config       *config.Config
	amqpProvider provider.AmqpProviderInterface

	mu         sync.Mutex
	stopFn     context.CancelFunc
	doneStopCh chan struct{}
}

// NewAMQPBroker opens the connection pool and declares the exchange, the trigger queue and
// their binding. A nil amqpProvider builds one from cfg.AMQP.
func NewAMQPBroker(cfg *config.Config, amqpProvider provider.AmqpProviderInterface) (broker.Broker, error) {
	if cfg == nil || cfg.AMQP == nil {
		return nil, appErrors.ErrNilConfig
	}
	amqpBroker := &AMQPBroker{
		config:       cfg,
		amqpProvider: amqpProvider,
	}

	if amqpBroker.amqpProvider == nil {
		amqpBroker.amqpProvider = provider.NewAmqpProvider(cfg.AMQP)
	}

	if err := amqpBroker.amqpProvider.CreateConnectionPool(); err != nil {
		logger.ApplicationLogger.WithError(err).Error("failed to create connection pool, return")
		return nil, err
	}

	if err := amqpBroker.setupExchangeQueueBinding(); err != nil {
		logger.ApplicationLogger.WithError(err).Error("failed to create exchange queue binding, return")
		return nil, err
	}

	return amqpBroker, nil
}

// Publish sends a trigger to the exchange and waits for the publisher confirm
func (b *AMQPBroker) Publish(ctx context.Context, trigger *schema.Trigger) error {
	if trigger == nil {
		return appErrors.ErrInvalidTrigger
	}
	body, err := schema.TriggerToBytes(trigger)
	if err != nil {
		return fmt.Errorf("JSON marshal error: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    trigger.UUID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}
	return b.amqpProvider.AmqpPublishWithConfirm(ctx, b.getRoutingKey(), msg, b.getExchangeName())
}

func (b *AMQPBroker) setupExchangeQueueBinding() error {
	conn, err := b.amqpProvider.GetConnectionFromPool()
	if err != nil {
		return err
	}
	defer b.releaseConnection(conn)

	channel, _, err := b.amqpProvider.CreateAmqpChannel(conn, false)
	if err != nil {
		return err
	}
	defer b.closeChannel(channel)

	if err = b.amqpProvider.DeclareExchange(channel, b.getExchangeName(), b.getExchangeType()); err != nil {
		return err
	}

	if err = b.amqpProvider.DeclareQueue(channel, b.getTaskQueue(), amqp.Table(b.config.AMQP.QueueDeclareArgs)); err != nil {
		return err
	}

	return b.amqpProvider.QueueExchangeBind(channel, b.getTaskQueue(), b.getRoutingKey(), b.getExchangeName())
}

// StopConsumer stops a running consumer and waits for it to return
func (b *AMQPBroker) StopConsumer() {
	b.mu.Lock()
	stop, done := b.stopFn, b.doneStopCh
	b.mu.Unlock()
	if stop == nil {
		return
	}
	stop()
	<-done
}

// StartConsumer consumes the trigger queue until ctx is done or StopConsumer is called
func (b *AMQPBroker) StartConsumer(ctx context.Context, consumerTag string, handler broker.TriggerHandler) error {
	if handler == nil {
		return appErrors.ErrNilHandler
	}

	conn, err := b.amqpProvider.GetConnectionFromPool()
	if err != nil {
		return err
	}
	defer b.releaseConnection(conn)

	channel, _, err := b.amqpProvider.CreateAmqpChannel(conn, false)
	if err != nil {
		return err
	}
	defer b.closeChannel(channel)

	if err = b.amqpProvider.SetChannelQoS(channel, b.config.AMQP.PrefetchCount); err != nil {
		logger.ApplicationLogger.WithError(err).Error("failed to set channel qos, exit")
		return err
	}

	deliveries, err := b.amqpProvider.CreateConsumer(channel, b.getTaskQueue(), consumerTag)
	if err != nil {
		logger.ApplicationLogger.WithError(err).Error("failed to get deliveries, exit")
		return err
	}

	consumerCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	b.mu.Lock()
	b.stopFn, b.doneStopCh = cancel, done
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.stopFn, b.doneStopCh = nil, nil
		b.mu.Unlock()
		cancel()
		close(done)
	}()

	logger.ApplicationLogger.WithFields(logrus.Fields{"queue": b.getTaskQueue()}).Info("[*] Waiting for triggers")
	for {
		select {
		case <-consumerCtx.Done():
			logger.ApplicationLogger.Warning("stop request in consumer, exit")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			if err := b.processDelivery(d, handler); err != nil {
				logger.ApplicationLogger.WithError(err).Error("error in trigger processor")
			}
		}
	}
}

func (b *AMQPBroker) processDelivery(delivery amqp.Delivery, handler broker.TriggerHandler) error {
	if len(delivery.Body) == 0 {
		_ = delivery.Nack(false, false)
		return appErrors.ErrEmptyMessage
	}

	trigger, err := schema.BytesToTrigger(delivery.Body)
	if err != nil {
		_ = delivery.Nack(false, false)
		return err
	}

	if err := handler(trigger); err != nil {
		_ = delivery.Nack(false, false)
		return err
	}
	return delivery.Ack(false)
}

func (b *AMQPBroker) BrokerType() string {
	return "rabbitmq"
}

func (b *AMQPBroker) Close() error {
	b.StopConsumer()
	return b.amqpProvider.CloseConnection()
}

func (b *AMQPBroker) releaseConnection(conn *amqp.Connection) {
	if err := b.amqpProvider.ReleaseConnectionToPool(conn); err != nil {
		logger.ApplicationLogger.WithError(err).Error("failed to release amqp connection")
	}
}

func (b *AMQPBroker) closeChannel(channel *amqp.Channel) {
	if err := b.amqpProvider.CloseAmqpChannel(channel); err != nil {
		logger.ApplicationLogger.WithError(err).Error("failed to close amqp channel")
	}
}

// getRoutingKey falls back to the queue name unless a direct exchange has a binding key
func (b *AMQPBroker) getRoutingKey() string {
	if b.config.AMQP.BindingKey == "" {
		return b.getTaskQueue()
	}
	if b.isDirectExchange() {
		return b.config.AMQP.BindingKey
	}
	return b.getTaskQueue()
}

func (b *AMQPBroker) isDirectExchange() bool {
	return b.config.AMQP != nil && b.config.AMQP.ExchangeType == "direct"
}

func (b *AMQPBroker) getExchangeName() string {
	return b.config.AMQP.Exchange
}

func (b *AMQPBroker) getExchangeType() string {
	return b.config.AMQP.ExchangeType
}

func (b *AMQPBroker) getTaskQueue() string {
	return b.config.TaskQueueName
}
