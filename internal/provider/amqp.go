package provider

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/logger"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
)

type AmqpProviderInterface interface {
	AmqpPublishWithConfirm(ctx context.Context, routingKey string, amqpMsg amqp.Publishing, exchangeName string) error
	CreateAmqpChannel(conn *amqp.Connection, confirm bool) (*amqp.Channel, chan amqp.Confirmation, error)
	CloseAmqpChannel(channel *amqp.Channel) error
	CloseConnection() error
	CreateConnectionPool() error
	CreateConsumer(channel *amqp.Channel, queueName, consumerTag string) (<-chan amqp.Delivery, error)
	DeclareQueue(channel *amqp.Channel, queueName string, declareQueueArgs amqp.Table) error
	DeclareExchange(channel *amqp.Channel, exchangeName string, exchangeType string) error
	GetConnectionFromPool() (*amqp.Connection, error)
	QueueExchangeBind(channel *amqp.Channel, queueName string, routingKey string, exchangeName string) error
	ReleaseConnectionToPool(conn *amqp.Connection) error
	SetChannelQoS(channel *amqp.Channel, prefetchCount int) error
}

type amqpProvider struct {
	amqpConf         *config.AMQPConfig
	connectionPool   []*amqp.Connection
	connectionsMutex sync.Mutex
	confirmTimeout   time.Duration
}

func NewAmqpProvider(amqpConfig *config.AMQPConfig) AmqpProviderInterface {
	return &amqpProvider{amqpConf: amqpConfig, confirmTimeout: 5 * time.Second}
}

func (ap *amqpProvider) CreateAmqpChannel(conn *amqp.Connection, confirm bool) (*amqp.Channel, chan amqp.Confirmation, error) {
	if conn == nil {
		return nil, nil, appErrors.ErrConnectionPoolEmpty
	}
	channel, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	if confirm {
		if err = channel.Confirm(false); err != nil {
			_ = channel.Close()
			return nil, nil, err
		}
		return channel, channel.NotifyPublish(make(chan amqp.Confirmation, 1)), nil
	}

	return channel, nil, nil
}

func (ap *amqpProvider) CloseAmqpChannel(channel *amqp.Channel) error {
	return channel.Close()
}

func (ap *amqpProvider) CreateConsumer(channel *amqp.Channel, queueName, consumerTag string) (<-chan amqp.Delivery, error) {
	return channel.Consume(
		queueName,   // queue
		consumerTag, // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // arguments
	)
}

func (ap *amqpProvider) DeclareExchange(channel *amqp.Channel, exchangeName string, exchangeType string) error {
	return channel.ExchangeDeclare(
		exchangeName, // exchange name
		exchangeType, // exchange type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
}

func (ap *amqpProvider) DeclareQueue(channel *amqp.Channel, queueName string, declareQueueArgs amqp.Table) error {
	_, err := channel.QueueDeclare(
		queueName,        // queue name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		declareQueueArgs, // arguments
	)
	return err
}

func (ap *amqpProvider) QueueExchangeBind(channel *amqp.Channel, queueName string, routingKey string, exchangeName string) error {
	return channel.QueueBind(
		queueName,    // queue name
		routingKey,   // routing key
		exchangeName, // exchange
		false,        // no-wait
		nil,          // arguments
	)
}

// AmqpPublishWithConfirm publishes on a fresh confirm-mode channel and waits for the broker ack.
func (ap *amqpProvider) AmqpPublishWithConfirm(ctx context.Context, routingKey string, amqpMsg amqp.Publishing, exchangeName string) error {
	conn, err := ap.GetConnectionFromPool()
	if err != nil {
		return err
	}
	defer func() {
		if err := ap.ReleaseConnectionToPool(conn); err != nil {
			logger.ApplicationLogger.WithError(err).Error("failed to release amqp connection")
		}
	}()

	channel, confirmChan, err := ap.CreateAmqpChannel(conn, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := ap.CloseAmqpChannel(channel); err != nil {
			logger.ApplicationLogger.WithError(err).Error("failed to close amqp channel")
		}
	}()

	err = channel.PublishWithContext(ctx,
		exchangeName, // exchange
		routingKey,   // routing key
		false,        // mandatory
		false,        // immediate
		amqpMsg,
	)
	if err != nil {
		return err
	}

	select {
	case confirmed, ok := <-confirmChan:
		if !ok {
			return fmt.Errorf("publish confirm channel closed")
		}
		if confirmed.Ack {
			return nil
		}
		return fmt.Errorf("message not acked by broker")
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(ap.confirmTimeout):
		return fmt.Errorf("publish confirm timeout")
	}
}

func (ap *amqpProvider) SetChannelQoS(channel *amqp.Channel, prefetchCount int) error {
	return channel.Qos(
		prefetchCount,
		0,     // prefetch size
		false, // global
	)
}

// CloseConnection closes every pooled connection
func (ap *amqpProvider) CloseConnection() error {
	ap.connectionsMutex.Lock()
	pool := ap.connectionPool
	ap.connectionPool = nil
	ap.connectionsMutex.Unlock()

	var firstErr error
	for _, conn := range pool {
		if conn == nil || conn.IsClosed() {
			continue
		}
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (ap *amqpProvider) CreateConnection() (*amqp.Connection, error) {
	if ap.amqpConf == nil {
		return nil, appErrors.ErrNilConfig
	}

	heartbeat := time.Duration(ap.amqpConf.HeartBeatInterval) * time.Second
	if heartbeat <= 0 {
		heartbeat = 10 * time.Second
	}

	dialTimeout := time.Duration(ap.amqpConf.ConnectionTimeout) * time.Second
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	amqpCfg := amqp.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			return net.DialTimeout(network, addr, dialTimeout)
		},
	}

	return amqp.DialConfig(ap.amqpConf.Url, amqpCfg)
}

// CreateConnectionPool dials ConnectionPoolSize connections up front.
func (ap *amqpProvider) CreateConnectionPool() error {
	if ap.amqpConf == nil {
		return appErrors.ErrNilConfig
	}
	poolSize := ap.amqpConf.ConnectionPoolSize
	if poolSize < 1 {
		return appErrors.ErrInvalidConfig
	}

	connPool := make([]*amqp.Connection, 0, poolSize)
	for i := 0; i < poolSize; i++ {
		newConn, err := ap.CreateConnection()
		if err != nil {
			for _, c := range connPool {
				_ = c.Close()
			}
			return fmt.Errorf("create amqp connection pool: %w", err)
		}
		connPool = append(connPool, newConn)
	}

	ap.connectionsMutex.Lock()
	ap.connectionPool = connPool
	ap.connectionsMutex.Unlock()
	return nil
}

// ReleaseConnectionToPool puts conn back, replacing it first when it has died.
func (ap *amqpProvider) ReleaseConnectionToPool(conn *amqp.Connection) error {
	if conn == nil || conn.IsClosed() {
		newConn, err := ap.CreateConnection()
		if err != nil {
			return fmt.Errorf("failed to recreate AMQP connection: %w", err)
		}
		conn = newConn
	}

	ap.connectionsMutex.Lock()
	defer ap.connectionsMutex.Unlock()
	ap.connectionPool = append(ap.connectionPool, conn)
	return nil
}

// GetConnectionFromPool pops a healthy connection. The caller hands it back with
// ReleaseConnectionToPool.
func (ap *amqpProvider) GetConnectionFromPool() (*amqp.Connection, error) {
	ap.connectionsMutex.Lock()
	if len(ap.connectionPool) == 0 {
		ap.connectionsMutex.Unlock()
		return nil, appErrors.ErrConnectionPoolEmpty
	}
	amqpConn := ap.connectionPool[0]
	ap.connectionPool = ap.connectionPool[1:]
	ap.connectionsMutex.Unlock()

	if amqpConn == nil || amqpConn.IsClosed() {
		newAmqpConn, err := ap.CreateConnection()
		if err != nil {
			return nil, fmt.Errorf("failed to recreate AMQP connection: %w", err)
		}
		return newAmqpConn, nil
	}
	return amqpConn, nil
}
