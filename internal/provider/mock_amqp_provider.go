package provider

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
)

// MockAmqpProviderInterface is a testify mock of AmqpProviderInterface
type MockAmqpProviderInterface struct {
	mock.Mock
}

func (m *MockAmqpProviderInterface) AmqpPublishWithConfirm(ctx context.Context, routingKey string, amqpMsg amqp.Publishing, exchangeName string) error {
	args := m.Called(ctx, routingKey, amqpMsg, exchangeName)
	return args.Error(0)
}

func (m *MockAmqpProviderInterface) CreateAmqpChannel(conn *amqp.Connection, confirm bool) (*amqp.Channel, chan amqp.Confirmation, error) {
	args := m.Called(conn, confirm)
	channel, _ := args.Get(0).(*amqp.Channel)
	confirmations, _ := args.Get(1).(chan amqp.Confirmation)
	return channel, confirmations, args.Error(2)
}

func (m *MockAmqpProviderInterface) CloseAmqpChannel(channel *amqp.Channel) error {
	args := m.Called(channel)
	return args.Error(0)
}

func (m *MockAmqpProviderInterface) CloseConnection() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockAmqpProviderInterface) CreateConnectionPool() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockAmqpProviderInterface) CreateConsumer(channel *amqp.Channel, queueName, consumerTag string) (<-chan amqp.Delivery, error) {
	args := m.Called(channel, queueName, consumerTag)
	deliveries, _ := args.Get(0).(<-chan amqp.Delivery)
	if deliveries == nil {
		if ch, ok := args.Get(0).(chan amqp.Delivery); ok {
			deliveries = ch
		}
	}
	return deliveries, args.Error(1)
}

func (m *MockAmqpProviderInterface) DeclareQueue(channel *amqp.Channel, queueName string, declareQueueArgs amqp.Table) error {
	args := m.Called(channel, queueName, declareQueueArgs)
	return args.Error(0)
}

func (m *MockAmqpProviderInterface) DeclareExchange(channel *amqp.Channel, exchangeName string, exchangeType string) error {
	args := m.Called(channel, exchangeName, exchangeType)
	return args.Error(0)
}

func (m *MockAmqpProviderInterface) GetConnectionFromPool() (*amqp.Connection, error) {
	args := m.Called()
	conn, _ := args.Get(0).(*amqp.Connection)
	return conn, args.Error(1)
}

func (m *MockAmqpProviderInterface) QueueExchangeBind(channel *amqp.Channel, queueName string, routingKey string, exchangeName string) error {
	args := m.Called(channel, queueName, routingKey, exchangeName)
	return args.Error(0)
}

func (m *MockAmqpProviderInterface) ReleaseConnectionToPool(conn *amqp.Connection) error {
	args := m.Called(conn)
	return args.Error(0)
}

func (m *MockAmqpProviderInterface) SetChannelQoS(channel *amqp.Channel, prefetchCount int) error {
	args := m.Called(channel, prefetchCount)
	return args.Error(0)
}
