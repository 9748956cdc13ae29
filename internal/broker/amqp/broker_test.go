package amqp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/internal/provider"
	"github.com/surendratiwari3/taskexec/schema"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
)

type testAcknowledger struct {
	mu     sync.Mutex
	acks   int
	nacks  int
	reject int
}

func (a *testAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *testAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	return nil
}

func (a *testAcknowledger) Reject(tag uint64, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reject++
	return nil
}

func testConfig(exchangeType string) *config.Config {
	return &config.Config{
		Broker:        "amqp",
		TaskQueueName: "test_queue",
		AMQP: &config.AMQPConfig{
			Url:                "amqp://localhost:5672",
			Exchange:           "test_exchange",
			ExchangeType:       exchangeType,
			BindingKey:         "test_key",
			HeartBeatInterval:  30,
			ConnectionPoolSize: 2,
			PrefetchCount:      5,
		},
	}
}

func setupMock(conf *config.Config) (*provider.MockAmqpProviderInterface, *amqp.Connection, *amqp.Channel) {
	mockAmqpProvider := new(provider.MockAmqpProviderInterface)
	conn := &amqp.Connection{}
	channel := &amqp.Channel{}

	mockAmqpProvider.On("CreateConnectionPool").Return(nil)
	mockAmqpProvider.On("GetConnectionFromPool").Return(conn, nil)
	mockAmqpProvider.On("ReleaseConnectionToPool", conn).Return(nil)
	mockAmqpProvider.On("CreateAmqpChannel", conn, false).Return(channel, nil, nil)
	mockAmqpProvider.On("DeclareExchange", channel, conf.AMQP.Exchange, conf.AMQP.ExchangeType).Return(nil)
	mockAmqpProvider.On("DeclareQueue", channel, conf.TaskQueueName, mock.Anything).Return(nil)
	mockAmqpProvider.On("QueueExchangeBind", channel, conf.TaskQueueName, mock.Anything, conf.AMQP.Exchange).Return(nil)
	mockAmqpProvider.On("CloseAmqpChannel", channel).Return(nil)
	return mockAmqpProvider, conn, channel
}

func TestNewAMQPBroker(t *testing.T) {
	conf := testConfig("direct")
	mockAmqpProvider, _, _ := setupMock(conf)

	broker, err := NewAMQPBroker(conf, mockAmqpProvider)

	require.NoError(t, err)
	require.NotNil(t, broker)
	assert.Equal(t, "rabbitmq", broker.BrokerType())
	mockAmqpProvider.AssertCalled(t, "QueueExchangeBind", mock.Anything, "test_queue", "test_key", "test_exchange")
}

func TestNewAMQPBroker_Errors(t *testing.T) {
	_, err := NewAMQPBroker(nil, nil)
	assert.ErrorIs(t, err, appErrors.ErrNilConfig)

	_, err = NewAMQPBroker(&config.Config{}, nil)
	assert.ErrorIs(t, err, appErrors.ErrNilConfig)

	poolErr := errors.New("pool error")
	mockAmqpProvider := new(provider.MockAmqpProviderInterface)
	mockAmqpProvider.On("CreateConnectionPool").Return(poolErr)
	_, err = NewAMQPBroker(testConfig("direct"), mockAmqpProvider)
	assert.ErrorIs(t, err, poolErr)

	declareErr := errors.New("declare error")
	mockAmqpProvider = new(provider.MockAmqpProviderInterface)
	conn := &amqp.Connection{}
	channel := &amqp.Channel{}
	mockAmqpProvider.On("CreateConnectionPool").Return(nil)
	mockAmqpProvider.On("GetConnectionFromPool").Return(conn, nil)
	mockAmqpProvider.On("ReleaseConnectionToPool", conn).Return(nil)
	mockAmqpProvider.On("CreateAmqpChannel", conn, false).Return(channel, nil, nil)
	mockAmqpProvider.On("CloseAmqpChannel", channel).Return(nil)
	mockAmqpProvider.On("DeclareExchange", channel, mock.Anything, mock.Anything).Return(declareErr)
	_, err = NewAMQPBroker(testConfig("direct"), mockAmqpProvider)
	assert.ErrorIs(t, err, declareErr)
	mockAmqpProvider.AssertCalled(t, "ReleaseConnectionToPool", conn)
	mockAmqpProvider.AssertCalled(t, "CloseAmqpChannel", channel)
}

func TestAMQPBrokerGetRoutingKey(t *testing.T) {
	tests := []struct {
		name         string
		exchangeType string
		bindingKey   string
		want         string
	}{
		{name: "direct uses binding key", exchangeType: "direct", bindingKey: "test_key", want: "test_key"},
		{name: "fanout uses queue", exchangeType: "fanout", bindingKey: "test_key", want: "test_queue"},
		{name: "empty binding key uses queue", exchangeType: "direct", bindingKey: "", want: "test_queue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := testConfig(tt.exchangeType)
			conf.AMQP.BindingKey = tt.bindingKey
			broker := &AMQPBroker{config: conf}
			require.Equal(t, tt.want, broker.getRoutingKey())
		})
	}
}

func TestAMQPBrokerPublish(t *testing.T) {
	conf := testConfig("direct")
	mockAmqpProvider, _, _ := setupMock(conf)
	trigger := schema.NewTrigger(schema.ReasonBackgroundFetch, map[string]interface{}{"k": "v"})

	mockAmqpProvider.On("AmqpPublishWithConfirm", mock.Anything, "test_key", mock.MatchedBy(func(msg amqp.Publishing) bool {
		decoded, err := schema.BytesToTrigger(msg.Body)
		return err == nil && decoded.UUID == trigger.UUID && msg.MessageId == trigger.UUID &&
			msg.DeliveryMode == amqp.Persistent && msg.ContentType == "application/json"
	}), "test_exchange").Return(nil)

	broker, err := NewAMQPBroker(conf, mockAmqpProvider)
	require.NoError(t, err)

	require.NoError(t, broker.Publish(context.Background(), trigger))
	assert.ErrorIs(t, broker.Publish(context.Background(), nil), appErrors.ErrInvalidTrigger)
	mockAmqpProvider.AssertNumberOfCalls(t, "AmqpPublishWithConfirm", 1)
}

func TestAMQPBrokerStartConsumer(t *testing.T) {
	conf := testConfig("direct")
	mockAmqpProvider, _, channel := setupMock(conf)

	ack := &testAcknowledger{}
	trigger := schema.NewTrigger(schema.ReasonManual, nil)
	body, err := schema.TriggerToBytes(trigger)
	require.NoError(t, err)

	deliveries := make(chan amqp.Delivery, 4)
	deliveries <- amqp.Delivery{Acknowledger: ack, Body: nil}
	deliveries <- amqp.Delivery{Acknowledger: ack, Body: []byte("not json")}
	deliveries <- amqp.Delivery{Acknowledger: ack, Body: body}

	mockAmqpProvider.On("SetChannelQoS", channel, 5).Return(nil)
	mockAmqpProvider.On("CreateConsumer", channel, "test_queue", "consumer-1").Return(deliveries, nil)

	broker, err := NewAMQPBroker(conf, mockAmqpProvider)
	require.NoError(t, err)

	received := make(chan *schema.Trigger, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- broker.StartConsumer(ctx, "consumer-1", func(tr *schema.Trigger) error {
			received <- tr
			return nil
		})
	}()

	select {
	case got := <-received:
		assert.Equal(t, trigger.UUID, got.UUID)
	case <-time.After(2 * time.Second):
		t.Fatal("trigger not delivered")
	}

	broker.StopConsumer()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}

	ack.mu.Lock()
	defer ack.mu.Unlock()
	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, 2, ack.nacks)
}

func TestAMQPBrokerStartConsumer_HandlerErrorAndClosedChannel(t *testing.T) {
	conf := testConfig("direct")
	mockAmqpProvider, _, channel := setupMock(conf)

	ack := &testAcknowledger{}
	body, err := schema.TriggerToBytes(schema.NewTrigger(schema.ReasonManual, nil))
	require.NoError(t, err)

	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- amqp.Delivery{Acknowledger: ack, Body: body}
	close(deliveries)

	mockAmqpProvider.On("SetChannelQoS", channel, 5).Return(nil)
	mockAmqpProvider.On("CreateConsumer", channel, "test_queue", "consumer-2").Return(deliveries, nil)

	broker, err := NewAMQPBroker(conf, mockAmqpProvider)
	require.NoError(t, err)

	err = broker.StartConsumer(context.Background(), "consumer-2", func(*schema.Trigger) error {
		return errors.New("handler failed")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, ack.nacks)
	assert.Equal(t, 0, ack.acks)

	assert.ErrorIs(t, broker.StartConsumer(context.Background(), "consumer-2", nil), appErrors.ErrNilHandler)
}

func TestAMQPBrokerClose(t *testing.T) {
	conf := testConfig("direct")
	mockAmqpProvider, _, _ := setupMock(conf)
	mockAmqpProvider.On("CloseConnection").Return(nil)

	broker, err := NewAMQPBroker(conf, mockAmqpProvider)
	require.NoError(t, err)

	assert.NoError(t, broker.Close())
	mockAmqpProvider.AssertCalled(t, "CloseConnection")
}
