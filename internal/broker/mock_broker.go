package broker

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/surendratiwari3/taskexec/schema"
)

// MockBroker is a testify mock of Broker
type MockBroker struct {
	mock.Mock
}

// NewMockBroker creates a mock and registers expectation assertions on cleanup
func NewMockBroker(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBroker {
	m := &MockBroker{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockBroker) StartConsumer(ctx context.Context, consumerTag string, handler TriggerHandler) error {
	args := m.Called(ctx, consumerTag, handler)
	return args.Error(0)
}

func (m *MockBroker) StopConsumer() {
	m.Called()
}

func (m *MockBroker) Publish(ctx context.Context, trigger *schema.Trigger) error {
	args := m.Called(ctx, trigger)
	return args.Error(0)
}

func (m *MockBroker) BrokerType() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockBroker) Close() error {
	args := m.Called()
	return args.Error(0)
}
