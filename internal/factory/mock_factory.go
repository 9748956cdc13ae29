package factory

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/surendratiwari3/taskexec/internal/broker"
	"github.com/surendratiwari3/taskexec/internal/store"
	"github.com/surendratiwari3/taskexec/internal/task"
)

// MockFactory is a testify mock of IFactory
type MockFactory struct {
	mock.Mock
}

func (m *MockFactory) CreateBroker() (broker.Broker, error) {
	args := m.Called()
	brk, _ := args.Get(0).(broker.Broker)
	return brk, args.Error(1)
}

func (m *MockFactory) CreateStore(ctx context.Context) (store.Backend, error) {
	args := m.Called(ctx)
	backend, _ := args.Get(0).(store.Backend)
	return backend, args.Error(1)
}

func (m *MockFactory) CreateTaskRegistrar() task.TaskRegistrarInterface {
	args := m.Called()
	registrar, _ := args.Get(0).(task.TaskRegistrarInterface)
	return registrar
}
