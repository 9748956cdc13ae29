package task

import (
	"github.com/stretchr/testify/mock"
	"github.com/surendratiwari3/taskexec/schema"
)

// MockTaskRegistrarInterface is a testify mock of TaskRegistrarInterface
type MockTaskRegistrarInterface struct {
	mock.Mock
}

// NewMockTaskRegistrarInterface creates a mock and registers expectation assertions on cleanup
func NewMockTaskRegistrarInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTaskRegistrarInterface {
	m := &MockTaskRegistrarInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTaskRegistrarInterface) RegisterTask(appID, name, appURL string, consumer schema.TaskConsumer, options map[string]interface{}) (schema.Task, error) {
	args := m.Called(appID, name, appURL, consumer, options)
	task, _ := args.Get(0).(schema.Task)
	return task, args.Error(1)
}

func (m *MockTaskRegistrarInterface) UnregisterTask(appID, name string) error {
	args := m.Called(appID, name)
	return args.Error(0)
}

func (m *MockTaskRegistrarInterface) UnregisterAllTasks(appID string) int {
	args := m.Called(appID)
	return args.Int(0)
}

func (m *MockTaskRegistrarInterface) GetTask(appID, name string) (schema.Task, error) {
	args := m.Called(appID, name)
	task, _ := args.Get(0).(schema.Task)
	return task, args.Error(1)
}

func (m *MockTaskRegistrarInterface) IsTaskRegistered(appID, name string) bool {
	args := m.Called(appID, name)
	return args.Bool(0)
}

func (m *MockTaskRegistrarInterface) TasksForApp(appID string) []schema.Task {
	args := m.Called(appID)
	tasks, _ := args.Get(0).([]schema.Task)
	return tasks
}

func (m *MockTaskRegistrarInterface) TasksForTrigger(trigger *schema.Trigger) []schema.Task {
	args := m.Called(trigger)
	tasks, _ := args.Get(0).([]schema.Task)
	return tasks
}

func (m *MockTaskRegistrarInterface) GetRegisteredTaskCount() uint {
	args := m.Called()
	return args.Get(0).(uint)
}
