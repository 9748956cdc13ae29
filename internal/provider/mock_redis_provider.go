package provider

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/mock"
	"github.com/surendratiwari3/taskexec/schema"
)

// MockRedisProviderInterface is a testify mock of RedisProviderInterface
type MockRedisProviderInterface struct {
	mock.Mock
}

func (m *MockRedisProviderInterface) Publish(ctx context.Context, queue string, trigger *schema.Trigger) error {
	args := m.Called(ctx, queue, trigger)
	return args.Error(0)
}

func (m *MockRedisProviderInterface) Subscribe(ctx context.Context, queue string, handler func(*schema.Trigger) error) error {
	args := m.Called(ctx, queue, handler)
	return args.Error(0)
}

func (m *MockRedisProviderInterface) GetConn() redis.Conn {
	args := m.Called()
	conn, _ := args.Get(0).(redis.Conn)
	return conn
}

func (m *MockRedisProviderInterface) CloseConnection() error {
	args := m.Called()
	return args.Error(0)
}

// MockRedisConn is a testify mock of redis.Conn that also supports DoWithTimeout.
// Do and DoWithTimeout record the command name followed by its arguments; the timeout
// is recorded first for DoWithTimeout.
type MockRedisConn struct {
	mock.Mock
}

func (m *MockRedisConn) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRedisConn) Err() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRedisConn) Do(commandName string, args ...interface{}) (interface{}, error) {
	callArgs := append([]interface{}{commandName}, args...)
	result := m.Called(callArgs...)
	return result.Get(0), result.Error(1)
}

func (m *MockRedisConn) DoWithTimeout(timeout time.Duration, commandName string, args ...interface{}) (interface{}, error) {
	callArgs := append([]interface{}{timeout, commandName}, args...)
	result := m.Called(callArgs...)
	return result.Get(0), result.Error(1)
}

func (m *MockRedisConn) Send(commandName string, args ...interface{}) error {
	callArgs := append([]interface{}{commandName}, args...)
	return m.Called(callArgs...).Error(0)
}

func (m *MockRedisConn) Flush() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRedisConn) Receive() (interface{}, error) {
	args := m.Called()
	return args.Get(0), args.Error(1)
}

func (m *MockRedisConn) ReceiveWithTimeout(timeout time.Duration) (interface{}, error) {
	args := m.Called(timeout)
	return args.Get(0), args.Error(1)
}
