package provider

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockMongoDBProviderInterface is a testify mock of MongoDBProviderInterface. When the first
// return value of a FindOne expectation is a func(out interface{}), it is called to fill out.
type MockMongoDBProviderInterface struct {
	mock.Mock
}

func (m *MockMongoDBProviderInterface) Insert(ctx context.Context, collection string, document interface{}) error {
	args := m.Called(ctx, collection, document)
	return args.Error(0)
}

func (m *MockMongoDBProviderInterface) FindOne(ctx context.Context, collection string, filter interface{}, out interface{}) (bool, error) {
	args := m.Called(ctx, collection, filter, out)
	if decode, ok := args.Get(0).(func(out interface{})); ok {
		decode(out)
		return true, args.Error(1)
	}
	return args.Bool(0), args.Error(1)
}

func (m *MockMongoDBProviderInterface) Delete(ctx context.Context, collection string, filter interface{}) (int64, error) {
	args := m.Called(ctx, collection, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMongoDBProviderInterface) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
