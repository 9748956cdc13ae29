package store

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/surendratiwari3/taskexec/schema"
)

// MockBackend is a testify mock of Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) InsertRequest(ctx context.Context, record *schema.RequestRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockBackend) GetRequest(ctx context.Context, id string) (*schema.RequestRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*schema.RequestRecord)
	return record, args.Error(1)
}

func (m *MockBackend) DeleteRequest(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBackend) StoreType() string {
	return m.Called().String(0)
}

func (m *MockBackend) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
