package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/internal/provider"
	"github.com/surendratiwari3/taskexec/schema"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
)

func newTestStore(t *testing.T, ttl int) (*Store, *provider.MockRedisConn) {
	conn := new(provider.MockRedisConn)
	conn.On("Close").Return(nil)
	redisProvider := new(provider.MockRedisProviderInterface)
	redisProvider.On("GetConn").Return(conn)

	backend, err := NewRedisStore(redisProvider, &config.RedisConfig{RecordKeyPrefix: "taskexec:request:", RecordTTL: ttl})
	require.NoError(t, err)
	return backend.(*Store), conn
}

func TestNewRedisStore(t *testing.T) {
	_, err := NewRedisStore(nil, &config.RedisConfig{})
	assert.ErrorIs(t, err, appErrors.ErrNilConfig)

	backend, _ := newTestStore(t, 0)
	assert.Equal(t, "redis", backend.StoreType())
}

func TestInsertRequest(t *testing.T) {
	record := &schema.RequestRecord{ID: "request_1", FetchResult: "new-data"}
	payload, err := json.Marshal(record)
	require.NoError(t, err)

	t.Run("With TTL", func(t *testing.T) {
		backend, conn := newTestStore(t, 60)
		conn.On("Do", "SET", "taskexec:request:request_1", payload, "EX", 60).Return("OK", nil)

		assert.NoError(t, backend.InsertRequest(context.Background(), record))
		conn.AssertExpectations(t)
	})

	t.Run("Without TTL", func(t *testing.T) {
		backend, conn := newTestStore(t, 0)
		conn.On("Do", "SET", "taskexec:request:request_1", payload).Return("OK", nil)

		assert.NoError(t, backend.InsertRequest(context.Background(), record))
		conn.AssertExpectations(t)
	})

	t.Run("Redis Error", func(t *testing.T) {
		backend, conn := newTestStore(t, 0)
		conn.On("Do", "SET", "taskexec:request:request_1", payload).Return(nil, errors.New("down"))

		assert.Error(t, backend.InsertRequest(context.Background(), record))
	})

	t.Run("Missing ID", func(t *testing.T) {
		backend, _ := newTestStore(t, 0)
		assert.ErrorIs(t, backend.InsertRequest(context.Background(), &schema.RequestRecord{}), appErrors.ErrInvalidRecord)
	})
}

func TestGetRequest(t *testing.T) {
	record := &schema.RequestRecord{ID: "request_1", TaskIDs: []string{"app:sync"}, FetchResult: "failed"}
	payload, err := json.Marshal(record)
	require.NoError(t, err)

	backend, conn := newTestStore(t, 0)
	conn.On("Do", "GET", "taskexec:request:request_1").Return(payload, nil)
	conn.On("Do", "GET", "taskexec:request:missing").Return(nil, nil)
	conn.On("Do", "GET", "taskexec:request:garbage").Return([]byte("{"), nil)

	got, err := backend.GetRequest(context.Background(), "request_1")
	require.NoError(t, err)
	assert.Equal(t, record.TaskIDs, got.TaskIDs)
	assert.Equal(t, "failed", got.FetchResult)

	_, err = backend.GetRequest(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrRecordNotFound)

	_, err = backend.GetRequest(context.Background(), "garbage")
	assert.Error(t, err)
}

func TestDeleteRequest(t *testing.T) {
	backend, conn := newTestStore(t, 0)
	conn.On("Do", "DEL", "taskexec:request:request_1").Return(int64(1), nil)
	conn.On("Do", "DEL", "taskexec:request:missing").Return(int64(0), nil)
	conn.On("Do", "DEL", "taskexec:request:broken").Return(nil, redis.Error("ERR"))

	assert.NoError(t, backend.DeleteRequest(context.Background(), "request_1"))
	assert.ErrorIs(t, backend.DeleteRequest(context.Background(), "missing"), appErrors.ErrRecordNotFound)
	assert.Error(t, backend.DeleteRequest(context.Background(), "broken"))
}
