package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gomodule/redigo/redis"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/internal/provider"
	"github.com/surendratiwari3/taskexec/internal/store"
	"github.com/surendratiwari3/taskexec/schema"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
)

// Store keeps request records as JSON strings under "<prefix><request id>"
type Store struct {
	provider  provider.RedisProviderInterface
	keyPrefix string
	ttl       int
}

func NewRedisStore(redisProvider provider.RedisProviderInterface, redisConfig *config.RedisConfig) (store.Backend, error) {
	if redisProvider == nil || redisConfig == nil {
		return nil, appErrors.ErrNilConfig
	}
	return &Store{
		provider:  redisProvider,
		keyPrefix: redisConfig.RecordKeyPrefix,
		ttl:       redisConfig.RecordTTL,
	}, nil
}

func (s *Store) key(id string) string {
	return s.keyPrefix + id
}

func (s *Store) InsertRequest(ctx context.Context, record *schema.RequestRecord) error {
	if record == nil || record.ID == "" {
		return appErrors.ErrInvalidRecord
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("JSON marshal error: %w", err)
	}

	conn := s.provider.GetConn()
	defer conn.Close()

	if s.ttl > 0 {
		_, err = conn.Do("SET", s.key(record.ID), payload, "EX", s.ttl)
	} else {
		_, err = conn.Do("SET", s.key(record.ID), payload)
	}
	return err
}

func (s *Store) GetRequest(ctx context.Context, id string) (*schema.RequestRecord, error) {
	conn := s.provider.GetConn()
	defer conn.Close()

	payload, err := redis.Bytes(conn.Do("GET", s.key(id)))
	if errors.Is(err, redis.ErrNil) {
		return nil, appErrors.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	record := &schema.RequestRecord{}
	if err := json.Unmarshal(payload, record); err != nil {
		return nil, fmt.Errorf("JSON unmarshal error: %w", err)
	}
	return record, nil
}

func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	conn := s.provider.GetConn()
	defer conn.Close()

	deleted, err := redis.Int(conn.Do("DEL", s.key(id)))
	if err != nil {
		return err
	}
	if deleted == 0 {
		return appErrors.ErrRecordNotFound
	}
	return nil
}

func (s *Store) StoreType() string {
	return "redis"
}

func (s *Store) Close(ctx context.Context) error {
	return s.provider.CloseConnection()
}
