package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/schema"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
)

type RedisPoolInterface interface {
	Get() redis.Conn
	Close() error
}

type RedisProviderInterface interface {
	Publish(ctx context.Context, queue string, trigger *schema.Trigger) error
	Subscribe(ctx context.Context, queue string, handler func(*schema.Trigger) error) error
	GetConn() redis.Conn
	CloseConnection() error
}

type redisProvider struct {
	config *config.RedisConfig
	pool   RedisPoolInterface
}

// NewRedisProvider creates a new Redis provider.
func NewRedisProvider(redisConfig *config.RedisConfig) RedisProviderInterface {
	connectTimeout := time.Duration(redisConfig.ConnectTimeout) * time.Second
	return &redisProvider{
		config: redisConfig,
		pool: &redis.Pool{
			MaxIdle:     redisConfig.MaxIdle,
			MaxActive:   redisConfig.MaxActive,
			IdleTimeout: time.Duration(redisConfig.IdleTimeout) * time.Second,
			Dial: func() (redis.Conn, error) {
				return redis.Dial("tcp", redisConfig.Address,
					redis.DialConnectTimeout(connectTimeout),
					redis.DialReadTimeout(time.Duration(redisConfig.ReadTimeout+1)*time.Second),
					redis.DialWriteTimeout(time.Duration(redisConfig.WriteTimeout)*time.Second),
				)
			},
			TestOnBorrow: func(c redis.Conn, lastUsed time.Time) error {
				if time.Since(lastUsed) < time.Minute {
					return nil
				}
				_, err := c.Do("PING")
				return err
			},
		},
	}
}

func (rp *redisProvider) GetConn() redis.Conn {
	return rp.pool.Get()
}

func (rp *redisProvider) Publish(ctx context.Context, queue string, trigger *schema.Trigger) error {
	conn := rp.pool.Get()
	if conn == nil {
		return fmt.Errorf("failed to get connection from pool")
	}
	defer conn.Close()

	if trigger == nil {
		return appErrors.ErrInvalidTrigger
	}
	payload, err := schema.TriggerToBytes(trigger)
	if err != nil {
		return err
	}

	_, err = redis.DoWithTimeout(conn, time.Duration(rp.config.WriteTimeout)*time.Second, "LPUSH", queue, payload)
	return err
}

// Subscribe pops triggers from queue until ctx is cancelled. Undecodable payloads and
// handler errors are logged and skipped.
func (rp *redisProvider) Subscribe(ctx context.Context, queue string, handler func(*schema.Trigger) error) error {
	if err := rp.validateInputs(queue, handler); err != nil {
		return err
	}
	conn := rp.pool.Get()
	if conn == nil {
		return errors.New("failed to get connection from pool")
	}
	defer conn.Close()

	block := rp.config.ReadTimeout
	if block < 1 {
		block = 1
	}
	readTimeout := time.Duration(block+1) * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		payload, err := redis.ByteSlices(redis.DoWithTimeout(conn, readTimeout, "BRPOP", queue, block))
		if err != nil {
			if errors.Is(err, redis.ErrNil) {
				continue
			}
			logger.ApplicationLogger.WithFields(logrus.Fields{"queue": queue}).WithError(err).Error("error during BRPOP")
			return err
		}

		if len(payload) < 2 {
			logger.ApplicationLogger.WithFields(logrus.Fields{"queue": queue}).Warn("received invalid payload from redis")
			continue
		}

		trigger, err := schema.BytesToTrigger(payload[1])
		if err != nil {
			logger.ApplicationLogger.WithFields(logrus.Fields{"payload": string(payload[1])}).WithError(err).Error("failed to unmarshal trigger")
			continue
		}

		if err := handler(trigger); err != nil {
			logger.ApplicationLogger.WithFields(logrus.Fields{"trigger": trigger.UUID}).WithError(err).Error("trigger handler returned an error")
		}
	}
}

func (rp *redisProvider) CloseConnection() error {
	return rp.pool.Close()
}

func (rp *redisProvider) validateInputs(queue string, handler func(*schema.Trigger) error) error {
	if queue == "" {
		return appErrors.ErrEmptyQueueName
	}
	if handler == nil {
		return appErrors.ErrNilHandler
	}
	if rp.pool == nil {
		return errors.New("redis pool is not initialized")
	}
	return nil
}
