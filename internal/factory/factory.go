package factory

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/internal/broker"
	amqpBroker "github.com/surendratiwari3/taskexec/internal/broker/amqp"
	redisBroker "github.com/surendratiwari3/taskexec/internal/broker/redis"
	"github.com/surendratiwari3/taskexec/internal/provider"
	"github.com/surendratiwari3/taskexec/internal/store"
	mongoStore "github.com/surendratiwari3/taskexec/internal/store/mongodb"
	nullStore "github.com/surendratiwari3/taskexec/internal/store/null"
	redisStore "github.com/surendratiwari3/taskexec/internal/store/redis"
	"github.com/surendratiwari3/taskexec/internal/task"
	"github.com/surendratiwari3/taskexec/internal/task/memory"
	"github.com/surendratiwari3/taskexec/logger"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
)

type IFactory interface {
	// CreateBroker returns a nil broker when none is configured
	CreateBroker() (broker.Broker, error)
	CreateStore(ctx context.Context) (store.Backend, error)
	CreateTaskRegistrar() task.TaskRegistrarInterface
}

// Factory builds components from the global config. A redis broker and a redis store share one pool.
type Factory struct {
	mu            sync.Mutex
	redisProvider provider.RedisProviderInterface
}

func NewFactory() IFactory {
	return &Factory{}
}

// NewAMQPBroker creates a new instance of AMQPBroker
func (bf *Factory) NewAMQPBroker(conf *config.Config) (broker.Broker, error) {
	return amqpBroker.NewAMQPBroker(conf, nil)
}

// NewRedisBroker creates a new instance of RedisBroker
func (bf *Factory) NewRedisBroker(conf *config.Config) (broker.Broker, error) {
	redisProvider, err := bf.getRedisProvider(conf)
	if err != nil {
		return nil, err
	}
	return redisBroker.NewRedisBroker(redisProvider, conf)
}

// CreateBroker creates a new object of broker.Broker
func (bf *Factory) CreateBroker() (broker.Broker, error) {
	conf := config.GetConfigProvider().GetConfig()
	switch conf.Broker {
	case "":
		return nil, nil
	case "amqp":
		return bf.NewAMQPBroker(conf)
	case "redis":
		return bf.NewRedisBroker(conf)
	default:
		logger.ApplicationLogger.WithFields(logrus.Fields{"broker": conf.Broker}).Error("unsupported broker")
		return nil, appErrors.ErrUnsupportedBroker
	}
}

// CreateStore creates a new object of store.Backend
func (bf *Factory) CreateStore(ctx context.Context) (store.Backend, error) {
	conf := config.GetConfigProvider().GetConfig()
	switch conf.Store {
	case "":
		return nullStore.NewNullBackend(), nil
	case "mongodb":
		if conf.MongoDB == nil {
			return nil, appErrors.ErrNilConfig
		}
		client, err := provider.NewMongoDBClient(ctx, *conf.MongoDB)
		if err != nil {
			logger.ApplicationLogger.WithError(err).Error("failed to connect to mongodb")
			return nil, err
		}
		return mongoStore.NewMongoDBStore(client, conf.MongoDB)
	case "redis":
		redisProvider, err := bf.getRedisProvider(conf)
		if err != nil {
			return nil, err
		}
		return redisStore.NewRedisStore(redisProvider, conf.Redis)
	default:
		logger.ApplicationLogger.WithFields(logrus.Fields{"store": conf.Store}).Error("unsupported store")
		return nil, appErrors.ErrUnsupportedStore
	}
}

func (bf *Factory) CreateTaskRegistrar() task.TaskRegistrarInterface {
	return memory.NewDefaultTaskRegistrar()
}

func (bf *Factory) getRedisProvider(conf *config.Config) (provider.RedisProviderInterface, error) {
	if conf.Redis == nil {
		return nil, appErrors.ErrNilConfig
	}
	bf.mu.Lock()
	defer bf.mu.Unlock()
	if bf.redisProvider == nil {
		bf.redisProvider = provider.NewRedisProvider(conf.Redis)
	}
	return bf.redisProvider, nil
}
