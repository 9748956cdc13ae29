package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
)

// ConfigProvider gives access to the application configuration
type ConfigProvider interface {
	GetConfig() *Config
	SetApplicationConfig(cnf Config) error
	ReadFromEnv() error
	ReadFromFile(path string) error
}

type configProvider struct {
	mu       sync.RWMutex
	config   *Config
	validate *validator.Validate
}

var globalConfigProvider ConfigProvider = NewConfigProvider()

// NewConfigProvider returns an empty provider; call one of the read/set methods before GetConfig.
func NewConfigProvider() ConfigProvider {
	return &configProvider{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// GetConfigProvider returns the process wide provider
func GetConfigProvider() ConfigProvider {
	return globalConfigProvider
}

// SetConfigProvider replaces the process wide provider, mostly for tests
func SetConfigProvider(provider ConfigProvider) {
	globalConfigProvider = provider
}

// ReadFromEnv loads the global configuration from TASKEXEC_* variables
func ReadFromEnv() error {
	return globalConfigProvider.ReadFromEnv()
}

// GetConfig returns the global configuration
func GetConfig() *Config {
	return globalConfigProvider.GetConfig()
}

func (cp *configProvider) GetConfig() *Config {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	return cp.config
}

func (cp *configProvider) SetApplicationConfig(cnf Config) error {
	if err := cp.validateConfig(&cnf); err != nil {
		return err
	}
	cp.mu.Lock()
	cp.config = &cnf
	cp.mu.Unlock()
	return nil
}

func (cp *configProvider) ReadFromEnv() error {
	cnf := newEmptyConfig()
	if err := parseEnv(cnf); err != nil {
		return err
	}
	return cp.SetApplicationConfig(*cnf)
}

// ReadFromFile loads TASKEXEC_* variables and envDefault values first, then overlays the
// yaml file on top. Keys present in the file win.
func (cp *configProvider) ReadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	cnf := newEmptyConfig()
	if err := parseEnv(cnf); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cnf); err != nil {
		return fmt.Errorf("%w: %s", appErrors.ErrInvalidConfig, err)
	}
	return cp.SetApplicationConfig(*cnf)
}

func (cp *configProvider) validateConfig(cnf *Config) error {
	if cnf == nil {
		return appErrors.ErrNilConfig
	}
	if err := cp.validate.Struct(cnf); err != nil {
		return fmt.Errorf("%w: %s", appErrors.ErrInvalidConfig, err)
	}
	switch cnf.Broker {
	case "amqp":
		if cnf.AMQP == nil {
			return fmt.Errorf("%w: amqp broker selected without amqp config", appErrors.ErrInvalidConfig)
		}
		if err := cp.validate.Struct(cnf.AMQP); err != nil {
			return fmt.Errorf("%w: %s", appErrors.ErrInvalidConfig, err)
		}
	case "redis":
		if cnf.Redis == nil {
			return fmt.Errorf("%w: redis broker selected without redis config", appErrors.ErrInvalidConfig)
		}
	}
	switch cnf.Store {
	case "mongodb":
		if cnf.MongoDB == nil {
			return fmt.Errorf("%w: mongodb store selected without mongodb config", appErrors.ErrInvalidConfig)
		}
		if err := cp.validate.Struct(cnf.MongoDB); err != nil {
			return fmt.Errorf("%w: %s", appErrors.ErrInvalidConfig, err)
		}
	case "redis":
		if cnf.Redis == nil {
			return fmt.Errorf("%w: redis store selected without redis config", appErrors.ErrInvalidConfig)
		}
	}
	if cnf.Redis != nil && (cnf.Broker == "redis" || cnf.Store == "redis") {
		if err := cp.validate.Struct(cnf.Redis); err != nil {
			return fmt.Errorf("%w: %s", appErrors.ErrInvalidConfig, err)
		}
	}
	return nil
}

func newEmptyConfig() *Config {
	return &Config{
		AMQP:    &AMQPConfig{},
		Redis:   &RedisConfig{},
		MongoDB: &MongoDBConfig{},
	}
}

func parseEnv(cnf *Config) error {
	if err := env.ParseWithOptions(cnf, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%w: %s", appErrors.ErrInvalidConfig, err)
	}
	return nil
}
