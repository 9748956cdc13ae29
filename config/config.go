package config

import "time"

// Config holds all configuration for taskexec
type Config struct {
	Broker           string         `env:"BROKER" yaml:"broker" validate:"omitempty,oneof=amqp redis"`
	Store            string         `env:"STORE" yaml:"store" validate:"omitempty,oneof=mongodb redis"`
	TaskQueueName    string         `env:"QUEUE_NAME" yaml:"queue_name" envDefault:"taskexec_trigger_queue"`
	Concurrency      uint           `env:"CONCURRENCY" yaml:"concurrency" envDefault:"10" validate:"gte=1"`
	ExecutionTimeout time.Duration  `env:"EXECUTION_TIMEOUT" yaml:"execution_timeout" envDefault:"30s" validate:"gt=0"`
	HTTPAddress      string         `env:"HTTP_ADDRESS" yaml:"http_address" envDefault:":8090"`
	LogLevel         string         `env:"LOG_LEVEL" yaml:"log_level" envDefault:"info"`
	AMQP             *AMQPConfig    `envPrefix:"AMQP_" yaml:"amqp" validate:"-"`
	Redis            *RedisConfig   `envPrefix:"REDIS_" yaml:"redis" validate:"-"`
	MongoDB          *MongoDBConfig `envPrefix:"MONGO_" yaml:"mongodb" validate:"-"`
}

// EnvPrefix is prepended to every environment variable read by ReadFromEnv.
const EnvPrefix = "TASKEXEC_"
