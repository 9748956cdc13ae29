package config

// QueueDeclareArgs arguments which are used when declaring a queue
type QueueDeclareArgs map[string]interface{}

// AMQPConfig wraps RabbitMQ related configuration
type AMQPConfig struct {
	Url                string           `env:"URL" yaml:"url" validate:"required,url"`
	Exchange           string           `env:"EXCHANGE" yaml:"exchange" envDefault:"taskexec_trigger_exchange"`
	ExchangeType       string           `env:"EXCHANGE_TYPE" yaml:"exchange_type" envDefault:"direct" validate:"oneof=direct fanout topic"`
	QueueDeclareArgs   QueueDeclareArgs `yaml:"queue_declare_args"`
	BindingKey         string           `env:"BINDING_KEY" yaml:"binding_key" envDefault:"taskexec_trigger_binding_key"`
	PrefetchCount      int              `env:"PREFETCH_COUNT" yaml:"prefetch_count" envDefault:"10" validate:"gte=1"`
	ConnectionPoolSize int              `env:"CONNECTION_POOL_SIZE" yaml:"connection_pool_size" envDefault:"5" validate:"gte=1"`
	HeartBeatInterval  int              `env:"HEARTBEAT_INTERVAL" yaml:"heartbeat_interval" envDefault:"10"`
	ConnectionTimeout  int              `env:"CONNECTION_TIMEOUT" yaml:"connection_timeout" envDefault:"5"`
}
