package config

type RedisConfig struct {
	Address string `env:"ADDRESS" yaml:"address" envDefault:"localhost:6379" validate:"required"`
	// Maximum number of idle connections in the pool.
	MaxIdle int `env:"MAX_IDLE" yaml:"max_idle" envDefault:"10"`

	// Maximum number of connections allocated by the pool at a given time.
	// When zero, there is no limit on the number of connections in the pool.
	MaxActive int `env:"MAX_ACTIVE" yaml:"max_active" envDefault:"100"`

	// Close connections after remaining idle for this duration in seconds.
	IdleTimeout int `env:"IDLE_TIMEOUT" yaml:"idle_timeout" envDefault:"300"`

	// ReadTimeout specifies the timeout in seconds for reading a single command reply.
	// BRPOP also blocks for this long before polling again.
	ReadTimeout int `env:"READ_TIMEOUT" yaml:"read_timeout" envDefault:"15"`

	// WriteTimeout specifies the timeout in seconds for writing a single command.
	WriteTimeout int `env:"WRITE_TIMEOUT" yaml:"write_timeout" envDefault:"15"`

	// ConnectTimeout specifies the timeout in seconds for connecting to the Redis server.
	ConnectTimeout int `env:"CONNECT_TIMEOUT" yaml:"connect_timeout" envDefault:"15"`

	// RecordKeyPrefix namespaces execution request records written by the redis store.
	RecordKeyPrefix string `env:"RECORD_KEY_PREFIX" yaml:"record_key_prefix" envDefault:"taskexec:request:"`

	// RecordTTL is how long, in seconds, a finished request record is kept. Zero keeps it forever.
	RecordTTL int `env:"RECORD_TTL" yaml:"record_ttl" envDefault:"86400"`
}
