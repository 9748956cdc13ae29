package config

// MongoDBConfig configures the mongodb result store
type MongoDBConfig struct {
	URI         string `env:"URI" yaml:"uri" validate:"required"`
	DbName      string `env:"DB_NAME" yaml:"db_name" envDefault:"taskexec"`
	Collection  string `env:"COLLECTION" yaml:"collection" envDefault:"execution_requests"`
	MaxPoolSize uint64 `env:"MAX_POOL_SIZE" yaml:"max_pool_size" envDefault:"10"`
}
