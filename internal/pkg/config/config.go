package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config carries every tunable the service needs. It is loaded once at
// startup and passed explicitly into constructors; nothing reads the
// environment after this point.
type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Notify    NotifyConfig
	Reconcile ReconcileConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=lending_system"`

	UsersCollection    string `env:"MONGO_USERS_COLLECTION,    default=library_users"`
	BooksCollection    string `env:"MONGO_BOOKS_COLLECTION,    default=library_books"`
	RequestsCollection string `env:"MONGO_REQUESTS_COLLECTION, default=library_requests"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type NotifyConfig struct {
	Topic   string `env:"NOTIFY_TOPIC,   default=library-events"`
	Workers int    `env:"NOTIFY_WORKERS, default=4"`
}

type ReconcileConfig struct {
	Interval time.Duration `env:"RECONCILE_INTERVAL, default=5m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
