package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config is the process configuration, loaded from the environment.
// Optional backends (Redis, AMQP) are disabled when their address is
// left empty.
type Config struct {
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080"`
	MySQLDSN       string        `envconfig:"MYSQL_DSN" default:"root:root@tcp(localhost:3306)/partstore?parseTime=true"`
	MigrationsPath string        `envconfig:"MIGRATIONS_PATH" default:"db/migrations"`
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	CacheTTL       time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	AMQPURL        string        `envconfig:"AMQP_URL"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownGrace  time.Duration `envconfig:"SHUTDOWN_GRACE" default:"5s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("partstore", &cfg); err != nil {
		return nil, errors.Wrap(err, "load config from environment")
	}
	return &cfg, nil
}
