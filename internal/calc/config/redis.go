package config

import (
	"time"

	"gocalc/pkg/db/redis"
)

// RedisConfig представляет конфигурацию кэша вычислений.
type RedisConfig struct {
	Enabled         bool          `yaml:"enabled" env:"CALC_REDIS_ENABLED" env-default:"false"`
	Host            string        `yaml:"host" env:"CALC_REDIS_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"CALC_REDIS_PORT" env-default:"6379"`
	Password        string        `yaml:"password" env:"CALC_REDIS_PASSWORD" env-default:""`
	DB              int           `yaml:"db" env:"CALC_REDIS_DB" env-default:"0"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"CALC_REDIS_CONNECT_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"CALC_REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"CALC_REDIS_WRITE_TIMEOUT" env-default:"3s"`
	PoolSize        int           `yaml:"pool_size" env:"CALC_REDIS_POOL_SIZE" env-default:"10"`
	MinIdle         int           `yaml:"min_idle" env:"CALC_REDIS_MIN_IDLE" env-default:"2"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"CALC_REDIS_IDLE_TIMEOUT" env-default:"5m"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"CALC_REDIS_MAX_CONN_LIFETIME" env-default:"1h"`
	DefaultTTL      time.Duration `yaml:"default_ttl" env:"CALC_REDIS_DEFAULT_TTL" env-default:"15m"`
}

// ClientConfig переводит настройки в конфигурацию общего клиента.
func (c *RedisConfig) ClientConfig() *redis.Config {
	return &redis.Config{
		Host:            c.Host,
		Port:            c.Port,
		Password:        c.Password,
		DB:              c.DB,
		PoolSize:        c.PoolSize,
		MinIdle:         c.MinIdle,
		ConnectTimeout:  c.ConnectTimeout,
		ReadTimeout:     c.ReadTimeout,
		WriteTimeout:    c.WriteTimeout,
		IdleTimeout:     c.IdleTimeout,
		MaxConnLifetime: c.MaxConnLifetime,
	}
}
