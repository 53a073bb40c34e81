package config

import (
	"strings"
	"time"
)

// KafkaConfig настройки публикации событий о вычислениях.
type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled" env:"CALC_KAFKA_ENABLED" env-default:"false"`
	Brokers      string        `yaml:"brokers" env:"CALC_KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic        string        `yaml:"topic" env:"CALC_KAFKA_TOPIC" env-default:"calculations"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"CALC_KAFKA_WRITE_TIMEOUT" env-default:"5s"`
	MaxRetries   int           `yaml:"max_retries" env:"CALC_KAFKA_MAX_RETRIES" env-default:"3"`
}

// GetBrokers возвращает список брокеров без пустых элементов.
func (k *KafkaConfig) GetBrokers() []string {
	parts := strings.Split(k.Brokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
