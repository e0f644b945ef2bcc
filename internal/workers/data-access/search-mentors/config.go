package searchmentors

import (
	"time"

	"github.com/Barlow1/hoots-sub000/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	DefaultIndex string
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:      config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		DefaultIndex: cfg.Database.Elasticsearch.MentorIndex,
	}
}
