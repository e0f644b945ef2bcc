package validatesubscription

import (
	"time"

	"github.com/Barlow1/hoots-sub000/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:  config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		CacheTTL: 5 * time.Minute,
	}
}
