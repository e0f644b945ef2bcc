package recommendmentors

import (
	"time"

	"github.com/Barlow1/hoots-sub000/internal/common/config"
	"github.com/Barlow1/hoots-sub000/internal/engine"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	Policy   engine.MatchPolicy
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:  config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		CacheTTL: 10 * time.Minute,
		Policy:   cfg.Matching.Policy(),
	}
}
