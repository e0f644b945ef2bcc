package schedulemeeting

import (
	"time"

	"github.com/Barlow1/hoots-sub000/internal/common/config"
)

type Config struct {
	Timeout   time.Duration
	RoomGrace time.Duration
	EarlyJoin time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:   config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		RoomGrace: config.GetDuration(cfg.Meetings.RoomGraceMS),
		EarlyJoin: 10 * time.Minute,
	}
}
