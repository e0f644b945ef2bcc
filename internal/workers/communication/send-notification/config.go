package sendnotification

import (
	"time"

	"github.com/Barlow1/hoots-sub000/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	AppURL       string
	Timeout      time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		EmailEnabled: cfg.Notifications.Email.Enabled,
		SMSEnabled:   cfg.Notifications.SMS.Enabled,
		AppURL:       cfg.Notifications.AppURL,
		Timeout:      config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
