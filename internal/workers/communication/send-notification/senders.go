package sendnotification

import (
	"context"
	"fmt"

	awsclient "github.com/Barlow1/hoots-sub000/internal/common/aws"
	"github.com/Barlow1/hoots-sub000/internal/common/config"
	"github.com/Barlow1/hoots-sub000/internal/common/sendgrid"
	"github.com/Barlow1/hoots-sub000/internal/models"
)

type EmailSender interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) error
}

// NewSenders builds the providers selected in cfg. Disabled channels return
// nil senders.
func NewSenders(ctx context.Context, cfg *config.Config) (EmailSender, SMSSender, error) {
	n := cfg.Notifications
	if !n.Email.Enabled && !n.SMS.Enabled {
		return nil, nil, nil
	}

	var (
		email EmailSender
		sms   SMSSender
	)
	if n.Email.Enabled && n.Email.Provider == "sendgrid" {
		email = sendgrid.NewSender(n.SendGrid.APIKey, n.Email.FromName, n.Email.FromEmail)
		if !n.SMS.Enabled {
			return email, nil, nil
		}
	}

	awsCfg, err := awsclient.LoadConfig(ctx, n.AWS.Region)
	if err != nil {
		return nil, nil, fmt.Errorf("load aws config: %w", err)
	}
	if n.Email.Enabled && email == nil {
		email = awsclient.NewSESEmailSender(awsCfg, n.Email.FromName, n.Email.FromEmail)
	}
	if n.SMS.Enabled {
		sms = awsclient.NewSNSSMSSender(awsCfg)
	}
	return email, sms, nil
}
