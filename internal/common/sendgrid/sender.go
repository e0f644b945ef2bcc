// Package sendgrid delivers notification emails through the SendGrid v3 API.
package sendgrid

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Barlow1/hoots-sub000/internal/models"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	DefaultHost = "https://api.sendgrid.com"
	endpoint    = "/v3/mail/send"
)

type Sender struct {
	key  string
	host string
	from *sgmail.Email
}

func NewSender(key, fromName, fromEmail string) *Sender {
	return NewSenderWithHost(key, DefaultHost, fromName, fromEmail)
}

// NewSenderWithHost points the sender at a different API host.
func NewSenderWithHost(key, host, fromName, fromEmail string) *Sender {
	return &Sender{
		key:  key,
		host: host,
		from: sgmail.NewEmail(fromName, fromEmail),
	}
}

func (s *Sender) Send(ctx context.Context, msg models.EmailMessage) error {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.TextBody))
	if msg.HTMLBody != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLBody))
	}

	req := sendgrid.GetRequest(s.key, endpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
