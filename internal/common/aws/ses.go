package aws

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/Barlow1/hoots-sub000/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the part of the SES client the sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESEmailSender struct {
	client SESAPI
	source string
}

func NewSESEmailSender(cfg aws.Config, fromName, fromEmail string) *SESEmailSender {
	return NewSESEmailSenderWithClient(ses.NewFromConfig(cfg), fromName, fromEmail)
}

func NewSESEmailSenderWithClient(client SESAPI, fromName, fromEmail string) *SESEmailSender {
	from := mail.Address{Name: fromName, Address: fromEmail}
	return &SESEmailSender{client: client, source: from.String()}
}

func (s *SESEmailSender) Send(ctx context.Context, msg models.EmailMessage) error {
	to := mail.Address{Name: msg.ToName, Address: msg.To}

	body := &types.Body{Text: &types.Content{Data: aws.String(msg.TextBody), Charset: aws.String("UTF-8")}}
	if msg.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String("UTF-8")}
	}

	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{to.String()}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
		Source: aws.String(s.source),
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
