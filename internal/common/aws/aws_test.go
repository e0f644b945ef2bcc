package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/Barlow1/hoots-sub000/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func TestSESEmailSender_Send(t *testing.T) {
	var captured *ses.SendEmailInput
	mock := &MockSESService{SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		captured = params
		return &ses.SendEmailOutput{}, nil
	}}

	sender := NewSESEmailSenderWithClient(mock, "Hoots", "no-reply@hoots.app")
	err := sender.Send(context.Background(), models.EmailMessage{
		To:       "ada@example.com",
		ToName:   "Ada",
		Subject:  "Welcome",
		TextBody: "hello",
	})

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, `"Hoots" <no-reply@hoots.app>`, *captured.Source)
	assert.Equal(t, []string{`"Ada" <ada@example.com>`}, captured.Destination.ToAddresses)
	assert.Equal(t, "Welcome", *captured.Message.Subject.Data)
	assert.Nil(t, captured.Message.Body.Html)
}

func TestSESEmailSender_Error(t *testing.T) {
	mock := &MockSESService{SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		return nil, errors.New("throttled")
	}}

	err := NewSESEmailSenderWithClient(mock, "Hoots", "no-reply@hoots.app").Send(context.Background(), models.EmailMessage{To: "x@example.com"})
	assert.ErrorContains(t, err, "throttled")
}

func TestSNSSMSSender_SendSMS(t *testing.T) {
	var captured *sns.PublishInput
	mock := &MockSNSService{PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
		captured = params
		return &sns.PublishOutput{}, nil
	}}

	require.NoError(t, NewSNSSMSSenderWithClient(mock).SendSMS(context.Background(), "+15550100", "Meeting in 1h"))
	assert.Equal(t, "+15550100", *captured.PhoneNumber)
	assert.Equal(t, "Meeting in 1h", *captured.Message)
	assert.Equal(t, "Transactional", *captured.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue)
}
