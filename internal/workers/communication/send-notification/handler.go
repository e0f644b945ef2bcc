package sendnotification

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/Barlow1/hoots-sub000/internal/common/camunda"
	"github.com/Barlow1/hoots-sub000/internal/common/errors"
	"github.com/Barlow1/hoots-sub000/internal/common/logger"
	"github.com/Barlow1/hoots-sub000/internal/common/metrics"
	"github.com/Barlow1/hoots-sub000/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const TaskType = "send-notification"

type Handler struct {
	config *Config
	db     *sql.DB
	email  EmailSender
	sms    SMSSender
	errs   *errors.ErrorHandler
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		email:  email,
		sms:    sms,
		errs:   errors.NewErrorHandler(log),
		logger: log,
		now:    time.Now,
	}
}

func (h *Handler) Handle(ctx context.Context, client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := errors.NewParseError(err)
		h.errs.HandleJobError(ctx, client, job, stdErr)
		return stdErr
	}

	execCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	output, err := h.execute(execCtx, &input)
	if err != nil {
		h.errs.HandleJobError(ctx, client, job, err)
		return err
	}
	return camunda.CompleteJob(ctx, client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	tmpl, ok := templates[input.NotificationType]
	if !ok {
		return nil, errors.NewTemplateNotFoundError(string(input.NotificationType))
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         models.NotificationDisabled,
		SentAt:         h.now().UTC().Format(time.RFC3339),
		Channels:       []string{},
	}

	rcpt, err := h.lookupRecipient(ctx, input.RecipientID)
	if stderrors.Is(err, sql.ErrNoRows) {
		h.logger.Warn("recipient not found", map[string]interface{}{"recipientId": input.RecipientID})
		return output, nil
	}
	if err != nil {
		return nil, errors.NewNotificationSendFailedError(string(input.NotificationType), err)
	}

	data := map[string]interface{}{
		"recipientName":    rcpt.Name,
		"notificationType": string(input.NotificationType),
		"applicationId":    input.ApplicationID,
		"meetingId":        input.MeetingID,
		"priority":         input.Priority,
		"appUrl":           h.config.AppURL,
	}
	for k, v := range input.Metadata {
		data[k] = v
	}
	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)

	failed := false
	if h.config.EmailEnabled && h.email != nil && rcpt.Email != "" {
		err := h.email.Send(ctx, models.EmailMessage{
			To:       rcpt.Email,
			ToName:   rcpt.Name,
			Subject:  subject,
			TextBody: body,
			HTMLBody: htmlBody(body),
		})
		failed = !h.record(output, ChannelEmail, err) || failed
	}

	if h.config.SMSEnabled && h.sms != nil && rcpt.Phone != "" && input.Priority == PriorityHigh {
		err := h.sms.SendSMS(ctx, rcpt.Phone, subject+": "+body)
		failed = !h.record(output, ChannelSMS, err) || failed
	}

	switch {
	case failed:
		output.Status = models.NotificationFailed
	case len(output.Channels) > 0:
		output.Status = models.NotificationSent
	}

	h.persist(ctx, input, output)

	h.logger.Info("notification processed", map[string]interface{}{
		"notificationId": output.NotificationID,
		"type":           string(input.NotificationType),
		"status":         string(output.Status),
		"channels":       output.Channels,
	})
	return output, nil
}

// record counts a delivery attempt and reports whether it succeeded.
func (h *Handler) record(output *Output, channel string, err error) bool {
	if err != nil {
		metrics.NotificationsSent.WithLabelValues(channel, string(models.NotificationFailed)).Inc()
		h.logger.Error("notification delivery failed", map[string]interface{}{
			"channel":        channel,
			"notificationId": output.NotificationID,
			"error":          err.Error(),
		})
		return false
	}
	metrics.NotificationsSent.WithLabelValues(channel, string(models.NotificationSent)).Inc()
	output.Channels = append(output.Channels, channel)
	return true
}

func (h *Handler) lookupRecipient(ctx context.Context, recipientID string) (*recipient, error) {
	if recipientID == "" {
		return nil, sql.ErrNoRows
	}

	var (
		email                      string
		phone, firstName, lastName sql.NullString
	)
	err := h.db.QueryRowContext(ctx,
		`SELECT email, phone, first_name, last_name FROM users WHERE id = $1`,
		recipientID,
	).Scan(&email, &phone, &firstName, &lastName)
	if err != nil {
		return nil, err
	}

	user := models.User{Email: email, FirstName: firstName.String, LastName: lastName.String}
	return &recipient{Email: email, Phone: phone.String, Name: user.DisplayName()}, nil
}

// persist is best effort; delivery has already happened.
func (h *Handler) persist(ctx context.Context, input *Input, output *Output) {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, type, status, channels, application_id, meeting_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)`,
		output.NotificationID,
		input.RecipientID,
		string(input.NotificationType),
		string(output.Status),
		pq.Array(output.Channels),
		input.ApplicationID,
		input.MeetingID,
		output.SentAt,
	)
	if err != nil {
		h.logger.Warn("failed to store notification", map[string]interface{}{
			"notificationId": output.NotificationID,
			"error":          err.Error(),
		})
	}
}
