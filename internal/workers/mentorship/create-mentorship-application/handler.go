package creatementorshipapplication

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/Barlow1/hoots-sub000/internal/common/camunda"
	"github.com/Barlow1/hoots-sub000/internal/common/database"
	"github.com/Barlow1/hoots-sub000/internal/common/errors"
	"github.com/Barlow1/hoots-sub000/internal/common/logger"
	"github.com/Barlow1/hoots-sub000/internal/common/validation"
	"github.com/Barlow1/hoots-sub000/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "create-mentorship-application"

var applicationSchema = validation.MustCompile(applicationDataSchema)

type Handler struct {
	config *Config
	db     *sql.DB
	errs   *errors.ErrorHandler
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
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
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var (
		mentorUserID string
		accepting    bool
	)
	err := h.db.QueryRowContext(ctx,
		`SELECT user_id, accepting_mentees FROM mentors WHERE id = $1`,
		input.MentorID,
	).Scan(&mentorUserID, &accepting)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewResourceNotFoundError("mentor", "mentorId: "+input.MentorID)
	}
	if err != nil {
		return nil, errors.NewMentorLookupFailedError(err)
	}
	if mentorUserID == input.MenteeID {
		return nil, errors.NewApplicationValidationFailedError("cannot apply to your own mentor profile")
	}
	if !accepting {
		return nil, errors.NewMentorNotAcceptingError(input.MentorID)
	}

	applicationData, err := json.Marshal(input.ApplicationData)
	if err != nil {
		return nil, errors.NewApplicationValidationFailedError(err.Error())
	}

	appID := uuid.New().String()
	createdAt := h.now().UTC().Format(time.RFC3339)

	err = database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM applications
				WHERE mentee_id = $1 AND mentor_id = $2 AND status IN ($3, $4)
			)`,
			input.MenteeID, input.MentorID,
			string(models.ApplicationPending), string(models.ApplicationAccepted),
		).Scan(&exists)
		if err != nil {
			return errors.NewDatabaseInsertFailedError(err)
		}
		if exists {
			return errors.NewDuplicateApplicationError(input.MenteeID, input.MentorID)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO applications (id, mentee_id, mentor_id, application_data, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)`,
			appID, input.MenteeID, input.MentorID, applicationData,
			string(models.ApplicationPending), createdAt,
		)
		if err != nil {
			return errors.NewDatabaseInsertFailedError(err)
		}
		return nil
	})
	if err != nil {
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	h.writeAuditLog(ctx, appID, input, createdAt)

	h.logger.Info("mentorship application created", map[string]interface{}{
		"applicationId": appID,
		"menteeId":      input.MenteeID,
		"mentorId":      input.MentorID,
	})

	return &Output{
		ApplicationID:     appID,
		ApplicationStatus: string(models.ApplicationPending),
		CreatedAt:         createdAt,
	}, nil
}

func validateInput(input *Input) error {
	switch {
	case input.MenteeID == "":
		return errors.NewApplicationValidationFailedError("menteeId is required")
	case input.MentorID == "":
		return errors.NewApplicationValidationFailedError("mentorId is required")
	case input.MenteeID == input.MentorID:
		return errors.NewApplicationValidationFailedError("cannot apply to yourself")
	}

	data := input.ApplicationData
	if data == nil {
		data = map[string]interface{}{}
	}
	result, err := applicationSchema.Validate(data)
	if err != nil {
		return errors.NewApplicationValidationFailedError(err.Error())
	}
	if !result.Valid {
		return errors.NewApplicationValidationFailedError(result.Summary())
	}
	return nil
}

// writeAuditLog is best effort; the application row is already committed.
func (h *Handler) writeAuditLog(ctx context.Context, appID string, input *Input, createdAt string) {
	details, _ := json.Marshal(map[string]interface{}{
		"menteeId": input.MenteeID,
		"mentorId": input.MentorID,
	})
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"application_created", "application", appID, details, createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err.Error(),
			"applicationId": appID,
		})
	}
}
