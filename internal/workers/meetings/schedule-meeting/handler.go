package schedulemeeting

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/Barlow1/hoots-sub000/internal/common/camunda"
	"github.com/Barlow1/hoots-sub000/internal/common/errors"
	"github.com/Barlow1/hoots-sub000/internal/common/http"
	"github.com/Barlow1/hoots-sub000/internal/common/logger"
	"github.com/Barlow1/hoots-sub000/internal/common/validation"
	"github.com/Barlow1/hoots-sub000/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "schedule-meeting"

var meetingSchema = validation.MustCompile(inputSchema)

type Handler struct {
	config *Config
	db     *sql.DB
	rooms  RoomProvider
	errs   *errors.ErrorHandler
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, rooms RoomProvider, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		rooms:  rooms,
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
	meeting, err := h.buildMeeting(input)
	if err != nil {
		return nil, err
	}

	var status models.ApplicationStatus
	err = h.db.QueryRowContext(ctx,
		`SELECT status FROM applications WHERE id = $1 AND mentor_id = $2 AND mentee_id = $3`,
		input.ApplicationID, input.MentorID, input.MenteeID,
	).Scan(&status)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewMeetingInvalidError("no application " + input.ApplicationID + " between mentor and mentee")
	}
	if err != nil {
		return nil, errors.NewExternalServiceError("postgres", err)
	}
	if status != models.ApplicationAccepted {
		return nil, errors.NewMeetingInvalidError("application is " + string(status))
	}

	room, err := h.rooms.CreateRoom(ctx, RoomRequest{
		Name:      meeting.RoomName,
		NotBefore: meeting.StartsAt.Add(-h.config.EarlyJoin),
		Expires:   meeting.EndsAt.Add(h.config.RoomGrace),
	})
	if err != nil {
		return nil, roomError(err)
	}
	meeting.RoomName = room.Name
	meeting.RoomURL = room.URL

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO meetings (id, application_id, mentor_id, mentee_id, title, room_name, room_url, starts_at, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		meeting.ID, meeting.ApplicationID, meeting.MentorID, meeting.MenteeID, meeting.Title,
		meeting.RoomName, meeting.RoomURL, meeting.StartsAt, meeting.EndsAt,
	)
	if err != nil {
		if delErr := h.rooms.DeleteRoom(ctx, meeting.RoomName); delErr != nil {
			h.logger.Warn("failed to remove orphaned room", map[string]interface{}{
				"roomName": meeting.RoomName,
				"error":    delErr.Error(),
			})
		}
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	h.logger.Info("meeting scheduled", map[string]interface{}{
		"meetingId":     meeting.ID,
		"applicationId": meeting.ApplicationID,
		"startsAt":      meeting.StartsAt.Format(time.RFC3339),
	})

	return &Output{
		MeetingID: meeting.ID,
		RoomURL:   meeting.RoomURL,
		RoomName:  meeting.RoomName,
		StartsAt:  meeting.StartsAt.Format(time.RFC3339),
		EndsAt:    meeting.EndsAt.Format(time.RFC3339),
	}, nil
}

func (h *Handler) buildMeeting(input *Input) (*models.Meeting, error) {
	result, err := meetingSchema.Validate(input)
	if err != nil {
		return nil, errors.NewMeetingInvalidError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewMeetingInvalidError(result.Summary())
	}
	if input.MentorID == input.MenteeID {
		return nil, errors.NewMeetingInvalidError("mentor and mentee must differ")
	}

	startsAt, err := time.Parse(time.RFC3339, input.StartsAt)
	if err != nil {
		return nil, errors.NewMeetingInvalidError("startsAt: " + err.Error())
	}
	startsAt = startsAt.UTC()
	if !startsAt.After(h.now()) {
		return nil, errors.NewMeetingInvalidError("startsAt must be in the future")
	}

	duration := input.DurationMinutes
	if duration == 0 {
		duration = defaultDurationMinutes
	}

	title := input.Title
	if title == "" {
		title = "Mentorship session"
	}

	id := uuid.New().String()
	return &models.Meeting{
		ID:            id,
		ApplicationID: input.ApplicationID,
		MentorID:      input.MentorID,
		MenteeID:      input.MenteeID,
		Title:         title,
		RoomName:      "hoots-" + id,
		StartsAt:      startsAt,
		EndsAt:        startsAt.Add(time.Duration(duration) * time.Minute),
	}, nil
}

// roomError maps provider failures. Client errors are not worth retrying.
func roomError(err error) error {
	var httpErr *http.HTTPError
	if stderrors.As(err, &httpErr) && !httpErr.Temporary() {
		return errors.NewMeetingInvalidError("room provider rejected request: " + httpErr.Error())
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError("room provider", err)
	}
	return errors.NewMeetingRoomFailedError(err)
}
