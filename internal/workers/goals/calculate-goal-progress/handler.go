package calculategoalprogress

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/Barlow1/hoots-sub000/internal/common/camunda"
	"github.com/Barlow1/hoots-sub000/internal/common/errors"
	"github.com/Barlow1/hoots-sub000/internal/common/logger"
	"github.com/Barlow1/hoots-sub000/internal/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "calculate-goal-progress"

const (
	goalExistsQuery = `SELECT EXISTS(SELECT 1 FROM goals WHERE id = $1)`
	milestonesQuery = `SELECT id, name, completed FROM milestones WHERE goal_id = $1 ORDER BY position`
	updateGoalQuery = `UPDATE goals SET progress = $1, updated_at = NOW() WHERE id = $2`
)

type Handler struct {
	config *Config
	db     *sql.DB
	errs   *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		errs:   errors.NewErrorHandler(log),
		logger: log,
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
	milestones := input.Milestones
	fromStore := milestones == nil && input.GoalID != ""
	if fromStore {
		var err error
		if milestones, err = h.loadMilestones(ctx, input.GoalID); err != nil {
			return nil, err
		}
	}

	completed := engine.CountCompleted(milestones)
	progress := engine.GoalProgress(milestones)
	output := &Output{
		GoalID:         input.GoalID,
		Progress:       progress,
		CompletedCount: completed,
		TotalCount:     len(milestones),
		IsComplete:     len(milestones) > 0 && completed == len(milestones),
	}

	if fromStore && h.config.PersistProgress {
		h.persist(ctx, output)
	}
	return output, nil
}

func (h *Handler) loadMilestones(ctx context.Context, goalID string) ([]engine.Milestone, error) {
	var exists bool
	if err := h.db.QueryRowContext(ctx, goalExistsQuery, goalID).Scan(&exists); err != nil {
		return nil, errors.NewGoalLookupFailedError(err)
	}
	if !exists {
		return nil, errors.NewGoalNotFoundError(goalID)
	}

	rows, err := h.db.QueryContext(ctx, milestonesQuery, goalID)
	if err != nil {
		return nil, errors.NewGoalLookupFailedError(err)
	}
	defer rows.Close()

	var milestones []engine.Milestone
	for rows.Next() {
		var (
			m    engine.Milestone
			name sql.NullString
		)
		if err := rows.Scan(&m.ID, &name, &m.Completed); err != nil {
			return nil, errors.NewGoalLookupFailedError(err)
		}
		m.Name = name.String
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewGoalLookupFailedError(err)
	}
	return milestones, nil
}

// persist writes the computed progress to goals.progress. Failures are
// logged only.
func (h *Handler) persist(ctx context.Context, output *Output) {
	if _, err := h.db.ExecContext(ctx, updateGoalQuery, output.Progress, output.GoalID); err != nil {
		h.logger.Warn("failed to store goal progress", map[string]interface{}{
			"goalId": output.GoalID,
			"error":  err.Error(),
		})
	}
}
