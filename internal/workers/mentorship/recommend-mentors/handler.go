package recommendmentors

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/Barlow1/hoots-sub000/internal/common/camunda"
	"github.com/Barlow1/hoots-sub000/internal/common/database"
	"github.com/Barlow1/hoots-sub000/internal/common/errors"
	"github.com/Barlow1/hoots-sub000/internal/common/logger"
	"github.com/Barlow1/hoots-sub000/internal/common/metrics"
	"github.com/Barlow1/hoots-sub000/internal/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "recommend-mentors"

	preferencesCacheName = "preferences"
)

const (
	preferencesQuery = `SELECT industry, mentor_cost, mentor_experience FROM users WHERE id = $1`
	candidatesQuery  = `
		SELECT id, name, bio, industry, cost, experience, tags
		FROM mentors
		WHERE is_active AND user_id <> $1
		ORDER BY created_at`
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	errs   *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
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
	prefs, err := h.preferences(ctx, input)
	if err != nil {
		return nil, err
	}

	candidates := input.Candidates
	if candidates == nil {
		if candidates, err = h.loadCandidates(ctx, input.UserID); err != nil {
			return nil, errors.NewMentorLookupFailedError(err)
		}
	}
	candidates = excludeSelf(candidates, input.UserID)

	matches := h.config.Policy.Filter(*prefs, candidates)
	if input.Limit > 0 && len(matches) > input.Limit {
		matches = matches[:input.Limit]
	}
	metrics.MentorMatchesReturned.Observe(float64(len(matches)))

	h.logger.Info("mentor recommendations computed", map[string]interface{}{
		"userId":     input.UserID,
		"industry":   prefs.Industry,
		"candidates": len(candidates),
		"matches":    len(matches),
	})

	return &Output{
		Matches:        matches,
		MatchCount:     len(matches),
		CandidateCount: len(candidates),
		HasMatches:     len(matches) > 0,
	}, nil
}

func (h *Handler) preferences(ctx context.Context, input *Input) (*engine.Preferences, error) {
	if input.Preferences != nil {
		return input.Preferences, nil
	}
	if input.UserID == "" {
		return nil, errors.NewPreferencesNotFoundError("")
	}

	cacheKey := "user:preferences:" + input.UserID
	var cached engine.Preferences
	err := database.GetJSON(ctx, h.redis, cacheKey, &cached)
	metrics.RecordCacheLookup(preferencesCacheName, err == nil)
	if err == nil {
		return &cached, nil
	}
	if !stderrors.Is(err, database.ErrCacheMiss) {
		h.logger.Warn("preferences cache read failed", map[string]interface{}{"userId": input.UserID, "error": err.Error()})
	}

	var (
		prefs      engine.Preferences
		cost       sql.NullFloat64
		experience sql.NullFloat64
	)
	err = h.db.QueryRowContext(ctx, preferencesQuery, input.UserID).Scan(&prefs.Industry, &cost, &experience)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewPreferencesNotFoundError(input.UserID)
	}
	if err != nil {
		return nil, errors.NewMentorLookupFailedError(err)
	}
	prefs.MentorPreferences.Cost = cost.Float64
	prefs.MentorPreferences.Experience = experience.Float64

	if err := database.SetJSON(ctx, h.redis, cacheKey, prefs, h.config.CacheTTL); err != nil {
		h.logger.Warn("preferences cache write failed", map[string]interface{}{"userId": input.UserID, "error": err.Error()})
	}
	return &prefs, nil
}

// loadCandidates returns active mentors, leaving out the profile owned by
// userID.
func (h *Handler) loadCandidates(ctx context.Context, userID string) ([]engine.Mentor, error) {
	rows, err := h.db.QueryContext(ctx, candidatesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []engine.Mentor{}
	for rows.Next() {
		var (
			m          engine.Mentor
			bio        sql.NullString
			cost       sql.NullFloat64
			experience sql.NullFloat64
			tags       pq.StringArray
		)
		if err := rows.Scan(&m.ID, &m.Name, &bio, &m.Industry, &cost, &experience, &tags); err != nil {
			return nil, err
		}
		m.Bio = bio.String
		m.Cost = cost.Float64
		m.Experience = experience.Float64
		m.Tags = tags
		candidates = append(candidates, m)
	}
	return candidates, rows.Err()
}

// excludeSelf drops inline candidates keyed by the requesting user's id.
func excludeSelf(candidates []engine.Mentor, userID string) []engine.Mentor {
	if userID == "" {
		return candidates
	}
	out := make([]engine.Mentor, 0, len(candidates))
	for _, m := range candidates {
		if m.ID != userID {
			out = append(out, m)
		}
	}
	return out
}
