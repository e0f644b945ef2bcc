package validatesubscription

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
	"github.com/Barlow1/hoots-sub000/internal/common/metrics"
	"github.com/Barlow1/hoots-sub000/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const TaskType = "validate-subscription"

const subscriptionQuery = `SELECT user_id, tier, status, current_period_end FROM subscriptions WHERE user_id = $1`

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	errs   *errors.ErrorHandler
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
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
	if input.UserID == "" {
		return nil, errors.NewSubscriptionInvalidError("userId is required")
	}
	if input.RequiredTier != "" && !input.RequiredTier.Known() {
		return nil, errors.NewSubscriptionInvalidError("unknown required tier: " + string(input.RequiredTier))
	}

	sub, err := h.subscription(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if !sub.Tier.Known() {
		return nil, errors.NewSubscriptionInvalidError("unknown tier: " + string(sub.Tier))
	}
	if !sub.Status.Usable() {
		return nil, errors.NewSubscriptionInvalidError("subscription status: " + string(sub.Status))
	}
	if sub.CurrentPeriodEnd != nil && h.now().After(*sub.CurrentPeriodEnd) {
		return nil, errors.NewSubscriptionExpiredError("period ended " + sub.CurrentPeriodEnd.UTC().Format(time.RFC3339))
	}
	if input.RequiredTier != "" && !sub.Tier.AtLeast(input.RequiredTier) {
		return nil, errors.NewSubscriptionInvalidError(
			"tier "+string(sub.Tier)+" does not include "+string(input.RequiredTier)).
			WithMetadata("tier", string(sub.Tier)).
			WithMetadata("requiredTier", string(input.RequiredTier))
	}

	return &Output{
		IsValid:     true,
		TierLevel:   sub.Tier,
		Status:      string(sub.Status),
		Permissions: sub.Tier.Permissions(),
	}, nil
}

// subscription reads through the cache. Users without a row are on the free
// tier.
func (h *Handler) subscription(ctx context.Context, userID string) (*models.Subscription, error) {
	cacheKey := "sub:" + userID

	var cached models.Subscription
	err := database.GetJSON(ctx, h.redis, cacheKey, &cached)
	metrics.RecordCacheLookup("subscription", err == nil)
	if err == nil {
		return &cached, nil
	}
	if !stderrors.Is(err, database.ErrCacheMiss) {
		h.logger.Debug("subscription cache unavailable", map[string]interface{}{"userId": userID, "error": err.Error()})
	}

	var (
		sub       models.Subscription
		periodEnd sql.NullTime
	)
	err = h.db.QueryRowContext(ctx, subscriptionQuery, userID).Scan(&sub.UserID, &sub.Tier, &sub.Status, &periodEnd)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		sub = models.Subscription{UserID: userID, Tier: models.TierFree, Status: models.SubscriptionActive}
	case err != nil:
		return nil, errors.NewSubscriptionCheckFailedError(err)
	case periodEnd.Valid:
		end := periodEnd.Time
		sub.CurrentPeriodEnd = &end
	}

	if err := database.SetJSON(ctx, h.redis, cacheKey, sub, h.config.CacheTTL); err != nil {
		h.logger.Debug("subscription cache write failed", map[string]interface{}{"userId": userID, "error": err.Error()})
	}
	return &sub, nil
}
