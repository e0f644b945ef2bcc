package camunda

import (
	"context"
	"time"

	"github.com/Barlow1/hoots-sub000/internal/common/errors"
	"github.com/Barlow1/hoots-sub000/internal/common/logger"
	"github.com/Barlow1/hoots-sub000/internal/common/metrics"
	"github.com/Barlow1/hoots-sub000/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

// JobHandler processes one job. Handlers report the outcome to the engine
// themselves; the returned error is only used for instrumentation.
type JobHandler interface {
	Handle(ctx context.Context, client worker.JobClient, job entities.Job) error
}

// Reporter receives errors that will not be retried by the engine.
type Reporter interface {
	Report(err error, extras map[string]interface{})
}

type WorkerOptions struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
}

type Worker struct {
	worker   worker.JobWorker
	taskType string
	logger   logger.Logger
}

// NewWorker opens a job worker for opts.TaskType on client.
func NewWorker(c *Client, opts WorkerOptions, handler JobHandler, obs *observability.Observability, reporter Reporter, log logger.Logger) *Worker {
	log = log.WithFields(map[string]interface{}{"taskType": opts.TaskType})

	jw := c.client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(Instrument(opts.TaskType, handler, obs, reporter, log)).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Name("hoots-" + opts.TaskType).
		Open()

	log.Info("worker started", map[string]interface{}{"maxJobsActive": opts.MaxJobsActive})
	return &Worker{worker: jw, taskType: opts.TaskType, logger: log}
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

// Instrument wraps handler with a span, Prometheus and OTel metrics.
func Instrument(taskType string, handler JobHandler, obs *observability.Observability, reporter Reporter, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		ctx, span := obs.StartSpan(context.Background(), taskType,
			attribute.Int64("job.key", job.Key),
			attribute.Int64("process.instance.key", job.ProcessInstanceKey),
		)

		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		start := time.Now()

		err := handler.Handle(ctx, client, job)

		elapsed := time.Since(start)
		metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		status := "completed"
		if err != nil {
			status = "failed"
			stdErr := errors.Normalize(err)
			metrics.WorkerJobsFailed.WithLabelValues(taskType, string(stdErr.Code)).Inc()
			if reporter != nil && !stdErr.Retryable {
				reporter.Report(stdErr, map[string]interface{}{
					"taskType": taskType,
					"jobKey":   job.Key,
				})
			}
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}

		obs.RecordJobProcessed(ctx, taskType, status)
		obs.RecordJobDuration(ctx, taskType, elapsed, status)
		observability.EndSpan(span, err)

		log.Debug("job handled", map[string]interface{}{
			"jobKey":   job.Key,
			"status":   status,
			"duration": elapsed.String(),
		})
	}
}

// CompleteJob completes job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return errors.NewParseError(err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return errors.NewExternalServiceError("zeebe", err)
	}
	return nil
}
