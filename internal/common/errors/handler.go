package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Logger is the subset of logger.Logger the handler needs.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler reports failed jobs back to the engine, either as a failed
// job with retries or as a thrown BPMN error.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Resolution is the decision taken for a failed job.
type Resolution struct {
	Throw   bool
	Retries int
}

// Resolve decides between retry and throw. Retries never exceed what the
// engine still has left for the job.
func Resolve(stdErr *StandardError, jobRetries int32) Resolution {
	retries := 0
	if stdErr.Retryable {
		retries = GetRetryCount(stdErr.Code)
	}
	if retries == 0 || jobRetries <= 0 {
		return Resolution{Throw: true}
	}
	// the engine passes the remaining count, one is consumed by this failure
	remaining := int(jobRetries) - 1
	if remaining < retries {
		retries = remaining
	}
	if retries <= 0 {
		return Resolution{Throw: true}
	}
	return Resolution{Retries: retries}
}

// HandleJobError normalizes err and sends the matching command for job.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	res := Resolve(stdErr, job.Retries)

	fields := map[string]interface{}{
		"jobKey":             job.Key,
		"jobType":            job.Type,
		"processInstanceKey": job.ProcessInstanceKey,
		"errorCode":          string(stdErr.Code),
		"errorCategory":      GetErrorCategory(stdErr.Code),
		"details":            stdErr.Details,
		"retryable":          stdErr.Retryable,
	}

	if res.Throw {
		h.logger.Error("job failed, throwing BPMN error", fields)
		h.throwBPMNError(ctx, client, job, bpmnErr)
		return
	}

	fields["retries"] = res.Retries
	h.logger.Warn("job failed, will retry", fields)
	h.failJob(ctx, client, job, bpmnErr, res.Retries)
}

// Normalize turns any error into a StandardError. Context deadlines map to a
// retryable timeout.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("job", err)
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage(bpmnErr.Message)

	withVars, err := cmd.VariablesFromString(bpmnErr.variablesJSON())
	if err != nil {
		h.logger.Error("failed to attach error variables", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
		_, _ = cmd.Send(ctx)
		return
	}
	if _, err := withVars.Send(ctx); err != nil {
		h.logger.Error("failed to send fail command", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	withVars, err := cmd.VariablesFromString(bpmnErr.variablesJSON())
	if err != nil {
		h.logger.Error("failed to attach error variables", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
		_, _ = cmd.Send(ctx)
		return
	}
	if _, err := withVars.Send(ctx); err != nil {
		h.logger.Error("failed to send throw error command", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
	}
}

func (e *BPMNError) variablesJSON() string {
	data, err := json.Marshal(e.ToErrorVariables())
	if err != nil {
		return "{}"
	}
	return string(data)
}
