package searchmentors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/Barlow1/hoots-sub000/internal/common/camunda"
	"github.com/Barlow1/hoots-sub000/internal/common/errors"
	"github.com/Barlow1/hoots-sub000/internal/common/logger"
	"github.com/Barlow1/hoots-sub000/internal/engine"
	"github.com/Barlow1/hoots-sub000/internal/workers/data-access/search-mentors/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
)

const TaskType = "search-mentors"

type Handler struct {
	config *Config
	client *elasticsearch.Client
	errs   *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		client: client,
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
	index := input.IndexName
	if index == "" {
		index = h.config.DefaultIndex
	}

	req, err := queries.SearchRequest(queries.MentorQuery{
		Index:   index,
		Text:    input.Query,
		Filters: input.Filters,
		From:    input.Pagination.From,
		Size:    input.Pagination.Size,
	})
	if err != nil {
		return nil, errors.NewIndexNotFoundError(index)
	}

	res, err := req.Do(ctx, h.client)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewSearchTimeoutError(index)
		}
		return nil, errors.NewSearchQueryFailedError(index, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, errors.NewIndexNotFoundError(index)
	}
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(index, fmt.Errorf("search failed: %s", res.String()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewSearchQueryFailedError(index, fmt.Errorf("decode response: %w", err))
	}

	mentors := make([]engine.Mentor, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		m := hit.Source
		if m.ID == "" {
			m.ID = hit.ID
		}
		mentors = append(mentors, m)
	}

	output := &Output{
		Mentors:   mentors,
		TotalHits: r.Hits.Total.Value,
		Took:      r.Took,
	}
	if r.Hits.MaxScore != nil {
		output.MaxScore = *r.Hits.MaxScore
	}

	h.logger.Info("mentor search completed", map[string]interface{}{
		"index":     index,
		"totalHits": output.TotalHits,
		"returned":  len(mentors),
	})
	return output, nil
}
