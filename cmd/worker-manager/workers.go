package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Barlow1/hoots-sub000/internal/common/camunda"
	"github.com/Barlow1/hoots-sub000/internal/common/config"
	"github.com/Barlow1/hoots-sub000/internal/common/database"
	"github.com/Barlow1/hoots-sub000/internal/common/logger"
	"github.com/Barlow1/hoots-sub000/internal/common/observability"

	vs "github.com/Barlow1/hoots-sub000/internal/workers/billing/validate-subscription"
	sn "github.com/Barlow1/hoots-sub000/internal/workers/communication/send-notification"
	sm "github.com/Barlow1/hoots-sub000/internal/workers/data-access/search-mentors"
	cgp "github.com/Barlow1/hoots-sub000/internal/workers/goals/calculate-goal-progress"
	smt "github.com/Barlow1/hoots-sub000/internal/workers/meetings/schedule-meeting"
	cma "github.com/Barlow1/hoots-sub000/internal/workers/mentorship/create-mentorship-application"
	rm "github.com/Barlow1/hoots-sub000/internal/workers/mentorship/recommend-mentors"

	"github.com/redis/go-redis/v9"
)

type dependencies struct {
	cfg      *config.Config
	zeebe    *camunda.Client
	db       *sql.DB
	redis    *redis.Client
	es       *database.ElasticsearchClient
	obs      *observability.Observability
	reporter camunda.Reporter
	log      logger.Logger
}

// registerWorkers builds every enabled handler and opens a job worker for it.
func registerWorkers(ctx context.Context, d *dependencies) ([]*camunda.Worker, error) {
	handlers := map[string]camunda.JobHandler{
		rm.TaskType:  rm.NewHandler(rm.LoadConfig(d.cfg), d.db, d.redis, d.log),
		cgp.TaskType: cgp.NewHandler(cgp.LoadConfig(d.cfg), d.db, d.log),
		cma.TaskType: cma.NewHandler(cma.LoadConfig(d.cfg), d.db, d.log),
		vs.TaskType:  vs.NewHandler(vs.LoadConfig(d.cfg), d.db, d.redis, d.log),
	}

	if config.IsWorkerEnabled(d.cfg, sn.TaskType) {
		email, sms, err := sn.NewSenders(ctx, d.cfg)
		if err != nil {
			return nil, fmt.Errorf("notification senders: %w", err)
		}
		handlers[sn.TaskType] = sn.NewHandler(sn.LoadConfig(d.cfg), d.db, email, sms, d.log)
	}

	if d.cfg.Meetings.BaseURL != "" {
		handlers[smt.TaskType] = smt.NewHandler(smt.LoadConfig(d.cfg), d.db, smt.NewRoomProvider(d.cfg.Meetings), d.log)
	} else {
		d.log.Warn("meetings.base_url not set, schedule-meeting disabled", nil)
	}

	if d.es != nil {
		handlers[sm.TaskType] = sm.NewHandler(sm.LoadConfig(d.cfg), d.es.Client, d.log)
	} else {
		d.log.Warn("elasticsearch not configured, search-mentors disabled", nil)
	}

	var workers []*camunda.Worker
	for taskType, handler := range handlers {
		if !config.IsWorkerEnabled(d.cfg, taskType) {
			d.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			continue
		}
		wcfg := config.GetWorkerConfig(d.cfg, taskType)
		workers = append(workers, camunda.NewWorker(d.zeebe, camunda.WorkerOptions{
			TaskType:      taskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, handler, d.obs, d.reporter, d.log))
	}
	return workers, nil
}
