package scheduler

import (
	"context"

	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic registers the quality sweep on its cron spec.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	opt, err := clientOpt(cfg)
	if err != nil {
		return nil, err
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error("periodic task enqueue failed", "error", err)
				return
			}
			log.Info("periodic task enqueued", "task", info.Type, "id", info.ID)
		},
	})

	spec := cfg.GetQualityAuditCron()
	if _, err := s.Register(spec, NewQualitySweepTask(), asynq.Queue(queueName(cfg))); err != nil {
		return nil, err
	}
	log.Info("quality sweep scheduled", "cron", spec)

	return &Periodic{scheduler: s, log: log}, nil
}

func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}
	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler failed to start", "error", err)
		return
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
}
