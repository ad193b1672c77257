package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketing_dashboard_backend/internal/analytics"
	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// ClientLister returns every client name present in the data.
type ClientLister interface {
	AllClients(ctx context.Context) ([]string, error)
}

// Auditor runs one client's data-quality audit.
type Auditor interface {
	Audit(ctx context.Context, client string) (analytics.QualityReport, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	clients  ClientLister
	enqueuer AuditEnqueuer
	auditor  Auditor
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, clients ClientLister, enqueuer AuditEnqueuer, auditor Auditor, log *logger.Logger) (*Worker, error) {
	opt, err := clientOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(clients, enqueuer, auditor, log)
	w.server = server
	return w, nil
}

func newWorker(clients ClientLister, enqueuer AuditEnqueuer, auditor Auditor, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:      mux,
		clients:  clients,
		enqueuer: enqueuer,
		auditor:  auditor,
		log:      log,
	}

	mux.HandleFunc(TaskQualitySweep, w.handleQualitySweep)
	mux.HandleFunc(TaskQualityAudit, w.handleQualityAudit)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleQualitySweep fans out one audit task per client so a slow or failing
// client never holds up the others.
func (w *Worker) handleQualitySweep(ctx context.Context, _ *asynq.Task) error {
	clients, err := w.clients.AllClients(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, client := range clients {
		if err := w.enqueuer.EnqueueQualityAudit(ctx, QualityAuditPayload{ClientName: client}); err != nil {
			errs = append(errs, fmt.Errorf("enqueue audit %s: %w", client, err))
		}
	}
	w.log.Info("quality sweep queued audits", "clients", len(clients), "failed", len(errs))
	return errors.Join(errs...)
}

func (w *Worker) handleQualityAudit(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseQualityAuditPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if strings.TrimSpace(payload.ClientName) == "" {
		return fmt.Errorf("audit task without client: %w", asynq.SkipRetry)
	}

	_, err = w.auditor.Audit(ctx, payload.ClientName)
	return err
}
