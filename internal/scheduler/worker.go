package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"lead_intake_backend/internal/audit"
	"lead_intake_backend/platform/config"
	"lead_intake_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes queued audit records and persists them.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	writer audit.Writer
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, writer audit.Writer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
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

	w := newWorker(writer, log)
	w.server = server
	return w, nil
}

func newWorker(writer audit.Writer, log *logger.Logger) *Worker {
	w := &Worker{
		mux:    asynq.NewServeMux(),
		writer: writer,
		log:    log,
	}
	w.mux.HandleFunc(TaskAuditRecord, w.handleAuditRecord)
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

// handleAuditRecord inserts the record. Inserts are idempotent on the record
// id, so redelivery is harmless.
func (w *Worker) handleAuditRecord(ctx context.Context, task *asynq.Task) error {
	rec, err := ParseAuditRecordPayload(task)
	if err != nil {
		w.log.Error("discarding malformed audit task", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.writer.Insert(ctx, rec); err != nil {
		w.log.DatabaseError("insert audit record", err)
		return err
	}
	return nil
}
