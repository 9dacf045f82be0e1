package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lead_intake_backend/internal/audit"
	"lead_intake_backend/platform/cache"
	"lead_intake_backend/platform/config"
	"lead_intake_backend/platform/logger"
	"lead_intake_backend/platform/metrics"

	"github.com/hibiken/asynq"
)

const (
	enqueueTimeout = 2 * time.Second
	auditMaxRetry  = 10
)

// Client enqueues audit records for the scheduler worker. It implements
// audit.Sink.
type Client struct {
	client   *asynq.Client
	queue    string
	fallback audit.Sink
	log      *logger.Logger
}

// NewClient connects to the queue. fallback, when non-nil, receives records
// that could not be enqueued.
func NewClient(cfg config.SchedulerConfig, fallback audit.Sink, log *logger.Logger) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client:   asynq.NewClient(opt),
		queue:    queueName(cfg),
		fallback: fallback,
		log:      log,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Record enqueues rec. The task id is the record id so a retried enqueue
// cannot produce a second row.
func (c *Client) Record(ctx context.Context, rec audit.Record) {
	task, err := NewAuditRecordTask(rec)
	if err == nil {
		enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
		_, err = c.client.EnqueueContext(enqueueCtx, task,
			asynq.Queue(c.queue),
			asynq.TaskID(rec.ID.String()),
			asynq.MaxRetry(auditMaxRetry),
		)
		cancel()
	}
	if err == nil {
		return
	}

	if c.fallback != nil {
		c.log.WithContext(ctx).Warn("audit enqueue failed, writing directly",
			slog.String("audit_id", rec.ID.String()),
			slog.String("error", err.Error()),
		)
		c.fallback.Record(ctx, rec)
		return
	}

	metrics.RecordAuditDropped()
	c.log.WithContext(ctx).Error("audit record dropped",
		slog.String("audit_id", rec.ID.String()),
		slog.String("action", string(rec.Action)),
		slog.String("error", err.Error()),
	)
}

var _ audit.Sink = (*Client)(nil)

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := cache.Options(redisURL, tlsInsecure)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return "default"
}
