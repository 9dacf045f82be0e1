package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead_intake_backend/internal/adapters/storage"
	"lead_intake_backend/internal/audit"
	"lead_intake_backend/internal/directory"
	"lead_intake_backend/internal/email"
	"lead_intake_backend/internal/events"
	apphttp "lead_intake_backend/internal/http"
	"lead_intake_backend/internal/http/router"
	"lead_intake_backend/internal/intake"
	"lead_intake_backend/internal/leads"
	"lead_intake_backend/internal/leads/repository"
	"lead_intake_backend/internal/notification"
	"lead_intake_backend/internal/scheduler"
	"lead_intake_backend/internal/webhook"
	"lead_intake_backend/migrations"
	"lead_intake_backend/platform/cache"
	"lead_intake_backend/platform/config"
	"lead_intake_backend/platform/db"
	"lead_intake_backend/platform/logger"
	"lead_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	redisClient := initRedis(ctx, cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	val := validator.New()

	// ========================================================================
	// Intake pipeline
	// ========================================================================

	leadRepo := repository.New(pool)
	dir := directory.NewService(directory.NewRepository(pool), redisClient, cfg.GetWorkerCacheTTL(), log)
	if err := dir.InvalidateWorkers(ctx); err != nil {
		log.Warn("failed to clear worker cache", "error", err)
	}

	auditSink, closeAudit := initAuditSink(cfg, audit.NewRepository(pool), log)
	defer closeAudit()

	strategy := intake.NewStrategy(cfg.GetAssignmentStrategy(), redisClient, leadRepo, log)
	intakeSvc := intake.NewService(
		intake.NewResolver(cfg.GetWebhookIntegrationKeys()),
		intake.NewVerifier(cfg),
		intake.NewNormalizer(dir, cfg.GetDefaultPhoneRegion(), val),
		leadRepo,
		intake.NewAssigner(dir, leadRepo, strategy),
		auditSink,
		eventBus,
		log,
	)
	log.Info("intake pipeline ready", "strategy", strategy.Name(), "auditMode", cfg.GetAuditMode())

	// Notification module subscribes to domain events (not HTTP-facing)
	notification.New(email.NewSender(cfg), log).RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	payloadArchive := initPayloadArchive(ctx, cfg, log)
	var archiver webhook.PayloadArchiver
	if payloadArchive != nil {
		archiver = payloadArchive
	}

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewHealthChecker(pool),
		Modules: []apphttp.Module{
			webhook.NewModule(intakeSvc, cfg, archiver, log),
			leads.NewModule(intakeSvc, leadRepo, val),
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
		if payloadArchive != nil {
			payloadArchive.Wait()
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initRedis connects when REDIS_URL is set. Without Redis the worker list is
// not cached and round robin counts per instance.
func initRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; worker cache and shared round robin disabled")
		return nil
	}

	client, err := cache.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis; continuing without it", "error", err)
		return nil
	}
	return client
}

// initAuditSink writes audit records in-process or through the scheduler
// queue. The returned func drains pending records.
func initAuditSink(cfg *config.Config, writer audit.Writer, log *logger.Logger) (audit.Sink, func()) {
	direct := audit.NewAsyncSink(writer, cfg.GetAuditBufferSize(), log)
	closeDirect := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := direct.Close(ctx); err != nil {
			log.Error("audit sink did not drain", "error", err)
		}
	}

	if cfg.GetAuditMode() != "queue" {
		return direct, closeDirect
	}

	client, err := scheduler.NewClient(cfg, direct, log)
	if err != nil {
		log.Error("failed to initialize audit queue; writing directly", "error", err)
		return direct, closeDirect
	}
	return client, func() {
		_ = client.Close()
		closeDirect()
	}
}

// initPayloadArchive returns nil when MinIO is not configured.
func initPayloadArchive(ctx context.Context, cfg *config.Config, log *logger.Logger) *webhook.StorageArchiver {
	if !cfg.IsMinIOEnabled() {
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		return nil
	}

	bucket := cfg.GetMinioBucketWebhookPayloads()
	if err := withRetry(ctx, log, "ensure webhook payload bucket", 3, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists; payload archive disabled", "error", err, "bucket", bucket)
		return nil
	}

	log.Info("webhook payload archive enabled", "bucket", bucket)
	return webhook.NewStorageArchiver(storageSvc, bucket, log)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
