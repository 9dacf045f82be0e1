package directory

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"lead_intake_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	activeSalesWorkersKey = "directory:workers:active_sales"
	// refillTimeout bounds the shared store query behind a cache miss.
	refillTimeout = 5 * time.Second
)

// Store is the durable directory source.
type Store interface {
	GetWorker(ctx context.Context, id uuid.UUID) (Worker, error)
	ListActiveSalesWorkers(ctx context.Context) ([]Worker, error)
	GetCampaign(ctx context.Context, id uuid.UUID) (Campaign, error)
}

// Service answers directory questions. Single-entity lookups always hit the
// store; the eligible worker list may be served from Redis for up to ttl.
type Service struct {
	store Store
	cache *redis.Client
	ttl   time.Duration
	group singleflight.Group
	log   *logger.Logger
}

// NewService builds a directory service. cache may be nil.
func NewService(store Store, cache *redis.Client, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{store: store, cache: cache, ttl: ttl, log: log}
}

func (s *Service) GetWorker(ctx context.Context, id uuid.UUID) (Worker, error) {
	return s.store.GetWorker(ctx, id)
}

func (s *Service) GetCampaign(ctx context.Context, id uuid.UUID) (Campaign, error) {
	return s.store.GetCampaign(ctx, id)
}

// ListActiveSalesWorkers returns the eligible assignees. Concurrent misses
// share a single store query. Cache failures fall through to the store.
func (s *Service) ListActiveSalesWorkers(ctx context.Context) ([]Worker, error) {
	if workers, ok := s.fromCache(ctx); ok {
		return workers, nil
	}

	// The query is shared by every waiter, so it must not die with the
	// request that happened to start it.
	v, err, _ := s.group.Do(activeSalesWorkersKey, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refillTimeout)
		defer cancel()

		workers, err := s.store.ListActiveSalesWorkers(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.toCache(fetchCtx, workers)
		return workers, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Worker), nil
}

// InvalidateWorkers drops the cached worker list.
func (s *Service) InvalidateWorkers(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, activeSalesWorkersKey).Err()
}

func (s *Service) fromCache(ctx context.Context) ([]Worker, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, activeSalesWorkersKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WithContext(ctx).Warn("worker cache read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}
	var workers []Worker
	if err := json.Unmarshal(raw, &workers); err != nil {
		return nil, false
	}
	return workers, true
}

func (s *Service) toCache(ctx context.Context, workers []Worker) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(workers)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, activeSalesWorkersKey, raw, s.ttl).Err(); err != nil {
		s.log.WithContext(ctx).Warn("worker cache write failed", slog.String("error", err.Error()))
	}
}
