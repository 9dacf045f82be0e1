package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"lead_intake_backend/internal/directory"
	"lead_intake_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	StrategyRandom      = "random"
	StrategyRoundRobin  = "round_robin"
	StrategyLeastLoaded = "least_loaded"

	roundRobinKey = "intake:assignment:round_robin"
)

// Strategy picks one worker from a non-empty eligible list sorted by id.
type Strategy interface {
	Name() string
	Pick(ctx context.Context, eligible []directory.Worker) (directory.Worker, error)
}

// WorkerLister lists the current eligible assignees.
type WorkerLister interface {
	ListActiveSalesWorkers(ctx context.Context) ([]directory.Worker, error)
}

// LeadAssigner writes the assignee of an unassigned lead.
type LeadAssigner interface {
	AssignIfUnassigned(ctx context.Context, leadID, workerID uuid.UUID) (bool, error)
}

// LoadCounter reports open lead counts per worker.
type LoadCounter interface {
	CountOpenLeadsByWorker(ctx context.Context, workerIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// RandomStrategy picks uniformly. Tests inject a seeded source.
type RandomStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomStrategy uses rng when given, the global generator otherwise.
func NewRandomStrategy(rng *rand.Rand) *RandomStrategy {
	return &RandomStrategy{rng: rng}
}

func (s *RandomStrategy) Name() string { return StrategyRandom }

func (s *RandomStrategy) Pick(_ context.Context, eligible []directory.Worker) (directory.Worker, error) {
	if s.rng == nil {
		return eligible[rand.IntN(len(eligible))], nil
	}
	s.mu.Lock()
	i := s.rng.IntN(len(eligible))
	s.mu.Unlock()
	return eligible[i], nil
}

// Counter yields a monotonically increasing sequence starting at 1.
type Counter interface {
	Next(ctx context.Context) (int64, error)
}

// RedisCounter shares the sequence across instances with INCR.
type RedisCounter struct {
	client *redis.Client
	key    string
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, key: roundRobinKey}
}

func (c *RedisCounter) Next(ctx context.Context) (int64, error) {
	return c.client.Incr(ctx, c.key).Result()
}

// LocalCounter is an in-process sequence.
type LocalCounter struct {
	n atomic.Int64
}

func (c *LocalCounter) Next(context.Context) (int64, error) {
	return c.n.Add(1), nil
}

// RoundRobinStrategy cycles through the eligible list. When the shared
// counter is unavailable it continues on a local one.
type RoundRobinStrategy struct {
	shared   Counter
	fallback LocalCounter
	log      *logger.Logger
}

// NewRoundRobinStrategy uses shared when non-nil.
func NewRoundRobinStrategy(shared Counter, log *logger.Logger) *RoundRobinStrategy {
	return &RoundRobinStrategy{shared: shared, log: log}
}

func (s *RoundRobinStrategy) Name() string { return StrategyRoundRobin }

func (s *RoundRobinStrategy) Pick(ctx context.Context, eligible []directory.Worker) (directory.Worker, error) {
	var n int64
	var err error
	if s.shared != nil {
		n, err = s.shared.Next(ctx)
		if err != nil {
			s.log.WithContext(ctx).Warn("round robin counter unavailable, using local counter",
				slog.String("error", err.Error()))
		}
	}
	if s.shared == nil || err != nil {
		n, _ = s.fallback.Next(ctx)
	}
	idx := (n - 1) % int64(len(eligible))
	if idx < 0 {
		idx += int64(len(eligible))
	}
	return eligible[idx], nil
}

// LeastLoadedStrategy picks the worker with the fewest open leads. Ties go
// to the lowest id.
type LeastLoadedStrategy struct {
	loads LoadCounter
}

func NewLeastLoadedStrategy(loads LoadCounter) *LeastLoadedStrategy {
	return &LeastLoadedStrategy{loads: loads}
}

func (s *LeastLoadedStrategy) Name() string { return StrategyLeastLoaded }

func (s *LeastLoadedStrategy) Pick(ctx context.Context, eligible []directory.Worker) (directory.Worker, error) {
	ids := make([]uuid.UUID, len(eligible))
	for i, w := range eligible {
		ids[i] = w.ID
	}
	counts, err := s.loads.CountOpenLeadsByWorker(ctx, ids)
	if err != nil {
		return directory.Worker{}, fmt.Errorf("load counts: %w", err)
	}

	best := eligible[0]
	for _, w := range eligible[1:] {
		if counts[w.ID] < counts[best.ID] {
			best = w
		}
	}
	return best, nil
}

// Assigner routes committed leads that have no explicit assignee.
type Assigner struct {
	workers  WorkerLister
	leads    LeadAssigner
	strategy Strategy
}

func NewAssigner(workers WorkerLister, leads LeadAssigner, strategy Strategy) *Assigner {
	return &Assigner{workers: workers, leads: leads, strategy: strategy}
}

// Strategy returns the configured strategy name.
func (a *Assigner) Strategy() string { return a.strategy.Name() }

var (
	// ErrNoEligibleWorker means no active sales worker exists.
	ErrNoEligibleWorker = errors.New("no eligible worker")
	// ErrAlreadyAssigned means another writer set assigned_to first.
	ErrAlreadyAssigned = errors.New("lead already assigned")
)

// Assign chooses an eligible worker and writes it once. The lead is left
// untouched when ErrNoEligibleWorker or ErrAlreadyAssigned is returned.
func (a *Assigner) Assign(ctx context.Context, leadID uuid.UUID) (*directory.Worker, error) {
	listed, err := a.workers.ListActiveSalesWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list eligible workers: %w", err)
	}

	eligible := make([]directory.Worker, 0, len(listed))
	for _, w := range listed {
		if w.IsEligibleAssignee() {
			eligible = append(eligible, w)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleWorker
	}
	slices.SortFunc(eligible, func(a, b directory.Worker) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})

	chosen, err := a.strategy.Pick(ctx, eligible)
	if err != nil {
		return nil, err
	}

	ok, err := a.leads.AssignIfUnassigned(ctx, leadID, chosen.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyAssigned
	}
	return &chosen, nil
}

// NewStrategy builds the named strategy. Unknown names fall back to random.
func NewStrategy(name string, redisClient *redis.Client, loads LoadCounter, log *logger.Logger) Strategy {
	switch name {
	case StrategyRoundRobin:
		var shared Counter
		if redisClient != nil {
			shared = NewRedisCounter(redisClient)
		}
		return NewRoundRobinStrategy(shared, log)
	case StrategyLeastLoaded:
		return NewLeastLoadedStrategy(loads)
	default:
		return NewRandomStrategy(nil)
	}
}
