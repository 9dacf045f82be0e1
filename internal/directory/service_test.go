package directory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lead_intake_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	workers []Worker
	calls   atomic.Int32
	delay   time.Duration
	err     error
}

func (f *fakeStore) GetWorker(_ context.Context, id uuid.UUID) (Worker, error) {
	for _, w := range f.workers {
		if w.ID == id {
			return w, nil
		}
	}
	return Worker{}, ErrNotFound
}

func (f *fakeStore) ListActiveSalesWorkers(ctx context.Context) ([]Worker, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.workers, nil
}

func (f *fakeStore) GetCampaign(context.Context, uuid.UUID) (Campaign, error) {
	return Campaign{}, ErrNotFound
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func salesWorker(name string) Worker {
	return Worker{ID: uuid.New(), Name: name, Email: name + "@example.com", Role: RoleSales, Status: WorkerActive}
}

func TestListActiveSalesWorkersServesFromCache(t *testing.T) {
	client, mr := newRedis(t)
	store := &fakeStore{workers: []Worker{salesWorker("ana"), salesWorker("ben")}}
	svc := NewService(store, client, 30*time.Second, logger.Discard())
	ctx := context.Background()

	first, err := svc.ListActiveSalesWorkers(ctx)
	require.NoError(t, err)
	second, err := svc.ListActiveSalesWorkers(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), store.calls.Load())
	assert.True(t, mr.Exists(activeSalesWorkersKey))

	mr.FastForward(31 * time.Second)
	_, err = svc.ListActiveSalesWorkers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), store.calls.Load(), "expired entry must be refreshed")
}

func TestListActiveSalesWorkersInvalidate(t *testing.T) {
	client, _ := newRedis(t)
	store := &fakeStore{workers: []Worker{salesWorker("ana")}}
	svc := NewService(store, client, time.Minute, logger.Discard())
	ctx := context.Background()

	_, err := svc.ListActiveSalesWorkers(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.InvalidateWorkers(ctx))
	_, err = svc.ListActiveSalesWorkers(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(2), store.calls.Load())
}

func TestListActiveSalesWorkersCollapsesConcurrentMisses(t *testing.T) {
	store := &fakeStore{workers: []Worker{salesWorker("ana")}, delay: 50 * time.Millisecond}
	svc := NewService(store, nil, 0, logger.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			workers, err := svc.ListActiveSalesWorkers(context.Background())
			assert.NoError(t, err)
			assert.Len(t, workers, 1)
		}()
	}
	wg.Wait()

	assert.Less(t, store.calls.Load(), int32(8))
}

func TestListActiveSalesWorkersSharedQueryOutlivesCancelledCaller(t *testing.T) {
	store := &fakeStore{workers: []Worker{salesWorker("ana")}, delay: 100 * time.Millisecond}
	svc := NewService(store, nil, 0, logger.Discard())

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		_, err := svc.ListActiveSalesWorkers(leaderCtx)
		leaderDone <- err
	}()
	time.Sleep(20 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			workers, err := svc.ListActiveSalesWorkers(context.Background())
			assert.NoError(t, err)
			assert.Len(t, workers, 1)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	cancel()

	wg.Wait()
	assert.NoError(t, <-leaderDone)
	assert.Equal(t, int32(1), store.calls.Load())
}

func TestListActiveSalesWorkersFallsBackWhenRedisDown(t *testing.T) {
	client, mr := newRedis(t)
	store := &fakeStore{workers: []Worker{salesWorker("ana")}}
	svc := NewService(store, client, time.Minute, logger.Discard())
	mr.Close()

	workers, err := svc.ListActiveSalesWorkers(context.Background())
	require.NoError(t, err)
	assert.Len(t, workers, 1)
}

func TestListActiveSalesWorkersPropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(&fakeStore{err: boom}, nil, 0, logger.Discard())

	_, err := svc.ListActiveSalesWorkers(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestEligibility(t *testing.T) {
	assert.True(t, Worker{Role: RoleSales, Status: WorkerActive}.IsEligibleAssignee())
	assert.False(t, Worker{Role: RoleMarketing, Status: WorkerActive}.IsEligibleAssignee())
	assert.False(t, Worker{Role: RoleSales, Status: WorkerInactive}.IsEligibleAssignee())
	assert.True(t, Campaign{Status: CampaignActive}.IsActive())
	assert.False(t, Campaign{Status: CampaignDraft}.IsActive())
}
