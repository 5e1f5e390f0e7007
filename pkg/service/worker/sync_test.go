package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/service/worker"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
)

// mockSyncer returns queued results in order, then empty successful runs
type mockSyncer struct {
	mu      sync.Mutex
	results []*model.SyncResult
	errs    []error
	calls   int
}

func (m *mockSyncer) Run(ctx context.Context, req model.SyncRequest) (*model.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	m.calls++

	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if i < len(m.results) {
		return m.results[i], err
	}
	return &model.SyncResult{Success: err == nil}, err
}

func (m *mockSyncer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestDrain(t *testing.T) {
	ctx := context.Background()

	t.Run("chains runs while more history is left", func(t *testing.T) {
		syncer := &mockSyncer{results: []*model.SyncResult{
			{Success: true, ImportedCount: 2, ScannedCount: 5, HasMore: true},
			{Success: true, ImportedCount: 1, ScannedCount: 3, SkippedCount: 1, HasMore: true},
			{Success: true, ScannedCount: 1, Errors: []string{"a.jpg: download: boom"}},
		}}

		total, err := worker.Drain(ctx, syncer, model.SyncRequest{}, 10)
		gt.NoError(t, err).Required()
		gt.Value(t, syncer.callCount()).Equal(3)
		gt.Value(t, total.ImportedCount).Equal(3)
		gt.Value(t, total.ScannedCount).Equal(9)
		gt.Value(t, total.SkippedCount).Equal(1)
		gt.Array(t, total.Errors).Length(1)
		gt.Bool(t, total.HasMore).False()
		gt.Bool(t, total.Success).True()
	})

	t.Run("stops at round limit", func(t *testing.T) {
		syncer := &mockSyncer{results: []*model.SyncResult{
			{Success: true, HasMore: true},
			{Success: true, HasMore: true},
			{Success: true, HasMore: true},
		}}

		total, err := worker.Drain(ctx, syncer, model.SyncRequest{}, 2)
		gt.NoError(t, err).Required()
		gt.Value(t, syncer.callCount()).Equal(2)
		gt.Bool(t, total.HasMore).True()
	})

	t.Run("returns the first failure", func(t *testing.T) {
		syncer := &mockSyncer{
			results: []*model.SyncResult{{Success: true, HasMore: true}, {Error: "locked"}},
			errs:    []error{nil, usecase.ErrSyncInProgress},
		}

		total, err := worker.Drain(ctx, syncer, model.SyncRequest{}, 5)
		gt.Bool(t, errors.Is(err, usecase.ErrSyncInProgress)).True()
		gt.Value(t, total.Error).Equal("locked")
		gt.Value(t, syncer.callCount()).Equal(2)
	})
}

func TestSyncWorker(t *testing.T) {
	syncer := &mockSyncer{errs: []error{errors.New("slack down")}}
	w := worker.NewSyncWorker(syncer, 20*time.Millisecond, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gt.NoError(t, w.Start(ctx)).Required()

	deadline := time.Now().Add(2 * time.Second)
	for syncer.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	gt.Bool(t, syncer.callCount() >= 2).True()
	gt.Value(t, w.Start(ctx)).NotNil()
}

func TestSyncWorkerRejectsZeroInterval(t *testing.T) {
	w := worker.NewSyncWorker(&mockSyncer{}, 0, 1)
	gt.Value(t, w.Start(context.Background())).NotNil()
}

func TestSyncWorkerStopWithoutStart(t *testing.T) {
	stopWithin := func(t *testing.T, w *worker.SyncWorker) {
		t.Helper()
		stopped := make(chan struct{})
		go func() {
			w.Stop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("Stop blocked")
		}
	}

	t.Run("never started", func(t *testing.T) {
		stopWithin(t, worker.NewSyncWorker(&mockSyncer{}, time.Minute, 1))
	})

	t.Run("start failed", func(t *testing.T) {
		w := worker.NewSyncWorker(&mockSyncer{}, 0, 1)
		gt.Value(t, w.Start(context.Background())).NotNil()
		stopWithin(t, w)
	})
}
