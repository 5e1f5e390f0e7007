package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/secmon-lab/shelfcheck/pkg/utils/errutil"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
)

// DefaultMaxRounds bounds the runs chained by one Drain
const DefaultMaxRounds = 20

// Syncer runs one bounded catch-up scan
type Syncer interface {
	Run(ctx context.Context, req model.SyncRequest) (*model.SyncResult, error)
}

// Drain repeats runs while the previous one reports HasMore, up to maxRounds runs.
// The merged result of all runs is returned.
func Drain(ctx context.Context, syncer Syncer, req model.SyncRequest, maxRounds int) (*model.SyncResult, error) {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	total := &model.SyncResult{}
	for round := 1; round <= maxRounds; round++ {
		result, err := syncer.Run(ctx, req)
		if result != nil {
			total.Merge(result)
		}
		if err != nil {
			return total, goerr.Wrap(err, "sync run failed", goerr.V("round", round))
		}
		if result == nil || !result.HasMore {
			return total, nil
		}

		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}
	}

	logging.From(ctx).Warn("sync stopped at round limit with more history left", "rounds", maxRounds)
	return total, nil
}

// SyncWorker runs the catch-up sync in the background
//
// Architecture assumptions:
// - Several instances may run; the repository lease lock keeps runs exclusive
type SyncWorker struct {
	syncer    Syncer
	interval  time.Duration
	maxRounds int
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   atomic.Bool
	stopOnce  sync.Once
}

// NewSyncWorker creates a worker that syncs every interval
func NewSyncWorker(syncer Syncer, interval time.Duration, maxRounds int) *SyncWorker {
	return &SyncWorker{
		syncer:    syncer,
		interval:  interval,
		maxRounds: maxRounds,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background loop without blocking server startup
func (w *SyncWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("sync interval must be positive", goerr.V("interval", w.interval))
	}

	if !w.started.CompareAndSwap(false, true) {
		return goerr.New("sync worker already started")
	}

	logging.Default().Info("sync worker starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion. It returns at once when
// Start never succeeded.
func (w *SyncWorker) Stop() {
	if !w.started.Load() {
		return
	}
	logging.Default().Info("sync worker stopping")
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
	logging.Default().Info("sync worker stopped")
}

func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.sync(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sync(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("sync worker context cancelled")
			return
		}
	}
}

// sync performs one cycle. Failures are reported and retried next interval.
func (w *SyncWorker) sync(ctx context.Context) {
	startTime := time.Now()

	result, err := Drain(ctx, w.syncer, model.SyncRequest{}, w.maxRounds)
	if err != nil {
		if errors.Is(err, usecase.ErrSyncInProgress) {
			logging.From(ctx).Info("sync skipped, another run holds the lock")
			return
		}
		errutil.Handle(ctx, err, "scheduled sync failed (will retry next interval)")
		return
	}

	logging.From(ctx).Info("scheduled sync completed",
		"imported", result.ImportedCount,
		"scanned", result.ScannedCount,
		"skipped", result.SkippedCount,
		"errors", len(result.Errors),
		"duration", time.Since(startTime).String())
}
