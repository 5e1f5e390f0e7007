package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
)

func runSyncStateRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Run("checkpoint lifecycle", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		channel := uniqueChannel()

		_, err := repo.SyncState().GetCheckpoint(ctx, channel)
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		cp := &model.SyncCheckpoint{
			ChannelID: channel,
			Oldest:    "100.000000",
			Latest:    "",
			Cursor:    "bmV4dF90czoxMjM=",
			UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
		}
		gt.NoError(t, repo.SyncState().PutCheckpoint(ctx, cp)).Required()

		cp.Cursor = "second"
		gt.NoError(t, repo.SyncState().PutCheckpoint(ctx, cp)).Required()

		got, err := repo.SyncState().GetCheckpoint(ctx, channel)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Cursor).Equal("second")
		gt.Value(t, got.Oldest).Equal("100.000000")
		gt.Bool(t, got.SameBounds("100.000000", "")).True()

		gt.NoError(t, repo.SyncState().DeleteCheckpoint(ctx, channel)).Required()
		gt.NoError(t, repo.SyncState().DeleteCheckpoint(ctx, channel)).Required()
		_, err = repo.SyncState().GetCheckpoint(ctx, channel)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("lock excludes other holders until expiry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		lock, err := repo.SyncState().AcquireLock(ctx, "run-a", time.Minute)
		gt.NoError(t, err).Required()
		gt.Value(t, lock.Holder).Equal("run-a")

		_, err = repo.SyncState().AcquireLock(ctx, "run-b", time.Minute)
		gt.Error(t, err).Is(interfaces.ErrLockHeld)

		// re-entrant for the same holder
		_, err = repo.SyncState().AcquireLock(ctx, "run-a", time.Minute)
		gt.NoError(t, err).Required()

		// releasing someone else's lease is a no-op
		gt.NoError(t, repo.SyncState().ReleaseLock(ctx, "run-b")).Required()
		_, err = repo.SyncState().AcquireLock(ctx, "run-b", time.Minute)
		gt.Error(t, err).Is(interfaces.ErrLockHeld)

		gt.NoError(t, repo.SyncState().ReleaseLock(ctx, "run-a")).Required()
		_, err = repo.SyncState().AcquireLock(ctx, "run-b", time.Minute)
		gt.NoError(t, err).Required()
	})

	t.Run("expired lease can be taken over", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.SyncState().AcquireLock(ctx, "run-a", -time.Second)
		gt.NoError(t, err).Required()

		lock, err := repo.SyncState().AcquireLock(ctx, "run-b", time.Minute)
		gt.NoError(t, err).Required()
		gt.Value(t, lock.Holder).Equal("run-b")
	})
}

func TestSyncStateRepository(t *testing.T) {
	runAllBackends(t, runSyncStateRepositoryTest)
}
