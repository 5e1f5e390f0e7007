package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
)

// SyncStateRepository holds the cross-run state of the sync engine
type SyncStateRepository interface {
	// GetCheckpoint returns the checkpoint of the channel or ErrNotFound
	GetCheckpoint(ctx context.Context, channelID string) (*model.SyncCheckpoint, error)
	PutCheckpoint(ctx context.Context, cp *model.SyncCheckpoint) error
	// DeleteCheckpoint removes the checkpoint. Missing checkpoints are not an error.
	DeleteCheckpoint(ctx context.Context, channelID string) error

	// AcquireLock takes the run lease for holder until now+ttl. It returns ErrLockHeld when
	// another holder owns an unexpired lease.
	AcquireLock(ctx context.Context, holder string, ttl time.Duration) (*model.SyncLock, error)
	// ReleaseLock releases the lease if holder still owns it
	ReleaseLock(ctx context.Context, holder string) error
}
