package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
)

const syncLockKey = "sync"

type syncStateRepository struct {
	db *sql.DB
}

var _ interfaces.SyncStateRepository = &syncStateRepository{}

func (r *syncStateRepository) GetCheckpoint(ctx context.Context, channelID string) (*model.SyncCheckpoint, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var cp model.SyncCheckpoint
	err := r.db.QueryRowContext(ctx, `
		SELECT channel_id, oldest, latest, cursor, updated_at
		FROM sync_checkpoints WHERE channel_id = $1`, channelID).
		Scan(&cp.ChannelID, &cp.Oldest, &cp.Latest, &cp.Cursor, &cp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "checkpoint not found", goerr.V("channel_id", channelID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to select checkpoint", goerr.V("channel_id", channelID))
	}
	return &cp, nil
}

func (r *syncStateRepository) PutCheckpoint(ctx context.Context, cp *model.SyncCheckpoint) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_checkpoints (channel_id, oldest, latest, cursor, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (channel_id)
		DO UPDATE SET oldest = EXCLUDED.oldest, latest = EXCLUDED.latest,
			cursor = EXCLUDED.cursor, updated_at = EXCLUDED.updated_at`,
		cp.ChannelID, cp.Oldest, cp.Latest, cp.Cursor, cp.UpdatedAt)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert checkpoint", goerr.V("channel_id", cp.ChannelID))
	}
	return nil
}

func (r *syncStateRepository) DeleteCheckpoint(ctx context.Context, channelID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_checkpoints WHERE channel_id = $1`, channelID); err != nil {
		return goerr.Wrap(err, "failed to delete checkpoint", goerr.V("channel_id", channelID))
	}
	return nil
}

func (r *syncStateRepository) AcquireLock(ctx context.Context, holder string, ttl time.Duration) (*model.SyncLock, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now()
	lock := model.SyncLock{}
	// The conditional upsert returns no row when another holder owns an unexpired lease
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sync_locks (lock_key, holder, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (lock_key) DO UPDATE SET holder = EXCLUDED.holder, expires_at = EXCLUDED.expires_at
		WHERE sync_locks.holder = EXCLUDED.holder OR sync_locks.expires_at <= $4
		RETURNING holder, expires_at`,
		syncLockKey, holder, now.Add(ttl), now).Scan(&lock.Holder, &lock.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrLockHeld, "sync lock is held", goerr.V("holder", holder))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to acquire sync lock", goerr.V("holder", holder))
	}
	return &lock, nil
}

func (r *syncStateRepository) ReleaseLock(ctx context.Context, holder string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_locks WHERE lock_key = $1 AND holder = $2`, syncLockKey, holder); err != nil {
		return goerr.Wrap(err, "failed to release sync lock", goerr.V("holder", holder))
	}
	return nil
}
