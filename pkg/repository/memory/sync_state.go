package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
)

type syncStateRepository struct {
	mu          sync.Mutex
	checkpoints map[string]*model.SyncCheckpoint
	lock        *model.SyncLock
}

var _ interfaces.SyncStateRepository = &syncStateRepository{}

func newSyncStateRepository() *syncStateRepository {
	return &syncStateRepository{
		checkpoints: make(map[string]*model.SyncCheckpoint),
	}
}

func (r *syncStateRepository) GetCheckpoint(ctx context.Context, channelID string) (*model.SyncCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp, ok := r.checkpoints[channelID]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "checkpoint not found", goerr.V("channel_id", channelID))
	}
	c := *cp
	return &c, nil
}

func (r *syncStateRepository) PutCheckpoint(ctx context.Context, cp *model.SyncCheckpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *cp
	r.checkpoints[cp.ChannelID] = &c
	return nil
}

func (r *syncStateRepository) DeleteCheckpoint(ctx context.Context, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.checkpoints, channelID)
	return nil
}

func (r *syncStateRepository) AcquireLock(ctx context.Context, holder string, ttl time.Duration) (*model.SyncLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if r.lock != nil && r.lock.Holder != holder && !r.lock.IsExpired(now) {
		return nil, goerr.Wrap(interfaces.ErrLockHeld, "sync lock is held",
			goerr.V("holder", r.lock.Holder), goerr.V("expires_at", r.lock.ExpiresAt))
	}

	r.lock = &model.SyncLock{Holder: holder, ExpiresAt: now.Add(ttl)}
	l := *r.lock
	return &l, nil
}

func (r *syncStateRepository) ReleaseLock(ctx context.Context, holder string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lock != nil && r.lock.Holder == holder {
		r.lock = nil
	}
	return nil
}
