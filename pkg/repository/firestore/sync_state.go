package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
)

// syncLockDocID is the single lease document shared by all sync runs
const syncLockDocID = "sync"

type checkpointDocument struct {
	ChannelID string    `firestore:"channel_id"`
	Oldest    string    `firestore:"oldest"`
	Latest    string    `firestore:"latest"`
	Cursor    string    `firestore:"cursor"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type lockDocument struct {
	Holder    string    `firestore:"holder"`
	ExpiresAt time.Time `firestore:"expires_at"`
}

type syncStateRepository struct {
	client *firestore.Client
	names  *collectionNames
}

var _ interfaces.SyncStateRepository = &syncStateRepository{}

func (r *syncStateRepository) checkpoints() *firestore.CollectionRef {
	return r.client.Collection(r.names.name(CheckpointCollection))
}

func (r *syncStateRepository) lockRef() *firestore.DocumentRef {
	return r.client.Collection(r.names.name(LocksCollection)).Doc(syncLockDocID)
}

func (r *syncStateRepository) GetCheckpoint(ctx context.Context, channelID string) (*model.SyncCheckpoint, error) {
	snap, err := r.checkpoints().Doc(channelID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "checkpoint not found", goerr.V("channel_id", channelID))
		}
		return nil, goerr.Wrap(err, "failed to get checkpoint", goerr.V("channel_id", channelID))
	}

	var doc checkpointDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal checkpoint", goerr.V("channel_id", channelID))
	}
	return &model.SyncCheckpoint{
		ChannelID: doc.ChannelID,
		Oldest:    doc.Oldest,
		Latest:    doc.Latest,
		Cursor:    doc.Cursor,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (r *syncStateRepository) PutCheckpoint(ctx context.Context, cp *model.SyncCheckpoint) error {
	doc := &checkpointDocument{
		ChannelID: cp.ChannelID,
		Oldest:    cp.Oldest,
		Latest:    cp.Latest,
		Cursor:    cp.Cursor,
		UpdatedAt: cp.UpdatedAt,
	}
	if _, err := r.checkpoints().Doc(cp.ChannelID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put checkpoint", goerr.V("channel_id", cp.ChannelID))
	}
	return nil
}

func (r *syncStateRepository) DeleteCheckpoint(ctx context.Context, channelID string) error {
	if _, err := r.checkpoints().Doc(channelID).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete checkpoint", goerr.V("channel_id", channelID))
	}
	return nil
}

func (r *syncStateRepository) AcquireLock(ctx context.Context, holder string, ttl time.Duration) (*model.SyncLock, error) {
	ref := r.lockRef()
	var lock *model.SyncLock

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		snap, err := tx.Get(ref)
		if err != nil && !isNotFound(err) {
			return goerr.Wrap(err, "failed to get sync lock")
		}

		if err == nil {
			var current lockDocument
			if err := snap.DataTo(&current); err != nil {
				return goerr.Wrap(err, "failed to unmarshal sync lock")
			}
			held := &model.SyncLock{Holder: current.Holder, ExpiresAt: current.ExpiresAt}
			if held.Holder != holder && !held.IsExpired(now) {
				return goerr.Wrap(interfaces.ErrLockHeld, "sync lock is held",
					goerr.V("holder", held.Holder), goerr.V("expires_at", held.ExpiresAt))
			}
		}

		lock = &model.SyncLock{Holder: holder, ExpiresAt: now.Add(ttl)}
		return tx.Set(ref, &lockDocument{Holder: lock.Holder, ExpiresAt: lock.ExpiresAt})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to acquire sync lock", goerr.V("holder", holder))
	}
	return lock, nil
}

func (r *syncStateRepository) ReleaseLock(ctx context.Context, holder string) error {
	ref := r.lockRef()
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return goerr.Wrap(err, "failed to get sync lock")
		}

		var current lockDocument
		if err := snap.DataTo(&current); err != nil {
			return goerr.Wrap(err, "failed to unmarshal sync lock")
		}
		if current.Holder != holder {
			return nil
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to release sync lock", goerr.V("holder", holder))
	}
	return nil
}
