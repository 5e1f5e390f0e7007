package memory

import (
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
)

// Memory is a process-local repository. It is used for tests and for single-instance
// development servers; nothing survives a restart.
type Memory struct {
	message   *messageRepository
	photo     *photoRepository
	store     *storeRepository
	brand     *brandRepository
	syncState *syncStateRepository
	sessions  *sessionStore
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		message:   newMessageRepository(),
		photo:     newPhotoRepository(),
		store:     newStoreRepository(),
		brand:     newBrandRepository(),
		syncState: newSyncStateRepository(),
		sessions:  newSessionStore(),
	}
}

func (m *Memory) Message() interfaces.MessageRepository {
	return m.message
}

func (m *Memory) Photo() interfaces.PhotoRepository {
	return m.photo
}

func (m *Memory) Store() interfaces.StoreRepository {
	return m.store
}

func (m *Memory) Brand() interfaces.BrandRepository {
	return m.brand
}

func (m *Memory) SyncState() interfaces.SyncStateRepository {
	return m.syncState
}

func (m *Memory) Close() error {
	return nil
}
