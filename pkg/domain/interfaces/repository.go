package interfaces

import (
	"context"

	"github.com/secmon-lab/shelfcheck/pkg/domain/model/auth"
)

// SessionRepository persists admin session tokens
type SessionRepository interface {
	PutToken(ctx context.Context, token *auth.Token) error
	GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error)
	DeleteToken(ctx context.Context, tokenID auth.TokenID) error
}

// Repository is the storage backend. Every backend (firestore, postgres, memory) provides
// the same collections and must pass the shared repository tests.
type Repository interface {
	SessionRepository

	Message() MessageRepository
	Photo() PhotoRepository
	Store() StoreRepository
	Brand() BrandRepository
	SyncState() SyncStateRepository

	Close() error
}
