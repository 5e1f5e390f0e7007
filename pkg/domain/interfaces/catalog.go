package interfaces

import (
	"context"

	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
)

// StoreRepository persists retail stores. Names are unique, compared case-insensitively.
type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	Get(ctx context.Context, id model.StoreID) (*model.Store, error)
	// List returns all stores ordered by name
	List(ctx context.Context) ([]*model.Store, error)
	Update(ctx context.Context, store *model.Store) error
	// UpsertByName creates the store or, if a store with the same name exists, replaces its
	// eligible brands. The stored record is returned.
	UpsertByName(ctx context.Context, store *model.Store) (*model.Store, error)
}

// BrandRepository persists brand contests. Names are unique, compared case-insensitively.
type BrandRepository interface {
	Create(ctx context.Context, brand *model.Brand) error
	Get(ctx context.Context, id model.BrandID) (*model.Brand, error)
	// GetByName returns the brand with the given name or ErrNotFound
	GetByName(ctx context.Context, name string) (*model.Brand, error)
	// List returns all brands ordered by name
	List(ctx context.Context) ([]*model.Brand, error)
	Update(ctx context.Context, brand *model.Brand) error
	Delete(ctx context.Context, id model.BrandID) error
}
