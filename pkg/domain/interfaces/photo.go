package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
)

// PhotoFilter narrows PhotoRepository.List. Zero values match everything.
type PhotoFilter struct {
	Status  types.PhotoStatus
	StoreID model.StoreID
	// From and To bound CreatedAt (inclusive From, exclusive To)
	From  *time.Time
	To    *time.Time
	Limit int
}

// Match reports whether p satisfies the filter, ignoring Limit
func (f PhotoFilter) Match(p *model.Photo) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.StoreID != "" && p.StoreID != f.StoreID {
		return false
	}
	if f.From != nil && p.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !p.CreatedAt.Before(*f.To) {
		return false
	}
	return true
}

// PhotoRepository persists imported photos
type PhotoRepository interface {
	// Create inserts a photo. It returns ErrAlreadyExists when the SourceKey is taken.
	Create(ctx context.Context, photo *model.Photo) error

	// Get returns the photo or ErrNotFound
	Get(ctx context.Context, id model.PhotoID) (*model.Photo, error)

	// GetBySourceKey returns the photo imported from the given source key or ErrNotFound
	GetBySourceKey(ctx context.Context, sourceKey string) (*model.Photo, error)

	// List returns photos matching the filter ordered by CreatedAt ascending
	List(ctx context.Context, filter PhotoFilter) ([]*model.Photo, error)

	// Update overwrites the review fields of an existing photo
	Update(ctx context.Context, photo *model.Photo) error

	// Delete removes a photo. It returns ErrNotFound if missing.
	Delete(ctx context.Context, id model.PhotoID) error

	// DeleteByStatus removes all photos with the status and returns the number removed
	DeleteByStatus(ctx context.Context, status types.PhotoStatus) (int, error)
}
