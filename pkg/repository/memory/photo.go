package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
)

type photoRepository struct {
	mu          sync.RWMutex
	photos      map[model.PhotoID]*model.Photo
	bySourceKey map[string]model.PhotoID
}

var _ interfaces.PhotoRepository = &photoRepository{}

func newPhotoRepository() *photoRepository {
	return &photoRepository{
		photos:      make(map[model.PhotoID]*model.Photo),
		bySourceKey: make(map[string]model.PhotoID),
	}
}

func copyPhoto(p *model.Photo) *model.Photo {
	c := *p
	c.Brands = slices.Clone(p.Brands)
	if p.ReviewedAt != nil {
		t := *p.ReviewedAt
		c.ReviewedAt = &t
	}
	return &c
}

func (r *photoRepository) Create(ctx context.Context, photo *model.Photo) error {
	if photo == nil || photo.ID == "" {
		return goerr.New("photo ID is required")
	}
	if photo.SourceKey == "" {
		return goerr.New("photo source key is required", goerr.V("id", photo.ID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySourceKey[photo.SourceKey]; exists {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "photo already imported", goerr.V("source_key", photo.SourceKey))
	}
	if _, exists := r.photos[photo.ID]; exists {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "photo ID already exists", goerr.V("id", photo.ID))
	}

	r.photos[photo.ID] = copyPhoto(photo)
	r.bySourceKey[photo.SourceKey] = photo.ID
	return nil
}

func (r *photoRepository) Get(ctx context.Context, id model.PhotoID) (*model.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.photos[id]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "photo not found", goerr.V("id", id))
	}
	return copyPhoto(p), nil
}

func (r *photoRepository) GetBySourceKey(ctx context.Context, sourceKey string) (*model.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySourceKey[sourceKey]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "photo not found", goerr.V("source_key", sourceKey))
	}
	return copyPhoto(r.photos[id]), nil
}

func (r *photoRepository) List(ctx context.Context, filter interfaces.PhotoFilter) ([]*model.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Photo, 0)
	for _, p := range r.photos {
		if filter.Match(p) {
			result = append(result, copyPhoto(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].SourceKey < result[j].SourceKey
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *photoRepository) Update(ctx context.Context, photo *model.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.photos[photo.ID]
	if !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "photo not found", goerr.V("id", photo.ID))
	}

	updated := copyPhoto(current)
	updated.Status = photo.Status
	updated.StoreID = photo.StoreID
	updated.Brands = slices.Clone(photo.Brands)
	updated.RejectionReason = photo.RejectionReason
	updated.ReviewedBy = photo.ReviewedBy
	updated.ReviewedAt = photo.ReviewedAt
	r.photos[photo.ID] = copyPhoto(updated)
	return nil
}

func (r *photoRepository) Delete(ctx context.Context, id model.PhotoID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.photos[id]
	if !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "photo not found", goerr.V("id", id))
	}
	delete(r.bySourceKey, p.SourceKey)
	delete(r.photos, id)
	return nil
}

func (r *photoRepository) DeleteByStatus(ctx context.Context, status types.PhotoStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for id, p := range r.photos {
		if p.Status != status {
			continue
		}
		delete(r.bySourceKey, p.SourceKey)
		delete(r.photos, id)
		count++
	}
	return count, nil
}
