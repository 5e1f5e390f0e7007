package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
)

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type storeRepository struct {
	mu     sync.RWMutex
	stores map[model.StoreID]*model.Store
}

var _ interfaces.StoreRepository = &storeRepository{}

func newStoreRepository() *storeRepository {
	return &storeRepository{
		stores: make(map[model.StoreID]*model.Store),
	}
}

func copyStore(s *model.Store) *model.Store {
	c := *s
	c.EligibleBrands = slices.Clone(s.EligibleBrands)
	return &c
}

// findByName must be called with the lock held
func (r *storeRepository) findByName(name string) *model.Store {
	key := nameKey(name)
	for _, s := range r.stores {
		if nameKey(s.Name) == key {
			return s
		}
	}
	return nil
}

func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	if store == nil || store.ID == "" {
		return goerr.New("store ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[store.ID]; exists {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "store ID already exists", goerr.V("id", store.ID))
	}
	if r.findByName(store.Name) != nil {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "store name already exists", goerr.V("name", store.Name))
	}

	r.stores[store.ID] = copyStore(store)
	return nil
}

func (r *storeRepository) Get(ctx context.Context, id model.StoreID) (*model.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stores[id]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "store not found", goerr.V("id", id))
	}
	return copyStore(s), nil
}

func (r *storeRepository) List(ctx context.Context) ([]*model.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Store, 0, len(r.stores))
	for _, s := range r.stores {
		result = append(result, copyStore(s))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *storeRepository) Update(ctx context.Context, store *model.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stores[store.ID]; !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "store not found", goerr.V("id", store.ID))
	}
	if other := r.findByName(store.Name); other != nil && other.ID != store.ID {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "store name already exists", goerr.V("name", store.Name))
	}

	r.stores[store.ID] = copyStore(store)
	return nil
}

func (r *storeRepository) UpsertByName(ctx context.Context, store *model.Store) (*model.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.findByName(store.Name); existing != nil {
		existing.EligibleBrands = slices.Clone(store.EligibleBrands)
		return copyStore(existing), nil
	}

	created := copyStore(store)
	if created.ID == "" {
		created.ID = model.StoreID(uuid.NewString())
	}
	r.stores[created.ID] = created
	return copyStore(created), nil
}

type brandRepository struct {
	mu     sync.RWMutex
	brands map[model.BrandID]*model.Brand
}

var _ interfaces.BrandRepository = &brandRepository{}

func newBrandRepository() *brandRepository {
	return &brandRepository{
		brands: make(map[model.BrandID]*model.Brand),
	}
}

func copyBrand(b *model.Brand) *model.Brand {
	c := *b
	return &c
}

func (r *brandRepository) findByName(name string) *model.Brand {
	key := nameKey(name)
	for _, b := range r.brands {
		if nameKey(b.Name) == key {
			return b
		}
	}
	return nil
}

func (r *brandRepository) Create(ctx context.Context, brand *model.Brand) error {
	if brand == nil || brand.ID == "" {
		return goerr.New("brand ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.brands[brand.ID]; exists {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "brand ID already exists", goerr.V("id", brand.ID))
	}
	if r.findByName(brand.Name) != nil {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "brand name already exists", goerr.V("name", brand.Name))
	}

	r.brands[brand.ID] = copyBrand(brand)
	return nil
}

func (r *brandRepository) Get(ctx context.Context, id model.BrandID) (*model.Brand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.brands[id]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "brand not found", goerr.V("id", id))
	}
	return copyBrand(b), nil
}

func (r *brandRepository) GetByName(ctx context.Context, name string) (*model.Brand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b := r.findByName(name)
	if b == nil {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "brand not found", goerr.V("name", name))
	}
	return copyBrand(b), nil
}

func (r *brandRepository) List(ctx context.Context) ([]*model.Brand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Brand, 0, len(r.brands))
	for _, b := range r.brands {
		result = append(result, copyBrand(b))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *brandRepository) Update(ctx context.Context, brand *model.Brand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.brands[brand.ID]; !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "brand not found", goerr.V("id", brand.ID))
	}
	if other := r.findByName(brand.Name); other != nil && other.ID != brand.ID {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "brand name already exists", goerr.V("name", brand.Name))
	}

	r.brands[brand.ID] = copyBrand(brand)
	return nil
}

func (r *brandRepository) Delete(ctx context.Context, id model.BrandID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.brands[id]; !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "brand not found", goerr.V("id", id))
	}
	delete(r.brands, id)
	return nil
}
