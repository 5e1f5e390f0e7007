package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/config"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
)

// CatalogUseCase manages stores and brand contests
type CatalogUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

// NewCatalogUseCase creates a CatalogUseCase
func NewCatalogUseCase(repo interfaces.Repository) *CatalogUseCase {
	return &CatalogUseCase{
		repo: repo,
		now:  time.Now,
	}
}

// ListStores returns all stores ordered by name
func (uc *CatalogUseCase) ListStores(ctx context.Context) ([]*model.Store, error) {
	stores, err := uc.repo.Store().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stores")
	}
	return stores, nil
}

// CreateStore registers a store. Names are trimmed and must be unique ignoring case.
func (uc *CatalogUseCase) CreateStore(ctx context.Context, name string) (*model.Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, goerr.Wrap(model.ErrInvalidName, "cannot create store")
	}

	store := &model.Store{
		ID:        model.NewStoreID(),
		Name:      name,
		CreatedAt: uc.now(),
	}
	if err := uc.repo.Store().Create(ctx, store); err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return nil, goerr.Wrap(ErrDuplicateStore, "cannot create store", goerr.V("name", name))
		}
		return nil, goerr.Wrap(err, "failed to create store", goerr.V("name", name))
	}
	return store, nil
}

// ListBrands returns all brand contests ordered by name
func (uc *CatalogUseCase) ListBrands(ctx context.Context) ([]*model.Brand, error) {
	brands, err := uc.repo.Brand().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list brands")
	}
	return brands, nil
}

// BrandInput creates a contest when ID is empty, otherwise updates it.
// StoreIDs is the complete set of eligible stores.
type BrandInput struct {
	ID           model.BrandID
	Name         string
	PayoutAmount int64
	StoreIDs     []model.StoreID
}

// SaveBrand creates or updates a contest and its eligible store set. Renaming a contest
// moves its label on stores and on approved photos.
func (uc *CatalogUseCase) SaveBrand(ctx context.Context, input BrandInput) (*model.Brand, error) {
	brand := &model.Brand{
		ID:           input.ID,
		Name:         strings.TrimSpace(input.Name),
		PayoutAmount: input.PayoutAmount,
	}
	if err := brand.Validate(); err != nil {
		return nil, err
	}

	var oldName string
	if brand.ID == "" {
		brand.ID = model.NewBrandID()
		brand.CreatedAt = uc.now()
		if err := uc.repo.Brand().Create(ctx, brand); err != nil {
			return nil, uc.brandWriteError(err, brand)
		}
	} else {
		existing, err := uc.getBrand(ctx, brand.ID)
		if err != nil {
			return nil, err
		}
		oldName = existing.Name
		brand.CreatedAt = existing.CreatedAt
		if err := uc.repo.Brand().Update(ctx, brand); err != nil {
			return nil, uc.brandWriteError(err, brand)
		}
	}

	eligible := make(map[model.StoreID]bool, len(input.StoreIDs))
	for _, id := range input.StoreIDs {
		eligible[id] = true
	}

	stores, err := uc.repo.Store().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stores")
	}
	for _, s := range stores {
		changed := false
		if oldName != "" && oldName != brand.Name {
			changed = s.RemoveBrand(oldName)
		}
		if eligible[s.ID] {
			changed = s.AddBrand(brand.Name) || changed
		} else {
			changed = s.RemoveBrand(brand.Name) || changed
		}
		if !changed {
			continue
		}
		if err := uc.repo.Store().Update(ctx, s); err != nil {
			return nil, goerr.Wrap(err, "failed to update store eligibility",
				goerr.V(StoreIDKey, s.ID), goerr.V(BrandIDKey, brand.ID))
		}
	}

	if oldName != "" && oldName != brand.Name {
		if err := uc.relabelPhotos(ctx, oldName, brand.Name); err != nil {
			return nil, err
		}
	}

	logging.From(ctx).Info("brand saved",
		"brand_id", brand.ID,
		"name", brand.Name,
		"payout", brand.PayoutAmount,
		"stores", len(input.StoreIDs))
	return brand, nil
}

func (uc *CatalogUseCase) brandWriteError(err error, brand *model.Brand) error {
	switch {
	case errors.Is(err, interfaces.ErrAlreadyExists):
		return goerr.Wrap(ErrDuplicateBrand, "cannot save brand", goerr.V("name", brand.Name))
	case errors.Is(err, interfaces.ErrNotFound):
		return goerr.Wrap(ErrBrandNotFound, "cannot save brand", goerr.V(BrandIDKey, brand.ID))
	default:
		return goerr.Wrap(err, "failed to save brand", goerr.V(BrandIDKey, brand.ID))
	}
}

func (uc *CatalogUseCase) getBrand(ctx context.Context, id model.BrandID) (*model.Brand, error) {
	brand, err := uc.repo.Brand().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrBrandNotFound, "brand not found", goerr.V(BrandIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get brand", goerr.V(BrandIDKey, id))
	}
	return brand, nil
}

// relabelPhotos renames a brand label on approved photos
func (uc *CatalogUseCase) relabelPhotos(ctx context.Context, from, to string) error {
	photos, err := uc.repo.Photo().List(ctx, interfaces.PhotoFilter{Status: types.PhotoStatusApproved})
	if err != nil {
		return goerr.Wrap(err, "failed to list approved photos")
	}

	for _, p := range photos {
		if !p.HasBrand(from) {
			continue
		}
		labels := make([]string, 0, len(p.Brands))
		for _, b := range p.Brands {
			if strings.EqualFold(b, from) {
				b = to
			}
			labels = append(labels, b)
		}
		p.Brands = model.NormalizeLabels(labels)
		if err := uc.repo.Photo().Update(ctx, p); err != nil {
			return goerr.Wrap(err, "failed to relabel photo", goerr.V(PhotoIDKey, p.ID))
		}
	}
	return nil
}

// DeleteBrand removes the contest label from every store, then deletes the contest.
// Approved photos keep their labels.
func (uc *CatalogUseCase) DeleteBrand(ctx context.Context, id model.BrandID) error {
	brand, err := uc.getBrand(ctx, id)
	if err != nil {
		return err
	}

	stores, err := uc.repo.Store().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list stores")
	}
	for _, s := range stores {
		if !s.RemoveBrand(brand.Name) {
			continue
		}
		if err := uc.repo.Store().Update(ctx, s); err != nil {
			return goerr.Wrap(err, "failed to update store eligibility",
				goerr.V(StoreIDKey, s.ID), goerr.V(BrandIDKey, id))
		}
	}

	if err := uc.repo.Brand().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete brand", goerr.V(BrandIDKey, id))
	}

	logging.From(ctx).Info("brand deleted", "brand_id", id, "name", brand.Name)
	return nil
}

// SeedResult counts the records written by Seed
type SeedResult struct {
	Stores int
	Brands int
}

// Seed registers the catalog. Stores are upserted by name; brands are created or have
// their payout updated, and listed stores are made eligible. Existing eligibility is kept.
func (uc *CatalogUseCase) Seed(ctx context.Context, catalog *config.Catalog) (*SeedResult, error) {
	result := &SeedResult{}
	byName := make(map[string]*model.Store)

	existing, err := uc.repo.Store().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stores")
	}
	for _, s := range existing {
		byName[strings.ToLower(s.Name)] = s
	}

	for _, seed := range catalog.Stores {
		name := strings.TrimSpace(seed.Name)
		if name == "" {
			return nil, goerr.Wrap(model.ErrInvalidName, "invalid store seed")
		}

		store := &model.Store{
			ID:        model.NewStoreID(),
			Name:      name,
			CreatedAt: uc.now(),
		}
		if current, ok := byName[strings.ToLower(name)]; ok {
			store.EligibleBrands = current.EligibleBrands
		}
		saved, err := uc.repo.Store().UpsertByName(ctx, store)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to upsert store", goerr.V("name", name))
		}
		byName[strings.ToLower(saved.Name)] = saved
		result.Stores++
	}

	for _, seed := range catalog.Brands {
		brand, err := uc.seedBrand(ctx, seed)
		if err != nil {
			return nil, err
		}
		result.Brands++

		for _, storeName := range seed.Stores {
			s, ok := byName[strings.ToLower(strings.TrimSpace(storeName))]
			if !ok {
				return nil, goerr.Wrap(ErrStoreNotFound, "unknown store in brand seed",
					goerr.V("brand", brand.Name), goerr.V("store", storeName))
			}
			if !s.AddBrand(brand.Name) {
				continue
			}
			if err := uc.repo.Store().Update(ctx, s); err != nil {
				return nil, goerr.Wrap(err, "failed to update store eligibility", goerr.V(StoreIDKey, s.ID))
			}
		}
	}

	logging.From(ctx).Info("catalog seeded", "stores", result.Stores, "brands", result.Brands)
	return result, nil
}

func (uc *CatalogUseCase) seedBrand(ctx context.Context, seed config.BrandSeed) (*model.Brand, error) {
	brand, err := uc.repo.Brand().GetByName(ctx, seed.Name)
	switch {
	case err == nil:
		brand.PayoutAmount = seed.PayoutAmount
		if err := brand.Validate(); err != nil {
			return nil, err
		}
		if err := uc.repo.Brand().Update(ctx, brand); err != nil {
			return nil, goerr.Wrap(err, "failed to update brand", goerr.V("name", seed.Name))
		}
		return brand, nil

	case errors.Is(err, interfaces.ErrNotFound):
		brand = &model.Brand{
			ID:           model.NewBrandID(),
			Name:         strings.TrimSpace(seed.Name),
			PayoutAmount: seed.PayoutAmount,
			CreatedAt:    uc.now(),
		}
		if err := brand.Validate(); err != nil {
			return nil, err
		}
		if err := uc.repo.Brand().Create(ctx, brand); err != nil {
			return nil, goerr.Wrap(err, "failed to create brand", goerr.V("name", seed.Name))
		}
		return brand, nil

	default:
		return nil, goerr.Wrap(err, "failed to get brand", goerr.V("name", seed.Name))
	}
}
