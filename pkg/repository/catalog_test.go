package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
)

func newStore(name string, brands ...string) *model.Store {
	return &model.Store{
		ID:             model.StoreID(uuid.NewString()),
		Name:           name,
		EligibleBrands: brands,
		CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}
}

func newBrand(name string, payout int64) *model.Brand {
	return &model.Brand{
		ID:           model.BrandID(uuid.NewString()),
		Name:         name,
		PayoutAmount: payout,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func runStoreRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Run("Create, Get and List", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		b := newStore("Store B", "Brand A")
		a := newStore("Store A")
		gt.NoError(t, repo.Store().Create(ctx, b)).Required()
		gt.NoError(t, repo.Store().Create(ctx, a)).Required()

		got, err := repo.Store().Get(ctx, b.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Store B")
		gt.Array(t, got.EligibleBrands).Equal([]string{"Brand A"})

		stores, err := repo.Store().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, stores).Length(2)
		gt.Value(t, stores[0].Name).Equal("Store A")
		gt.Array(t, stores[0].EligibleBrands).Length(0)
	})

	t.Run("names are unique ignoring case", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Store().Create(ctx, newStore("Store XYZ"))).Required()
		gt.Error(t, repo.Store().Create(ctx, newStore(" store xyz "))).Is(interfaces.ErrAlreadyExists)
	})

	t.Run("Update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		s := newStore("Store A")
		gt.NoError(t, repo.Store().Create(ctx, s)).Required()
		other := newStore("Store B")
		gt.NoError(t, repo.Store().Create(ctx, other)).Required()

		s.AddBrand("Brand A")
		gt.NoError(t, repo.Store().Update(ctx, s)).Required()
		got, err := repo.Store().Get(ctx, s.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, got.EligibleBrands).Equal([]string{"Brand A"})

		s.Name = "Store B"
		gt.Error(t, repo.Store().Update(ctx, s)).Is(interfaces.ErrAlreadyExists)

		gt.Error(t, repo.Store().Update(ctx, newStore("missing"))).Is(interfaces.ErrNotFound)
	})

	t.Run("UpsertByName", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Store().UpsertByName(ctx, newStore("Store A", "Brand A"))
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID == "").Equal(false)

		updated, err := repo.Store().UpsertByName(ctx, newStore("store a", "Brand B"))
		gt.NoError(t, err).Required()
		gt.Value(t, updated.ID).Equal(created.ID)
		gt.Value(t, updated.Name).Equal("Store A")
		gt.Array(t, updated.EligibleBrands).Equal([]string{"Brand B"})

		stores, err := repo.Store().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, stores).Length(1)
	})
}

func runBrandRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Run("CRUD", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		b := newBrand("Brand A", 2500)
		gt.NoError(t, repo.Brand().Create(ctx, b)).Required()
		gt.Error(t, repo.Brand().Create(ctx, newBrand("BRAND A", 1))).Is(interfaces.ErrAlreadyExists)

		got, err := repo.Brand().GetByName(ctx, "brand a")
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(b.ID)
		gt.Value(t, got.PayoutAmount).Equal(int64(2500))

		b.Name = "Brand Z"
		b.PayoutAmount = 3000
		gt.NoError(t, repo.Brand().Update(ctx, b)).Required()
		got, err = repo.Brand().Get(ctx, b.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Brand Z")
		gt.Value(t, got.PayoutAmount).Equal(int64(3000))

		gt.NoError(t, repo.Brand().Create(ctx, newBrand("Brand B", 100))).Required()
		brands, err := repo.Brand().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, brands).Length(2)
		gt.Value(t, brands[0].Name).Equal("Brand B")

		gt.NoError(t, repo.Brand().Delete(ctx, b.ID)).Required()
		_, err = repo.Brand().Get(ctx, b.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
		gt.Error(t, repo.Brand().Delete(ctx, b.ID)).Is(interfaces.ErrNotFound)
	})
}

func TestStoreRepository(t *testing.T) {
	runAllBackends(t, runStoreRepositoryTest)
}

func TestBrandRepository(t *testing.T) {
	runAllBackends(t, runBrandRepositoryTest)
}
