package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
)

type storeRepository struct {
	db *sql.DB
}

var _ interfaces.StoreRepository = &storeRepository{}

func scanStore(row rowScanner) (*model.Store, error) {
	var s model.Store
	var id string
	var brands []string
	if err := row.Scan(&id, &s.Name, pq.Array(&brands), &s.CreatedAt); err != nil {
		return nil, err
	}
	s.ID = model.StoreID(id)
	s.EligibleBrands = brands
	return &s, nil
}

func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stores (id, name, name_key, eligible_brands, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		string(store.ID), store.Name, nameKey(store.Name), brandsArray(store.EligibleBrands), store.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "store already exists",
				goerr.V("id", store.ID), goerr.V("name", store.Name))
		}
		return goerr.Wrap(err, "failed to insert store", goerr.V("id", store.ID))
	}
	return nil
}

func (r *storeRepository) Get(ctx context.Context, id model.StoreID) (*model.Store, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	s, err := scanStore(r.db.QueryRowContext(ctx, `
		SELECT id, name, eligible_brands, created_at FROM stores WHERE id = $1`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "store not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to select store", goerr.V("id", id))
	}
	return s, nil
}

func (r *storeRepository) List(ctx context.Context) ([]*model.Store, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, eligible_brands, created_at FROM stores ORDER BY name`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stores")
	}
	defer func() { _ = rows.Close() }()

	stores := make([]*model.Store, 0)
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan store")
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate stores")
	}
	return stores, nil
}

func (r *storeRepository) Update(ctx context.Context, store *model.Store) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE stores SET name = $2, name_key = $3, eligible_brands = $4 WHERE id = $1`,
		string(store.ID), store.Name, nameKey(store.Name), brandsArray(store.EligibleBrands))
	if err != nil {
		if isUniqueViolation(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "store name already exists", goerr.V("name", store.Name))
		}
		return goerr.Wrap(err, "failed to update store", goerr.V("id", store.ID))
	}
	return expectOneRow(res, "store", string(store.ID))
}

func (r *storeRepository) UpsertByName(ctx context.Context, store *model.Store) (*model.Store, error) {
	id := store.ID
	if id == "" {
		id = model.StoreID(uuid.NewString())
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	s, err := scanStore(r.db.QueryRowContext(ctx, `
		INSERT INTO stores (id, name, name_key, eligible_brands, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name_key) DO UPDATE SET eligible_brands = EXCLUDED.eligible_brands
		RETURNING id, name, eligible_brands, created_at`,
		string(id), store.Name, nameKey(store.Name), brandsArray(store.EligibleBrands), store.CreatedAt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert store", goerr.V("name", store.Name))
	}
	return s, nil
}

type brandRepository struct {
	db *sql.DB
}

var _ interfaces.BrandRepository = &brandRepository{}

const brandColumns = `id, name, payout_amount, created_at`

func scanBrand(row rowScanner) (*model.Brand, error) {
	var b model.Brand
	var id string
	if err := row.Scan(&id, &b.Name, &b.PayoutAmount, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.ID = model.BrandID(id)
	return &b, nil
}

func (r *brandRepository) Create(ctx context.Context, brand *model.Brand) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO brands (id, name, name_key, payout_amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		string(brand.ID), brand.Name, nameKey(brand.Name), brand.PayoutAmount, brand.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "brand already exists",
				goerr.V("id", brand.ID), goerr.V("name", brand.Name))
		}
		return goerr.Wrap(err, "failed to insert brand", goerr.V("id", brand.ID))
	}
	return nil
}

func (r *brandRepository) getBy(ctx context.Context, column, value string) (*model.Brand, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	b, err := scanBrand(r.db.QueryRowContext(ctx, `SELECT `+brandColumns+` FROM brands WHERE `+column+` = $1`, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "brand not found", goerr.V(column, value))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to select brand", goerr.V(column, value))
	}
	return b, nil
}

func (r *brandRepository) Get(ctx context.Context, id model.BrandID) (*model.Brand, error) {
	return r.getBy(ctx, "id", string(id))
}

func (r *brandRepository) GetByName(ctx context.Context, name string) (*model.Brand, error) {
	return r.getBy(ctx, "name_key", nameKey(name))
}

func (r *brandRepository) List(ctx context.Context) ([]*model.Brand, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+brandColumns+` FROM brands ORDER BY name`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list brands")
	}
	defer func() { _ = rows.Close() }()

	brands := make([]*model.Brand, 0)
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan brand")
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate brands")
	}
	return brands, nil
}

func (r *brandRepository) Update(ctx context.Context, brand *model.Brand) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE brands SET name = $2, name_key = $3, payout_amount = $4 WHERE id = $1`,
		string(brand.ID), brand.Name, nameKey(brand.Name), brand.PayoutAmount)
	if err != nil {
		if isUniqueViolation(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "brand name already exists", goerr.V("name", brand.Name))
		}
		return goerr.Wrap(err, "failed to update brand", goerr.V("id", brand.ID))
	}
	return expectOneRow(res, "brand", string(brand.ID))
}

func (r *brandRepository) Delete(ctx context.Context, id model.BrandID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, string(id))
	if err != nil {
		return goerr.Wrap(err, "failed to delete brand", goerr.V("id", id))
	}
	return expectOneRow(res, "brand", string(id))
}
