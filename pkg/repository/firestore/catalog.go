package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"google.golang.org/api/iterator"
)

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type storeDocument struct {
	ID             string    `firestore:"id"`
	Name           string    `firestore:"name"`
	NameKey        string    `firestore:"name_key"`
	EligibleBrands []string  `firestore:"eligible_brands"`
	CreatedAt      time.Time `firestore:"created_at"`
}

func storeToDocument(s *model.Store) *storeDocument {
	brands := s.EligibleBrands
	if brands == nil {
		brands = []string{}
	}
	return &storeDocument{
		ID:             string(s.ID),
		Name:           s.Name,
		NameKey:        nameKey(s.Name),
		EligibleBrands: brands,
		CreatedAt:      s.CreatedAt,
	}
}

func storeToModel(doc *storeDocument) *model.Store {
	return &model.Store{
		ID:             model.StoreID(doc.ID),
		Name:           doc.Name,
		EligibleBrands: doc.EligibleBrands,
		CreatedAt:      doc.CreatedAt,
	}
}

type storeRepository struct {
	client *firestore.Client
	names  *collectionNames
}

var _ interfaces.StoreRepository = &storeRepository{}

func (r *storeRepository) stores() *firestore.CollectionRef {
	return r.client.Collection(r.names.name(StoresCollection))
}

// findByName returns the snapshot of the store with the same name key, or nil
func (r *storeRepository) findByName(tx *firestore.Transaction, name string) (*firestore.DocumentSnapshot, error) {
	snaps, err := tx.Documents(r.stores().Where("name_key", "==", nameKey(name)).Limit(1)).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query store by name", goerr.V("name", name))
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return snaps[0], nil
}

func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	ref := r.stores().Doc(string(store.ID))
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := r.findByName(tx, store.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "store name already exists", goerr.V("name", store.Name))
		}
		return tx.Create(ref, storeToDocument(store))
	})
	if err != nil {
		if isAlreadyExists(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "store ID already exists", goerr.V("id", store.ID))
		}
		return goerr.Wrap(err, "failed to create store", goerr.V("id", store.ID))
	}
	return nil
}

func (r *storeRepository) Get(ctx context.Context, id model.StoreID) (*model.Store, error) {
	snap, err := r.stores().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "store not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get store", goerr.V("id", id))
	}

	var doc storeDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal store", goerr.V("id", id))
	}
	return storeToModel(&doc), nil
}

func (r *storeRepository) List(ctx context.Context) ([]*model.Store, error) {
	iter := r.stores().OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	stores := make([]*model.Store, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate stores")
		}

		var doc storeDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal store", goerr.V("doc_id", snap.Ref.ID))
		}
		stores = append(stores, storeToModel(&doc))
	}
	return stores, nil
}

func (r *storeRepository) Update(ctx context.Context, store *model.Store) error {
	ref := r.stores().Doc(string(store.ID))
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(interfaces.ErrNotFound, "store not found", goerr.V("id", store.ID))
			}
			return goerr.Wrap(err, "failed to get store", goerr.V("id", store.ID))
		}
		other, err := r.findByName(tx, store.Name)
		if err != nil {
			return err
		}
		if other != nil && other.Ref.ID != ref.ID {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "store name already exists", goerr.V("name", store.Name))
		}

		doc := storeToDocument(store)
		var prev storeDocument
		if err := current.DataTo(&prev); err == nil {
			doc.CreatedAt = prev.CreatedAt
		}
		return tx.Set(ref, doc)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to update store", goerr.V("id", store.ID))
	}
	return nil
}

func (r *storeRepository) UpsertByName(ctx context.Context, store *model.Store) (*model.Store, error) {
	var result *model.Store
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := r.findByName(tx, store.Name)
		if err != nil {
			return err
		}

		if existing != nil {
			var doc storeDocument
			if err := existing.DataTo(&doc); err != nil {
				return goerr.Wrap(err, "failed to unmarshal store", goerr.V("doc_id", existing.Ref.ID))
			}
			doc.EligibleBrands = storeToDocument(store).EligibleBrands
			result = storeToModel(&doc)
			return tx.Update(existing.Ref, []firestore.Update{
				{Path: "eligible_brands", Value: doc.EligibleBrands},
			})
		}

		created := *store
		if created.ID == "" {
			created.ID = model.StoreID(uuid.NewString())
		}
		result = &created
		return tx.Create(r.stores().Doc(string(created.ID)), storeToDocument(&created))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert store", goerr.V("name", store.Name))
	}
	return result, nil
}

type brandDocument struct {
	ID           string    `firestore:"id"`
	Name         string    `firestore:"name"`
	NameKey      string    `firestore:"name_key"`
	PayoutAmount int64     `firestore:"payout_amount"`
	CreatedAt    time.Time `firestore:"created_at"`
}

func brandToDocument(b *model.Brand) *brandDocument {
	return &brandDocument{
		ID:           string(b.ID),
		Name:         b.Name,
		NameKey:      nameKey(b.Name),
		PayoutAmount: b.PayoutAmount,
		CreatedAt:    b.CreatedAt,
	}
}

func brandToModel(doc *brandDocument) *model.Brand {
	return &model.Brand{
		ID:           model.BrandID(doc.ID),
		Name:         doc.Name,
		PayoutAmount: doc.PayoutAmount,
		CreatedAt:    doc.CreatedAt,
	}
}

type brandRepository struct {
	client *firestore.Client
	names  *collectionNames
}

var _ interfaces.BrandRepository = &brandRepository{}

func (r *brandRepository) brands() *firestore.CollectionRef {
	return r.client.Collection(r.names.name(BrandsCollection))
}

func (r *brandRepository) findByName(tx *firestore.Transaction, name string) (*firestore.DocumentSnapshot, error) {
	snaps, err := tx.Documents(r.brands().Where("name_key", "==", nameKey(name)).Limit(1)).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query brand by name", goerr.V("name", name))
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return snaps[0], nil
}

func (r *brandRepository) Create(ctx context.Context, brand *model.Brand) error {
	ref := r.brands().Doc(string(brand.ID))
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := r.findByName(tx, brand.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "brand name already exists", goerr.V("name", brand.Name))
		}
		return tx.Create(ref, brandToDocument(brand))
	})
	if err != nil {
		if isAlreadyExists(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "brand ID already exists", goerr.V("id", brand.ID))
		}
		return goerr.Wrap(err, "failed to create brand", goerr.V("id", brand.ID))
	}
	return nil
}

func (r *brandRepository) Get(ctx context.Context, id model.BrandID) (*model.Brand, error) {
	snap, err := r.brands().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "brand not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get brand", goerr.V("id", id))
	}

	var doc brandDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal brand", goerr.V("id", id))
	}
	return brandToModel(&doc), nil
}

func (r *brandRepository) GetByName(ctx context.Context, name string) (*model.Brand, error) {
	iter := r.brands().Where("name_key", "==", nameKey(name)).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "brand not found", goerr.V("name", name))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query brand", goerr.V("name", name))
	}

	var doc brandDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal brand", goerr.V("name", name))
	}
	return brandToModel(&doc), nil
}

func (r *brandRepository) List(ctx context.Context) ([]*model.Brand, error) {
	iter := r.brands().OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	brands := make([]*model.Brand, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate brands")
		}

		var doc brandDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal brand", goerr.V("doc_id", snap.Ref.ID))
		}
		brands = append(brands, brandToModel(&doc))
	}
	return brands, nil
}

func (r *brandRepository) Update(ctx context.Context, brand *model.Brand) error {
	ref := r.brands().Doc(string(brand.ID))
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isNotFound(err) {
				return goerr.Wrap(interfaces.ErrNotFound, "brand not found", goerr.V("id", brand.ID))
			}
			return goerr.Wrap(err, "failed to get brand", goerr.V("id", brand.ID))
		}
		other, err := r.findByName(tx, brand.Name)
		if err != nil {
			return err
		}
		if other != nil && other.Ref.ID != ref.ID {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "brand name already exists", goerr.V("name", brand.Name))
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "name", Value: brand.Name},
			{Path: "name_key", Value: nameKey(brand.Name)},
			{Path: "payout_amount", Value: brand.PayoutAmount},
		})
	})
	if err != nil {
		return goerr.Wrap(err, "failed to update brand", goerr.V("id", brand.ID))
	}
	return nil
}

func (r *brandRepository) Delete(ctx context.Context, id model.BrandID) error {
	if _, err := r.brands().Doc(string(id)).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(interfaces.ErrNotFound, "brand not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to delete brand", goerr.V("id", id))
	}
	return nil
}
