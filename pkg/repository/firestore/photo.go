package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type photoDocument struct {
	ID              string     `firestore:"id"`
	MessageID       string     `firestore:"message_id"`
	SourceKey       string     `firestore:"source_key"`
	ImageURL        string     `firestore:"image_url"`
	BlobName        string     `firestore:"blob_name"`
	RawText         string     `firestore:"raw_text"`
	Status          string     `firestore:"status"`
	StoreID         string     `firestore:"store_id"`
	Brands          []string   `firestore:"brands"`
	RejectionReason string     `firestore:"rejection_reason"`
	ReviewedBy      string     `firestore:"reviewed_by"`
	ReviewedAt      *time.Time `firestore:"reviewed_at"`
	CreatedAt       time.Time  `firestore:"created_at"`
}

type photoRepository struct {
	client *firestore.Client
	names  *collectionNames
}

var _ interfaces.PhotoRepository = &photoRepository{}

func (r *photoRepository) photos() *firestore.CollectionRef {
	return r.client.Collection(r.names.name(PhotosCollection))
}

func photoToDocument(p *model.Photo) *photoDocument {
	brands := p.Brands
	if brands == nil {
		brands = []string{}
	}
	return &photoDocument{
		ID:              string(p.ID),
		MessageID:       string(p.MessageID),
		SourceKey:       p.SourceKey,
		ImageURL:        p.ImageURL,
		BlobName:        p.BlobName,
		RawText:         p.RawText,
		Status:          string(p.Status),
		StoreID:         string(p.StoreID),
		Brands:          brands,
		RejectionReason: p.RejectionReason,
		ReviewedBy:      p.ReviewedBy,
		ReviewedAt:      p.ReviewedAt,
		CreatedAt:       p.CreatedAt,
	}
}

func photoToModel(doc *photoDocument) *model.Photo {
	return &model.Photo{
		ID:              model.PhotoID(doc.ID),
		MessageID:       model.MessageID(doc.MessageID),
		SourceKey:       doc.SourceKey,
		ImageURL:        doc.ImageURL,
		BlobName:        doc.BlobName,
		RawText:         doc.RawText,
		Status:          types.PhotoStatus(doc.Status),
		StoreID:         model.StoreID(doc.StoreID),
		Brands:          doc.Brands,
		RejectionReason: doc.RejectionReason,
		ReviewedBy:      doc.ReviewedBy,
		ReviewedAt:      doc.ReviewedAt,
		CreatedAt:       doc.CreatedAt,
	}
}

func (r *photoRepository) Create(ctx context.Context, photo *model.Photo) error {
	if photo.SourceKey == "" {
		return goerr.New("photo source key is required", goerr.V("id", photo.ID))
	}

	ref := r.photos().Doc(string(photo.ID))
	dup := r.photos().Where("source_key", "==", photo.SourceKey).Limit(1)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(dup).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to query source key")
		}
		if len(existing) > 0 {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "photo already imported", goerr.V("source_key", photo.SourceKey))
		}
		return tx.Create(ref, photoToDocument(photo))
	})
	if err != nil {
		if isAlreadyExists(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "photo ID already exists", goerr.V("id", photo.ID))
		}
		return goerr.Wrap(err, "failed to create photo", goerr.V("id", photo.ID))
	}
	return nil
}

func (r *photoRepository) Get(ctx context.Context, id model.PhotoID) (*model.Photo, error) {
	snap, err := r.photos().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "photo not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get photo", goerr.V("id", id))
	}

	var doc photoDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal photo", goerr.V("id", id))
	}
	return photoToModel(&doc), nil
}

func (r *photoRepository) GetBySourceKey(ctx context.Context, sourceKey string) (*model.Photo, error) {
	iter := r.photos().Where("source_key", "==", sourceKey).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "photo not found", goerr.V("source_key", sourceKey))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query photo", goerr.V("source_key", sourceKey))
	}

	var doc photoDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal photo", goerr.V("source_key", sourceKey))
	}
	return photoToModel(&doc), nil
}

func (r *photoRepository) List(ctx context.Context, filter interfaces.PhotoFilter) ([]*model.Photo, error) {
	q := r.photos().Query
	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}
	if filter.StoreID != "" {
		q = q.Where("store_id", "==", string(filter.StoreID))
	}
	if filter.From != nil {
		q = q.Where("created_at", ">=", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at", "<", *filter.To)
	}
	q = q.OrderBy("created_at", firestore.Asc).OrderBy("source_key", firestore.Asc)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	photos := make([]*model.Photo, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate photos")
		}

		var doc photoDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal photo", goerr.V("doc_id", snap.Ref.ID))
		}
		photos = append(photos, photoToModel(&doc))
	}
	return photos, nil
}

func (r *photoRepository) Update(ctx context.Context, photo *model.Photo) error {
	brands := photo.Brands
	if brands == nil {
		brands = []string{}
	}

	_, err := r.photos().Doc(string(photo.ID)).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(photo.Status)},
		{Path: "store_id", Value: string(photo.StoreID)},
		{Path: "brands", Value: brands},
		{Path: "rejection_reason", Value: photo.RejectionReason},
		{Path: "reviewed_by", Value: photo.ReviewedBy},
		{Path: "reviewed_at", Value: photo.ReviewedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(interfaces.ErrNotFound, "photo not found", goerr.V("id", photo.ID))
		}
		return goerr.Wrap(err, "failed to update photo", goerr.V("id", photo.ID))
	}
	return nil
}

func (r *photoRepository) Delete(ctx context.Context, id model.PhotoID) error {
	ref := r.photos().Doc(string(id))
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(interfaces.ErrNotFound, "photo not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to delete photo", goerr.V("id", id))
	}
	return nil
}

func (r *photoRepository) DeleteByStatus(ctx context.Context, status types.PhotoStatus) (int, error) {
	iter := r.photos().Where("status", "==", string(status)).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	count := 0
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bw.End()
			return count, goerr.Wrap(err, "failed to iterate photos", goerr.V("status", status))
		}
		if _, err := bw.Delete(snap.Ref); err != nil {
			bw.End()
			return count, goerr.Wrap(err, "failed to enqueue photo deletion", goerr.V("id", snap.Ref.ID))
		}
		count++
	}
	bw.End()

	return count, nil
}
