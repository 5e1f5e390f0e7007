package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
)

// PhotoID is the internal identifier of an imported photo
type PhotoID string

func (id PhotoID) String() string { return string(id) }

// NewPhotoID generates a new photo ID
func NewPhotoID() PhotoID {
	return PhotoID(uuid.New().String())
}

// Photo is one image extracted from a message attachment
type Photo struct {
	ID        PhotoID
	MessageID MessageID
	// SourceKey is "<slack ts>:<file index>" and unique across all photos
	SourceKey       string
	ImageURL        string
	BlobName        string
	RawText         string
	Status          types.PhotoStatus
	StoreID         StoreID
	Brands          []string
	RejectionReason string
	ReviewedBy      string
	ReviewedAt      *time.Time
	// CreatedAt is the time the photo was posted, not the import time
	CreatedAt time.Time
}

func (p *Photo) checkPending() error {
	if p.Status != types.PhotoStatusPending {
		return goerr.Wrap(ErrPhotoAlreadyReviewed, "photo is not pending",
			goerr.V("photo_id", p.ID),
			goerr.V("status", p.Status))
	}
	return nil
}

func (p *Photo) markReviewed(by string, now time.Time) {
	p.ReviewedBy = by
	p.ReviewedAt = &now
}

// Approve marks the photo as a valid execution for the given store and brand labels
func (p *Photo) Approve(storeID StoreID, brands []string, by string, now time.Time) error {
	if err := p.checkPending(); err != nil {
		return err
	}
	if storeID == "" {
		return goerr.Wrap(ErrStoreRequired, "cannot approve photo", goerr.V("photo_id", p.ID))
	}

	normalized := NormalizeLabels(brands)
	if len(normalized) == 0 {
		return goerr.Wrap(ErrBrandRequired, "cannot approve photo", goerr.V("photo_id", p.ID))
	}

	p.Status = types.PhotoStatusApproved
	p.StoreID = storeID
	p.Brands = normalized
	p.RejectionReason = ""
	p.markReviewed(by, now)
	return nil
}

// Reject marks the photo as an invalid execution
func (p *Photo) Reject(reason string, by string, now time.Time) error {
	if err := p.checkPending(); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return goerr.Wrap(ErrReasonRequired, "cannot reject photo", goerr.V("photo_id", p.ID))
	}

	p.Status = types.PhotoStatusRejected
	p.RejectionReason = reason
	p.markReviewed(by, now)
	return nil
}

// MarkRedundant marks the photo as a duplicate of another submission
func (p *Photo) MarkRedundant(by string, now time.Time) error {
	if err := p.checkPending(); err != nil {
		return err
	}

	p.Status = types.PhotoStatusRedundant
	p.markReviewed(by, now)
	return nil
}

// HasBrand reports whether the photo is tagged with the brand label
func (p *Photo) HasBrand(name string) bool {
	for _, b := range p.Brands {
		if strings.EqualFold(b, name) {
			return true
		}
	}
	return false
}

// NormalizeLabels trims labels and drops empty and duplicate entries, keeping order
func NormalizeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	result := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		key := strings.ToLower(l)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, l)
	}
	return result
}
