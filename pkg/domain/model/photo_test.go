package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
)

func newPendingPhoto() *model.Photo {
	return &model.Photo{
		ID:        "p1",
		MessageID: "m1",
		SourceKey: "100.5:0",
		Status:    types.PhotoStatusPending,
	}
}

func TestPhoto_Approve(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	t.Run("approves with store and brands", func(t *testing.T) {
		p := newPendingPhoto()
		gt.NoError(t, p.Approve("s1", []string{" Brand A ", "brand a", "Brand B"}, "admin", now)).Required()
		gt.Value(t, p.Status).Equal(types.PhotoStatusApproved)
		gt.Value(t, p.StoreID).Equal(model.StoreID("s1"))
		gt.Array(t, p.Brands).Equal([]string{"Brand A", "Brand B"})
		gt.Value(t, p.ReviewedBy).Equal("admin")
		gt.Value(t, p.ReviewedAt).NotNil()
		gt.Bool(t, p.HasBrand("BRAND B")).True()
	})

	t.Run("requires store", func(t *testing.T) {
		p := newPendingPhoto()
		gt.Error(t, p.Approve("", []string{"A"}, "admin", now)).Is(model.ErrStoreRequired)
		gt.Value(t, p.Status).Equal(types.PhotoStatusPending)
	})

	t.Run("requires a brand", func(t *testing.T) {
		p := newPendingPhoto()
		gt.Error(t, p.Approve("s1", []string{"  "}, "admin", now)).Is(model.ErrBrandRequired)
	})

	t.Run("only pending photos transition", func(t *testing.T) {
		p := newPendingPhoto()
		gt.NoError(t, p.MarkRedundant("admin", now)).Required()
		gt.Error(t, p.Approve("s1", []string{"A"}, "admin", now)).Is(model.ErrPhotoAlreadyReviewed)
		gt.Value(t, p.Status).Equal(types.PhotoStatusRedundant)
	})
}

func TestPhoto_Reject(t *testing.T) {
	now := time.Now()

	t.Run("requires reason", func(t *testing.T) {
		p := newPendingPhoto()
		gt.Error(t, p.Reject(" ", "admin", now)).Is(model.ErrReasonRequired)
	})

	t.Run("rejects", func(t *testing.T) {
		p := newPendingPhoto()
		gt.NoError(t, p.Reject("Too less quantity", "admin", now)).Required()
		gt.Value(t, p.Status).Equal(types.PhotoStatusRejected)
		gt.Value(t, p.RejectionReason).Equal("Too less quantity")

		gt.Error(t, p.Reject("Others", "admin", now)).Is(model.ErrPhotoAlreadyReviewed)
		gt.Error(t, p.MarkRedundant("admin", now)).Is(model.ErrPhotoAlreadyReviewed)
	})
}

func TestNormalizeLabels(t *testing.T) {
	gt.Array(t, model.NormalizeLabels(nil)).Length(0)
	gt.Array(t, model.NormalizeLabels([]string{"a", "A", "", "b"})).Equal([]string{"a", "b"})
}
