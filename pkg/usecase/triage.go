package usecase

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/auth"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
	"github.com/secmon-lab/shelfcheck/pkg/service/matcher"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
)

// DefaultQueueLimit is the page size of the review queue
const DefaultQueueLimit = 50

// DefaultRejectionReasons are offered to reviewers when none are configured
var DefaultRejectionReasons = []string{
	"Too less quantity",
	"It should be a shelf execution",
	"It should be an end cap execution",
	"Do not mix different brand in a single execution",
	"Others",
}

// TriageUseCase implements the human review of imported photos
type TriageUseCase struct {
	repo    interfaces.Repository
	matcher *matcher.Matcher
	reasons []string
	now     func() time.Time
}

// NewTriageUseCase creates a TriageUseCase. Empty reasons fall back to DefaultRejectionReasons.
func NewTriageUseCase(repo interfaces.Repository, m *matcher.Matcher, reasons []string) *TriageUseCase {
	if m == nil {
		m = matcher.New()
	}
	if len(reasons) == 0 {
		reasons = DefaultRejectionReasons
	}
	return &TriageUseCase{
		repo:    repo,
		matcher: m,
		reasons: slices.Clone(reasons),
		now:     time.Now,
	}
}

// PhotoQuery selects photos for listing. Status defaults to pending.
type PhotoQuery struct {
	Status  types.PhotoStatus
	StoreID model.StoreID
	Limit   int
}

// ListPhotos returns photos oldest first
func (uc *TriageUseCase) ListPhotos(ctx context.Context, q PhotoQuery) ([]*model.Photo, error) {
	status := q.Status
	if status == "" {
		status = types.PhotoStatusPending
	}
	if !status.IsValid() {
		return nil, goerr.Wrap(ErrInvalidStatus, "cannot list photos", goerr.V("status", status))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueueLimit
	}

	photos, err := uc.repo.Photo().List(ctx, interfaces.PhotoFilter{
		Status:  status,
		StoreID: q.StoreID,
		Limit:   limit,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list photos", goerr.V("status", status))
	}
	return photos, nil
}

// GetPhoto returns a photo or ErrPhotoNotFound
func (uc *TriageUseCase) GetPhoto(ctx context.Context, id model.PhotoID) (*model.Photo, error) {
	photo, err := uc.repo.Photo().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrPhotoNotFound, "photo not found", goerr.V(PhotoIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get photo", goerr.V(PhotoIDKey, id))
	}
	return photo, nil
}

// Approve marks a pending photo valid for the store and brands. The store and every brand
// must exist; brand labels are stored with their catalog spelling.
func (uc *TriageUseCase) Approve(ctx context.Context, id model.PhotoID, storeID model.StoreID, brands []string) (*model.Photo, error) {
	photo, err := uc.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}

	if storeID != "" {
		if _, err := uc.repo.Store().Get(ctx, storeID); err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(ErrStoreNotFound, "cannot approve photo", goerr.V(PhotoIDKey, id), goerr.V(StoreIDKey, storeID))
			}
			return nil, goerr.Wrap(err, "failed to get store", goerr.V(StoreIDKey, storeID))
		}
	}

	labels := model.NormalizeLabels(brands)
	for i, name := range labels {
		brand, err := uc.repo.Brand().GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(ErrBrandNotFound, "cannot approve photo", goerr.V(PhotoIDKey, id), goerr.V("brand", name))
			}
			return nil, goerr.Wrap(err, "failed to get brand", goerr.V("brand", name))
		}
		labels[i] = brand.Name
	}

	if err := photo.Approve(storeID, labels, auth.ReviewerFromContext(ctx), uc.now()); err != nil {
		return nil, err
	}
	return uc.save(ctx, photo)
}

// Reject marks a pending photo invalid with a reason
func (uc *TriageUseCase) Reject(ctx context.Context, id model.PhotoID, reason string) (*model.Photo, error) {
	photo, err := uc.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := photo.Reject(reason, auth.ReviewerFromContext(ctx), uc.now()); err != nil {
		return nil, err
	}
	return uc.save(ctx, photo)
}

// MarkRedundant marks a pending photo as a duplicate submission
func (uc *TriageUseCase) MarkRedundant(ctx context.Context, id model.PhotoID) (*model.Photo, error) {
	photo, err := uc.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := photo.MarkRedundant(auth.ReviewerFromContext(ctx), uc.now()); err != nil {
		return nil, err
	}
	return uc.save(ctx, photo)
}

func (uc *TriageUseCase) save(ctx context.Context, photo *model.Photo) (*model.Photo, error) {
	if err := uc.repo.Photo().Update(ctx, photo); err != nil {
		return nil, goerr.Wrap(err, "failed to update photo", goerr.V(PhotoIDKey, photo.ID))
	}

	logging.From(ctx).Info("photo reviewed",
		"photo_id", photo.ID,
		"status", photo.Status,
		"reviewer", photo.ReviewedBy)
	return photo, nil
}

// Delete removes a photo regardless of its status
func (uc *TriageUseCase) Delete(ctx context.Context, id model.PhotoID) error {
	if err := uc.repo.Photo().Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrPhotoNotFound, "photo not found", goerr.V(PhotoIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete photo", goerr.V(PhotoIDKey, id))
	}
	return nil
}

// ClearPending removes every pending photo and returns the number removed
func (uc *TriageUseCase) ClearPending(ctx context.Context) (int, error) {
	n, err := uc.repo.Photo().DeleteByStatus(ctx, types.PhotoStatusPending)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to clear pending photos")
	}

	logging.From(ctx).Info("pending queue cleared",
		"count", n,
		"by", auth.ReviewerFromContext(ctx))
	return n, nil
}

// SuggestStore guesses the store from the message text of the photo. It returns nil when
// no store is similar enough.
func (uc *TriageUseCase) SuggestStore(ctx context.Context, id model.PhotoID) (*matcher.Match, error) {
	photo, err := uc.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}

	stores, err := uc.repo.Store().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stores")
	}
	return uc.matcher.Best(photo.RawText, stores), nil
}

// RejectionReasons returns the reasons offered to reviewers
func (uc *TriageUseCase) RejectionReasons() []string {
	return slices.Clone(uc.reasons)
}
