package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/secmon-lab/shelfcheck/pkg/utils/errutil"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// statusOf maps use case and domain errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, model.ErrInvalidDateRange),
		errors.Is(err, model.ErrInvalidName),
		errors.Is(err, model.ErrInvalidPayout),
		errors.Is(err, model.ErrStoreRequired),
		errors.Is(err, model.ErrBrandRequired),
		errors.Is(err, model.ErrReasonRequired),
		errors.Is(err, usecase.ErrInvalidStatus),
		errors.Is(err, usecase.ErrInvalidMonth):
		return http.StatusBadRequest

	case errors.Is(err, usecase.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, usecase.ErrPhotoNotFound),
		errors.Is(err, usecase.ErrStoreNotFound),
		errors.Is(err, usecase.ErrBrandNotFound):
		return http.StatusNotFound

	case errors.Is(err, model.ErrPhotoAlreadyReviewed),
		errors.Is(err, usecase.ErrDuplicateStore),
		errors.Is(err, usecase.ErrDuplicateBrand),
		errors.Is(err, usecase.ErrSyncInProgress):
		return http.StatusConflict

	case errors.Is(err, usecase.ErrSyncNotConfigured):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the status of err. Server errors are reported and their
// details are not exposed.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		errutil.Handle(ctx, err, "request failed")
		msg = http.StatusText(status)
	} else {
		logging.From(ctx).Warn("request rejected", "status", status, "error", err.Error())
	}
	writeJSON(ctx, w, status, errorResponse{Error: msg})
}

type syncRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type syncResponse struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Scanned int      `json:"scanned"`
	Skipped int      `json:"skipped"`
	HasMore bool     `json:"hasMore"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func newSyncResponse(r *model.SyncResult) syncResponse {
	return syncResponse{
		Success: r.Success,
		Count:   r.ImportedCount,
		Scanned: r.ScannedCount,
		Skipped: r.SkippedCount,
		HasMore: r.HasMore,
		Errors:  r.Errors,
		Error:   r.Error,
	}
}

type photoResponse struct {
	ID              string     `json:"id"`
	MessageID       string     `json:"messageId"`
	ImageURL        string     `json:"imageUrl"`
	RawText         string     `json:"rawText"`
	Status          string     `json:"status"`
	StoreID         string     `json:"storeId,omitempty"`
	Brands          []string   `json:"brands"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	ReviewedBy      string     `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func newPhotoResponse(p *model.Photo) photoResponse {
	brands := p.Brands
	if brands == nil {
		brands = []string{}
	}
	return photoResponse{
		ID:              p.ID.String(),
		MessageID:       string(p.MessageID),
		ImageURL:        p.ImageURL,
		RawText:         p.RawText,
		Status:          p.Status.String(),
		StoreID:         p.StoreID.String(),
		Brands:          brands,
		RejectionReason: p.RejectionReason,
		ReviewedBy:      p.ReviewedBy,
		ReviewedAt:      p.ReviewedAt,
		CreatedAt:       p.CreatedAt,
	}
}

type storeResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	EligibleBrands []string  `json:"eligibleBrands"`
	CreatedAt      time.Time `json:"createdAt"`
}

func newStoreResponse(s *model.Store) storeResponse {
	brands := s.EligibleBrands
	if brands == nil {
		brands = []string{}
	}
	return storeResponse{
		ID:             s.ID.String(),
		Name:           s.Name,
		EligibleBrands: brands,
		CreatedAt:      s.CreatedAt,
	}
}

type contestResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PayoutAmount int64     `json:"payoutAmount"`
	MaxPayout    int64     `json:"maxPayout"`
	StoreIDs     []string  `json:"storeIds"`
	CreatedAt    time.Time `json:"createdAt"`
}

func newContestResponse(b *model.Brand, stores []*model.Store) contestResponse {
	ids := []string{}
	for _, s := range stores {
		if s.IsEligible(b.Name) {
			ids = append(ids, s.ID.String())
		}
	}
	return contestResponse{
		ID:           b.ID.String(),
		Name:         b.Name,
		PayoutAmount: b.PayoutAmount,
		MaxPayout:    b.MaxPayout(),
		StoreIDs:     ids,
		CreatedAt:    b.CreatedAt,
	}
}

type payoutRowResponse struct {
	StoreID    string   `json:"storeId"`
	StoreName  string   `json:"storeName"`
	Weeks      []string `json:"weeks"`
	ValidWeeks int      `json:"validWeeks"`
	Earned     int64    `json:"earned"`
	Max        int64    `json:"max"`
}

type payoutResponse struct {
	Brand        string              `json:"brand"`
	PayoutAmount int64               `json:"payoutAmount"`
	Month        string              `json:"month"`
	Rows         []payoutRowResponse `json:"rows"`
	Total        int64               `json:"total"`
}

func newPayoutResponse(report *model.PayoutReport) payoutResponse {
	resp := payoutResponse{
		Brand:        report.Brand.Name,
		PayoutAmount: report.Brand.PayoutAmount,
		Month:        report.Month.Format(usecase.MonthLayout),
		Rows:         make([]payoutRowResponse, 0, len(report.Rows)),
		Total:        report.Total,
	}
	for _, row := range report.Rows {
		weeks := make([]string, len(row.Weeks))
		for i, w := range row.Weeks {
			weeks[i] = string(w)
		}
		resp.Rows = append(resp.Rows, payoutRowResponse{
			StoreID:    row.Store.ID.String(),
			StoreName:  row.Store.Name,
			Weeks:      weeks,
			ValidWeeks: row.ValidWeeks,
			Earned:     row.Earned,
			Max:        row.Max,
		})
	}
	return resp
}
