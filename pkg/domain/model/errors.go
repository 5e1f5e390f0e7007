package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrPhotoAlreadyReviewed is returned when a review action targets a photo that left pending
	ErrPhotoAlreadyReviewed = goerr.New("photo already reviewed")
	// ErrStoreRequired is returned when a photo is approved without a store
	ErrStoreRequired = goerr.New("store is required")
	// ErrBrandRequired is returned when a photo is approved without any brand tag
	ErrBrandRequired = goerr.New("at least one brand is required")
	// ErrReasonRequired is returned when a photo is rejected without a reason
	ErrReasonRequired = goerr.New("rejection reason is required")
	// ErrInvalidName is returned for empty store or brand names
	ErrInvalidName = goerr.New("name must not be empty")
	// ErrInvalidPayout is returned for negative payout amounts
	ErrInvalidPayout = goerr.New("payout amount must not be negative")
	// ErrInvalidDate is returned when a calendar date cannot be parsed
	ErrInvalidDate = goerr.New("invalid date")
	// ErrInvalidDateRange is returned when the start date is after the end date
	ErrInvalidDateRange = goerr.New("start date is after end date")
)
