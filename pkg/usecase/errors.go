package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Sync errors
	ErrSyncInProgress    = errors.New("another sync is in progress")
	ErrSyncNotConfigured = errors.New("sync is not configured")

	// Not found errors
	ErrPhotoNotFound = errors.New("photo not found")
	ErrStoreNotFound = errors.New("store not found")
	ErrBrandNotFound = errors.New("brand not found")

	// Validation errors
	ErrInvalidStatus  = errors.New("invalid photo status")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrDuplicateStore = errors.New("store already exists")
	ErrDuplicateBrand = errors.New("brand already exists")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidTokenSecret = errors.New("invalid token secret")
	ErrTokenExpired       = errors.New("token expired")
)

// Context keys for error values
const (
	PhotoIDKey   = "photo_id"
	StoreIDKey   = "store_id"
	BrandIDKey   = "brand_id"
	ChannelIDKey = "channel_id"
)
