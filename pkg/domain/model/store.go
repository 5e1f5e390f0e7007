package model

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// StoreID is the identifier of a retail store
type StoreID string

func (id StoreID) String() string { return string(id) }

// NewStoreID generates a new store ID
func NewStoreID() StoreID {
	return StoreID(uuid.New().String())
}

// BrandID is the identifier of a brand contest
type BrandID string

func (id BrandID) String() string { return string(id) }

func NewBrandID() BrandID {
	return BrandID(uuid.New().String())
}

// Store is a retail location. EligibleBrands holds the names of contests the store takes part in.
type Store struct {
	ID             StoreID
	Name           string
	EligibleBrands []string
	CreatedAt      time.Time
}

// IsEligible reports whether the store takes part in the brand contest
func (s *Store) IsEligible(brand string) bool {
	return slices.ContainsFunc(s.EligibleBrands, func(b string) bool {
		return strings.EqualFold(b, brand)
	})
}

// AddBrand adds the brand label if missing. It reports whether the store changed.
func (s *Store) AddBrand(brand string) bool {
	if s.IsEligible(brand) {
		return false
	}
	s.EligibleBrands = append(s.EligibleBrands, brand)
	return true
}

// RemoveBrand removes the brand label. It reports whether the store changed.
func (s *Store) RemoveBrand(brand string) bool {
	before := len(s.EligibleBrands)
	s.EligibleBrands = slices.DeleteFunc(s.EligibleBrands, func(b string) bool {
		return strings.EqualFold(b, brand)
	})
	return len(s.EligibleBrands) != before
}

// Brand is a contest run for a brand. PayoutAmount is paid per valid week.
type Brand struct {
	ID           BrandID
	Name         string
	PayoutAmount int64
	CreatedAt    time.Time
}

// MaxPayout is the payout for a store with a valid execution in every week
func (b *Brand) MaxPayout() int64 {
	return b.PayoutAmount * WeeksPerMonth
}

// Validate checks the brand fields
func (b *Brand) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return goerr.Wrap(ErrInvalidName, "invalid brand")
	}
	if b.PayoutAmount < 0 {
		return goerr.Wrap(ErrInvalidPayout, "invalid brand", goerr.V("payout", b.PayoutAmount))
	}
	return nil
}
