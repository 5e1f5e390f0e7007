package config

// StoreSeed is a store to register from the catalog file
type StoreSeed struct {
	Name string
}

// BrandSeed is a brand contest to register from the catalog file. Stores lists the names of
// the stores taking part.
type BrandSeed struct {
	Name         string
	PayoutAmount int64
	Stores       []string
}

// Catalog is the reference data loaded from the catalog file
type Catalog struct {
	Stores           []StoreSeed
	Brands           []BrandSeed
	RejectionReasons []string
}
