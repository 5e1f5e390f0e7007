package firestore

import "github.com/m-mizutani/fireconf"

// IndexConfig returns the composite indexes required by the photo queries.
// Collection names include the prefix when one is given.
func IndexConfig(prefix string) *fireconf.Config {
	names := &collectionNames{prefix: prefix}

	createdAt := fireconf.IndexField{Path: "created_at", Order: fireconf.OrderAscending}
	sourceKey := fireconf.IndexField{Path: "source_key", Order: fireconf.OrderAscending}

	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: names.name(PhotosCollection),
				Indexes: []fireconf.Index{
					// List without filters
					{Fields: []fireconf.IndexField{createdAt, sourceKey}},
					// List by status (triage queue, dashboard)
					{Fields: []fireconf.IndexField{
						{Path: "status", Order: fireconf.OrderAscending},
						createdAt, sourceKey,
					}},
					// List by store
					{Fields: []fireconf.IndexField{
						{Path: "store_id", Order: fireconf.OrderAscending},
						createdAt, sourceKey,
					}},
					// List by status and store
					{Fields: []fireconf.IndexField{
						{Path: "status", Order: fireconf.OrderAscending},
						{Path: "store_id", Order: fireconf.OrderAscending},
						createdAt, sourceKey,
					}},
				},
			},
		},
	}
}
