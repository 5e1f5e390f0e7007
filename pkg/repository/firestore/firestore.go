package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names without prefix. Indexes for them are declared in IndexConfig.
const (
	ChannelsCollection   = "slack_channels"
	MessagesCollection   = "messages"
	PhotosCollection     = "photos"
	StoresCollection     = "stores"
	BrandsCollection     = "brands"
	CheckpointCollection = "sync_checkpoints"
	LocksCollection      = "sync_locks"
	SessionsCollection   = "sessions"
)

type Firestore struct {
	client    *firestore.Client
	names     *collectionNames
	message   *messageRepository
	photo     *photoRepository
	store     *storeRepository
	brand     *brandRepository
	syncState *syncStateRepository
}

var _ interfaces.Repository = &Firestore{}

// collectionNames resolves collection names with an optional prefix shared by all repositories
type collectionNames struct {
	prefix string
}

func (n *collectionNames) name(base string) string {
	if n.prefix != "" {
		return n.prefix + "_" + base
	}
	return base
}

type Option func(*Firestore)

// WithCollectionPrefix isolates all collections under a prefix. Used by integration tests.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.names.prefix = prefix
	}
}

// New creates a Firestore repository. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	names := &collectionNames{}
	f := &Firestore{
		client:    client,
		names:     names,
		message:   &messageRepository{client: client, names: names},
		photo:     &photoRepository{client: client, names: names},
		store:     &storeRepository{client: client, names: names},
		brand:     &brandRepository{client: client, names: names},
		syncState: &syncStateRepository{client: client, names: names},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Message() interfaces.MessageRepository {
	return f.message
}

func (f *Firestore) Photo() interfaces.PhotoRepository {
	return f.photo
}

func (f *Firestore) Store() interfaces.StoreRepository {
	return f.store
}

func (f *Firestore) Brand() interfaces.BrandRepository {
	return f.brand
}

func (f *Firestore) SyncState() interfaces.SyncStateRepository {
	return f.syncState
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
