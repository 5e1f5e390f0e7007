package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
)

const (
	operationTimeout = 10 * time.Second
	uniqueViolation  = "23505"
)

// Postgres is a repository backed by a PostgreSQL database through lib/pq
type Postgres struct {
	db          *sql.DB
	autoMigrate bool

	migrateOnce sync.Once
	migrateErr  error

	message   *messageRepository
	photo     *photoRepository
	store     *storeRepository
	brand     *brandRepository
	syncState *syncStateRepository
}

var _ interfaces.Repository = &Postgres{}

type Option func(*Postgres)

// WithAutoMigrate creates missing tables when the repository is opened
func WithAutoMigrate() Option {
	return func(p *Postgres) {
		p.autoMigrate = true
	}
}

// New opens a connection pool for dsn and checks connectivity
func New(ctx context.Context, dsn string, opts ...Option) (*Postgres, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, goerr.New("postgres DSN is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres")
	}

	pingCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to connect to postgres")
	}

	p := newWithDB(db)
	for _, opt := range opts {
		opt(p)
	}

	if p.autoMigrate {
		if err := p.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return p, nil
}

func newWithDB(db *sql.DB) *Postgres {
	return &Postgres{
		db:        db,
		message:   &messageRepository{db: db},
		photo:     &photoRepository{db: db},
		store:     &storeRepository{db: db},
		brand:     &brandRepository{db: db},
		syncState: &syncStateRepository{db: db},
	}
}

// Migrate creates the schema if missing. It is safe to call repeatedly.
func (p *Postgres) Migrate(ctx context.Context) error {
	p.migrateOnce.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, operationTimeout)
		defer cancel()

		for _, stmt := range schema {
			if _, err := p.db.ExecContext(ctx, stmt); err != nil {
				p.migrateErr = goerr.Wrap(err, "failed to apply schema", goerr.V("statement", stmt))
				return
			}
		}
	})
	return p.migrateErr
}

func (p *Postgres) Message() interfaces.MessageRepository {
	return p.message
}

func (p *Postgres) Photo() interfaces.PhotoRepository {
	return p.photo
}

func (p *Postgres) Store() interfaces.StoreRepository {
	return p.store
}

func (p *Postgres) Brand() interfaces.BrandRepository {
	return p.brand
}

func (p *Postgres) SyncState() interfaces.SyncStateRepository {
	return p.syncState
}

func (p *Postgres) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, operationTimeout)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
