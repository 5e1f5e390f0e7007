package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/repository/firestore"
	"github.com/secmon-lab/shelfcheck/pkg/repository/memory"
	"github.com/secmon-lab/shelfcheck/pkg/repository/postgres"
)

type repoFactory func(t *testing.T) interfaces.Repository

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

// withSearchPath appends a search_path run-time parameter to a URL or key=value DSN
func withSearchPath(dsn, schema string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return dsn + " search_path=" + schema
}

func newPostgresRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := sql.Open("postgres", dsn)
	gt.NoError(t, err).Required()
	_, err = admin.ExecContext(ctx, "CREATE SCHEMA "+schema)
	gt.NoError(t, err).Required()

	repo, err := postgres.New(ctx, withSearchPath(dsn, schema), postgres.WithAutoMigrate())
	gt.NoError(t, err).Required()

	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
		_, err := admin.ExecContext(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		gt.NoError(t, err)
		gt.NoError(t, admin.Close())
	})
	return repo
}

// runAllBackends runs the suite against every backend. Remote backends skip without credentials.
func runAllBackends(t *testing.T, suite func(t *testing.T, newRepo repoFactory)) {
	t.Run("memory", func(t *testing.T) { suite(t, newMemoryRepository) })
	t.Run("firestore", func(t *testing.T) { suite(t, newFirestoreRepository) })
	t.Run("postgres", func(t *testing.T) { suite(t, newPostgresRepository) })
}

// uniqueChannel returns a channel ID that does not collide across test runs on shared backends
func uniqueChannel() string {
	return "C" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
