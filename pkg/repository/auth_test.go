package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/auth"
)

func runAuthRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Run("PutToken and GetToken", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		token := auth.NewToken("admin@example.com", "admin@example.com", "Admin")
		gt.NoError(t, repo.PutToken(ctx, token)).Required()

		got, err := repo.GetToken(ctx, token.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(token.ID)
		gt.Value(t, got.Secret).Equal(token.Secret)
		gt.Value(t, got.Sub).Equal(token.Sub)
		gt.Value(t, got.Email).Equal(token.Email)
		gt.Value(t, got.Name).Equal(token.Name)

		// tolerance for backend timestamp precision
		diff := got.ExpiresAt.Sub(token.ExpiresAt)
		gt.Bool(t, diff < time.Second && diff > -time.Second).True()
	})

	t.Run("GetToken not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetToken(context.Background(), auth.TokenID(uuid.NewString()))
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("invalid token ID", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetToken(context.Background(), auth.TokenID("bad"))
		gt.Error(t, err).Is(auth.ErrInvalidTokenID)
	})

	t.Run("DeleteToken", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		token := auth.NewToken("admin@example.com", "admin@example.com", "Admin")
		gt.NoError(t, repo.PutToken(ctx, token)).Required()
		gt.NoError(t, repo.DeleteToken(ctx, token.ID)).Required()

		_, err := repo.GetToken(ctx, token.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
		gt.Error(t, repo.DeleteToken(ctx, token.ID)).Is(interfaces.ErrNotFound)
	})
}

func TestAuthRepository(t *testing.T) {
	runAllBackends(t, runAuthRepositoryTest)
}
