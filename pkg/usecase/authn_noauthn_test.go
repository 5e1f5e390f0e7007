package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/auth"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
)

func TestNoAuthnUseCase(t *testing.T) {
	email := "test@example.com"
	name := "Test User"

	uc := usecase.NewNoAuthnUseCase(email, name)

	t.Run("ValidateToken returns specified user token", func(t *testing.T) {
		ctx := context.Background()
		token, err := uc.ValidateToken(ctx, "", "")
		gt.NoError(t, err).Required()

		gt.Value(t, token.Sub).Equal(email)
		gt.Value(t, token.Email).Equal(email)
		gt.Value(t, token.Name).Equal(name)
	})

	t.Run("Login accepts any credentials", func(t *testing.T) {
		ctx := context.Background()
		token, err := uc.Login(ctx, "other@example.com", "")
		gt.NoError(t, err).Required()
		gt.Value(t, token.Email).Equal(email)
	})

	t.Run("IsNoAuthn returns true", func(t *testing.T) {
		gt.Bool(t, uc.IsNoAuthn()).True()
	})

	t.Run("Logout does nothing", func(t *testing.T) {
		ctx := context.Background()
		err := uc.Logout(ctx, "token-id")
		gt.NoError(t, err).Required()
	})

	t.Run("same reviewer on every request", func(t *testing.T) {
		ctx := context.Background()
		a, err := uc.ValidateToken(ctx, "", "")
		gt.NoError(t, err).Required()
		b, err := uc.Login(ctx, "x", "y")
		gt.NoError(t, err).Required()
		gt.Value(t, a.ID).Equal(b.ID)
	})

	t.Run("name defaults to email local part", func(t *testing.T) {
		token, err := usecase.NewNoAuthnUseCase("dev@example.com", "").ValidateToken(context.Background(), "", "")
		gt.NoError(t, err).Required()
		gt.Value(t, token.Name).Equal("dev")
	})

	t.Run("anonymous without email", func(t *testing.T) {
		token, err := usecase.NewNoAuthnUseCase("", "").ValidateToken(context.Background(), "", "")
		gt.NoError(t, err).Required()
		gt.Value(t, token.Sub).Equal(auth.AnonymousSub)
	})
}

func TestNoAuthnUseCaseImplementsInterface(t *testing.T) {
	var _ usecase.AuthUseCaseInterface = usecase.NewNoAuthnUseCase("email", "name")
	var _ usecase.AuthUseCaseInterface = &usecase.AuthUseCase{}
}
