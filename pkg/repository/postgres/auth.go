package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/auth"
)

func (p *Postgres) PutToken(ctx context.Context, token *auth.Token) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO tokens (id, secret, sub, email, name, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET secret = EXCLUDED.secret, sub = EXCLUDED.sub,
			email = EXCLUDED.email, name = EXCLUDED.name, expires_at = EXCLUDED.expires_at`,
		token.ID.String(), token.Secret.String(), token.Sub, token.Email, token.Name, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return goerr.Wrap(err, "failed to put token")
	}
	return nil
}

func (p *Postgres) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid token ID")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var token auth.Token
	var id, secret string
	err := p.db.QueryRowContext(ctx, `
		SELECT id, secret, sub, email, name, expires_at, created_at FROM tokens WHERE id = $1`,
		tokenID.String()).Scan(&id, &secret, &token.Sub, &token.Email, &token.Name, &token.ExpiresAt, &token.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "token not found", goerr.V("token_id", tokenID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get token")
	}
	token.ID = auth.TokenID(id)
	token.Secret = auth.TokenSecret(secret)
	return &token, nil
}

func (p *Postgres) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	if err := tokenID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token ID")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := p.db.ExecContext(ctx, `DELETE FROM tokens WHERE id = $1`, tokenID.String())
	if err != nil {
		return goerr.Wrap(err, "failed to delete token")
	}
	return expectOneRow(res, "token", tokenID.String())
}
