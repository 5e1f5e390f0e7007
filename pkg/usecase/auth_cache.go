package usecase

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/auth"
)

const defaultAuthCacheTTL = 5 * time.Minute

type cachedToken struct {
	token     *auth.Token
	expiresAt time.Time
}

type authCache struct {
	ttl   time.Duration
	cache sync.Map
}

func newAuthCache(ttl time.Duration) *authCache {
	return &authCache{ttl: ttl}
}

func (c *authCache) get(tokenID auth.TokenID) (*auth.Token, bool) {
	val, ok := c.cache.Load(tokenID)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedToken)
	if !time.Now().Before(cached.expiresAt) {
		c.cache.Delete(tokenID)
		return nil, false
	}

	return cached.token, true
}

// set caches the token until the cache TTL or the token expiry, whichever comes first
func (c *authCache) set(token *auth.Token) {
	if c.ttl <= 0 {
		return
	}
	expiresAt := time.Now().Add(c.ttl)
	if token.ExpiresAt.Before(expiresAt) {
		expiresAt = token.ExpiresAt
	}
	c.cache.Store(token.ID, &cachedToken{token: token, expiresAt: expiresAt})
}

func (c *authCache) remove(tokenID auth.TokenID) {
	c.cache.Delete(tokenID)
}

func secretMatches(token *auth.Token, secret auth.TokenSecret) bool {
	return subtle.ConstantTimeCompare([]byte(token.Secret), []byte(secret)) == 1
}

func (uc *AuthUseCase) validateTokenWithCache(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	if token, ok := uc.cache.get(tokenID); ok {
		if !secretMatches(token, tokenSecret) {
			return nil, goerr.Wrap(ErrInvalidTokenSecret, "secret mismatch", goerr.V("token_id", tokenID))
		}
		return token, nil
	}

	token, err := uc.repo.GetToken(ctx, tokenID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get token from repository")
	}

	if !secretMatches(token, tokenSecret) {
		return nil, goerr.Wrap(ErrInvalidTokenSecret, "secret mismatch", goerr.V("token_id", tokenID))
	}

	if token.IsExpired() {
		if err := uc.repo.DeleteToken(ctx, tokenID); err != nil {
			return nil, goerr.Wrap(err, "failed to delete expired token", goerr.V("token_id", tokenID))
		}
		return nil, goerr.Wrap(ErrTokenExpired, "token expired", goerr.V("token_id", tokenID))
	}

	uc.cache.set(token)
	return token, nil
}
