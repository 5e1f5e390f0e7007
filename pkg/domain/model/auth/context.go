package auth

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

type ctxTokenKey struct{}

// ErrNoTokenInContext is returned when the request carries no authenticated token
var ErrNoTokenInContext = goerr.New("no token in context")

// AnonymousSub is the subject of requests served without authentication
const AnonymousSub = "anonymous"

// ContextWithToken attaches the authenticated token to ctx
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext returns the token attached by ContextWithToken
func TokenFromContext(ctx context.Context) (*Token, error) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	if !ok || token == nil {
		return nil, ErrNoTokenInContext
	}
	return token, nil
}

// ReviewerFromContext returns the email (or subject) of the authenticated user, "" if none
func ReviewerFromContext(ctx context.Context) string {
	token, err := TokenFromContext(ctx)
	if err != nil {
		return ""
	}
	if token.Email != "" {
		return token.Email
	}
	return token.Sub
}

// NewAnonymousUser returns the token used when authentication is disabled
func NewAnonymousUser() *Token {
	return NewToken(AnonymousSub, "", "Anonymous")
}
