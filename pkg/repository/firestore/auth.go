package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/auth"
)

// session returns the document of one admin session, keyed by token ID
func (r *Firestore) session(id auth.TokenID) *firestore.DocumentRef {
	return r.client.Collection(r.names.name(SessionsCollection)).Doc(id.String())
}

func (r *Firestore) PutToken(ctx context.Context, token *auth.Token) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid session token")
	}
	if _, err := r.session(token.ID).Set(ctx, token); err != nil {
		return goerr.Wrap(err, "failed to save session", goerr.V("token_id", token.ID))
	}
	return nil
}

func (r *Firestore) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid session token ID")
	}

	doc, err := r.session(tokenID).Get(ctx)
	if isNotFound(err) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "session not found", goerr.V("token_id", tokenID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("token_id", tokenID))
	}

	token := &auth.Token{}
	if err := doc.DataTo(token); err != nil {
		return nil, goerr.Wrap(err, "failed to decode session", goerr.V("token_id", tokenID))
	}
	return token, nil
}

func (r *Firestore) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	if err := tokenID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid session token ID")
	}

	_, err := r.session(tokenID).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return goerr.Wrap(interfaces.ErrNotFound, "session not found", goerr.V("token_id", tokenID))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to delete session", goerr.V("token_id", tokenID))
	}
	return nil
}
