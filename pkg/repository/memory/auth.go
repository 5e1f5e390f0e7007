package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/auth"
)

// sessionStore keeps admin sessions. Expired sessions are dropped whenever a new one is stored.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[auth.TokenID]auth.Token
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[auth.TokenID]auth.Token),
	}
}

func (s *sessionStore) prune(now time.Time) {
	for id, t := range s.sessions {
		if !now.Before(t.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}

func (m *Memory) PutToken(ctx context.Context, token *auth.Token) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid session token")
	}

	m.sessions.mu.Lock()
	defer m.sessions.mu.Unlock()

	m.sessions.prune(time.Now())
	m.sessions.sessions[token.ID] = *token
	return nil
}

func (m *Memory) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid session token ID")
	}

	m.sessions.mu.Lock()
	defer m.sessions.mu.Unlock()

	t, ok := m.sessions.sessions[tokenID]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "session not found", goerr.V("token_id", tokenID))
	}
	return &t, nil
}

func (m *Memory) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	if err := tokenID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid session token ID")
	}

	m.sessions.mu.Lock()
	defer m.sessions.mu.Unlock()

	if _, ok := m.sessions.sessions[tokenID]; !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "session not found", goerr.V("token_id", tokenID))
	}
	delete(m.sessions.sessions, tokenID)
	return nil
}
