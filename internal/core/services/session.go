package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionFactory builds the dashboard service for one session id: its
// credential store (keyed by the id when backed by Redis), the refresh
// coordinator and the API client.
type SessionFactory func(sessionID string) *Dashboard

// SessionRegistry hands out one Dashboard per staff session. Sessions are
// rebuilt lazily for ids the registry has not seen, so a Redis-backed
// credential store survives a restart of this service.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Dashboard
	build    SessionFactory
	logger   *zap.Logger
}

func NewSessionRegistry(build SessionFactory, logger *zap.Logger) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Dashboard),
		build:    build,
		logger:   logger,
	}
}

// Create starts a fresh session with a random id.
func (r *SessionRegistry) Create() (string, *Dashboard) {
	id := uuid.NewString()
	dash := r.build(id)

	r.mu.Lock()
	r.sessions[id] = dash
	r.mu.Unlock()

	return id, dash
}

// Resolve returns the session's dashboard, building it on first sight.
// An unknown id with no stored credentials simply fails its first upstream
// call with a session-expired error, which sends the caller back to login.
func (r *SessionRegistry) Resolve(id string) *Dashboard {
	r.mu.Lock()
	defer r.mu.Unlock()

	if dash, ok := r.sessions[id]; ok {
		return dash
	}
	dash := r.build(id)
	r.sessions[id] = dash
	return dash
}

// Drop clears the session's credentials and forgets it. Used on logout and
// on terminal auth failure.
func (r *SessionRegistry) Drop(ctx context.Context, id string) {
	r.mu.Lock()
	dash, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return
	}
	if err := dash.Logout(ctx); err != nil {
		r.logger.Warn("failed to clear session credentials", zap.Error(err))
	}
}
