package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akdemia/akdemia/modules/importer/domain/importsession"
)

// MemorySessionRepository keeps sessions in process memory. Used by tests
// and the single-process CLI, where an external store buys nothing.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]sessionModel
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[uuid.UUID]sessionModel)}
}

func (r *MemorySessionRepository) Save(_ context.Context, session *importsession.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token()] = toModel(session)
	return nil
}

func (r *MemorySessionRepository) Get(_ context.Context, token uuid.UUID) (*importsession.Session, error) {
	r.mu.RLock()
	m, ok := r.sessions[token]
	r.mu.RUnlock()
	if !ok {
		return nil, importsession.ErrNotFound
	}
	session, err := toDomain(m)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now().UTC()) {
		return nil, importsession.ErrExpired
	}
	return session, nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, token uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}
