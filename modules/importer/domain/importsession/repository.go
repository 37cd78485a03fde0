package importsession

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists sessions between the two wizard interactions. The
// store is out-of-process: the workflow must survive restarts and run on
// stateless workers.
type Repository interface {
	// Save stores the session under its token, refreshing the expiry.
	Save(ctx context.Context, session *Session) error
	// Get returns the session for the token; ErrNotFound for unknown or
	// already-discarded tokens, ErrExpired past the expiry.
	Get(ctx context.Context, token uuid.UUID) (*Session, error)
	// Delete discards the session. Deleting an unknown token is a no-op.
	Delete(ctx context.Context, token uuid.UUID) error
}
