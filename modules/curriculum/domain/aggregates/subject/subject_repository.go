package subject

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, data *Subject) error
	Update(ctx context.Context, data *Subject) error
	GetByID(ctx context.Context, id uuid.UUID) (*Subject, error)
	// GetByCode matches case-insensitively.
	GetByCode(ctx context.Context, code string) (*Subject, error)
	GetAll(ctx context.Context) ([]*Subject, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
