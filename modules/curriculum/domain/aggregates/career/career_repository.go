package career

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, data *Career) error
	Update(ctx context.Context, data *Career) error
	GetByID(ctx context.Context, id uuid.UUID) (*Career, error)
	// GetByCode matches case-insensitively.
	GetByCode(ctx context.Context, code string) (*Career, error)
	GetAll(ctx context.Context) ([]*Career, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// AttachSubject associates a subject with the career. Attaching an
	// already-attached subject is a no-op.
	AttachSubject(ctx context.Context, careerID, subjectID uuid.UUID) error
}
