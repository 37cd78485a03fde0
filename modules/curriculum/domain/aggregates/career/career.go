package career

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("career not found")
	ErrDuplicateCode = errors.New("career code already exists")
)

// Career is a program of study (carrera) subjects belong to.
type Career struct {
	id        uuid.UUID
	code      string
	name      string
	createdAt time.Time
	updatedAt time.Time
}

func New(code, name string) *Career {
	now := time.Now().UTC()
	return &Career{
		id:        uuid.New(),
		code:      code,
		name:      name,
		createdAt: now,
		updatedAt: now,
	}
}

func Hydrate(id uuid.UUID, code, name string, createdAt, updatedAt time.Time) *Career {
	return &Career{
		id:        id,
		code:      code,
		name:      name,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (c *Career) ID() uuid.UUID { return c.id }
func (c *Career) Code() string { return c.code }
func (c *Career) Name() string { return c.name }
func (c *Career) CreatedAt() time.Time { return c.createdAt }
func (c *Career) UpdatedAt() time.Time { return c.updatedAt }

func (c *Career) Rename(name string) {
	c.name = name
	c.updatedAt = time.Now().UTC()
}
