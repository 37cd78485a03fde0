package subject

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("subject not found")
	ErrDuplicateCode = errors.New("subject code already exists")
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Statuses is the closed set of allowed subject states.
var Statuses = []string{string(StatusActive), string(StatusInactive)}

// Subject is a course unit (materia). Credits keep two fractional digits;
// hours is the weekly contact load.
type Subject struct {
	id        uuid.UUID
	code      string
	name      string
	credits   decimal.Decimal
	hours     int64
	status    Status
	careerID  uuid.NullUUID
	createdAt time.Time
	updatedAt time.Time
}

func New(code, name string, credits decimal.Decimal, hours int64, status Status) *Subject {
	now := time.Now().UTC()
	return &Subject{
		id:        uuid.New(),
		code:      code,
		name:      name,
		credits:   credits.Truncate(2),
		hours:     hours,
		status:    status,
		createdAt: now,
		updatedAt: now,
	}
}

func Hydrate(
	id uuid.UUID,
	code, name string,
	credits decimal.Decimal,
	hours int64,
	status Status,
	careerID uuid.NullUUID,
	createdAt, updatedAt time.Time,
) *Subject {
	return &Subject{
		id:        id,
		code:      code,
		name:      name,
		credits:   credits,
		hours:     hours,
		status:    status,
		careerID:  careerID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (s *Subject) ID() uuid.UUID { return s.id }
func (s *Subject) Code() string { return s.code }
func (s *Subject) Name() string { return s.name }
func (s *Subject) Credits() decimal.Decimal { return s.credits }
func (s *Subject) Hours() int64 { return s.hours }
func (s *Subject) Status() Status { return s.status }
func (s *Subject) CareerID() uuid.NullUUID { return s.careerID }
func (s *Subject) CreatedAt() time.Time { return s.createdAt }
func (s *Subject) UpdatedAt() time.Time { return s.updatedAt }

func (s *Subject) AssignCareer(careerID uuid.UUID) {
	s.careerID = uuid.NullUUID{UUID: careerID, Valid: true}
	s.updatedAt = time.Now().UTC()
}

func (s *Subject) SetStatus(status Status) {
	s.status = status
	s.updatedAt = time.Now().UTC()
}
