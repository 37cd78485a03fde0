package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akdemia/akdemia/modules/curriculum/domain/aggregates/career"
	"github.com/akdemia/akdemia/modules/curriculum/domain/aggregates/subject"
)

type careerRow struct {
	ID        uuid.UUID
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type subjectRow struct {
	ID        uuid.UUID
	Code      string
	Name      string
	Credits   decimal.Decimal
	Hours     int64
	Status    string
	CareerID  uuid.NullUUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func toDomainCareer(r careerRow) *career.Career {
	return career.Hydrate(r.ID, r.Code, r.Name, r.CreatedAt, r.UpdatedAt)
}

func toCareerRow(c *career.Career) careerRow {
	return careerRow{
		ID:        c.ID(),
		Code:      c.Code(),
		Name:      c.Name(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

func toDomainSubject(r subjectRow) *subject.Subject {
	return subject.Hydrate(
		r.ID,
		r.Code,
		r.Name,
		r.Credits,
		r.Hours,
		subject.Status(r.Status),
		r.CareerID,
		r.CreatedAt,
		r.UpdatedAt,
	)
}

func toSubjectRow(s *subject.Subject) subjectRow {
	return subjectRow{
		ID:        s.ID(),
		Code:      s.Code(),
		Name:      s.Name(),
		Credits:   s.Credits(),
		Hours:     s.Hours(),
		Status:    string(s.Status()),
		CareerID:  s.CareerID(),
		CreatedAt: s.CreatedAt(),
		UpdatedAt: s.UpdatedAt(),
	}
}
