package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akdemia/akdemia/pkg/schema"
)

// memStore is an in-memory schema.Store for exercising the import pipeline
// without a database.
type memStore struct {
	entity string

	mu      sync.Mutex
	records []map[string]any

	// failAfter, when >= 0, makes every write past that many succeed-calls
	// return ErrUnavailable, simulating a store outage mid-batch.
	failAfter int
	writes    int

	// validate, when set, runs on every insert before persisting.
	validate func(values map[string]any) error
}

func newMemStore(entity string, records ...map[string]any) *memStore {
	return &memStore{entity: entity, records: records, failAfter: -1}
}

func (s *memStore) FindByField(_ context.Context, field, value string) (schema.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		v, ok := rec[field].(string)
		if ok && strings.EqualFold(v, value) {
			return s.ref(rec), nil
		}
	}
	return schema.Ref{}, schema.ErrNotFound
}

func (s *memStore) LookupValues(_ context.Context, fields []string) ([]schema.LookupCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []schema.LookupCandidate
	for _, rec := range s.records {
		for _, field := range fields {
			if v, ok := rec[field].(string); ok && v != "" {
				out = append(out, schema.LookupCandidate{Field: field, Value: v})
			}
		}
	}
	return out, nil
}

func (s *memStore) FindWhere(_ context.Context, filter map[string]any) (schema.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
outer:
	for _, rec := range s.records {
		for field, want := range filter {
			if !valuesEqual(rec[field], want) {
				continue outer
			}
		}
		return s.ref(rec), nil
	}
	return schema.Ref{}, schema.ErrNotFound
}

func (s *memStore) Insert(_ context.Context, values map[string]any) (schema.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAfter >= 0 && s.writes >= s.failAfter {
		return schema.Ref{}, schema.ErrUnavailable
	}
	if s.validate != nil {
		if err := s.validate(values); err != nil {
			return schema.Ref{}, err
		}
	}
	rec := make(map[string]any, len(values)+1)
	for k, v := range values {
		rec[k] = v
	}
	rec["id"] = uuid.New()
	s.records = append(s.records, rec)
	s.writes++
	return s.ref(rec), nil
}

func (s *memStore) ref(rec map[string]any) schema.Ref {
	id, _ := rec["id"].(uuid.UUID)
	return schema.Ref{ID: id, Entity: s.entity}
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func valuesEqual(a, b any) bool {
	if da, ok := a.(decimal.Decimal); ok {
		db, ok := b.(decimal.Decimal)
		return ok && da.Equal(db)
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && strings.EqualFold(sa, sb)
	}
	return a == b
}

func subjectFields() []schema.FieldDescriptor {
	return []schema.FieldDescriptor{
		{Name: "code", Kind: schema.KindText, Required: true, Unique: true},
		{Name: "name", Kind: schema.KindText, Required: true},
		{Name: "credits", Kind: schema.KindDecimal, Precision: 2},
		{Name: "hours", Kind: schema.KindInteger},
		{Name: "status", Kind: schema.KindChoice, Choices: []string{"Active", "Inactive"}},
		{Name: "career", Kind: schema.KindRelation, Relation: &schema.Relation{
			Target:       "curriculum.career",
			LookupFields: []string{"code", "name"},
		}},
	}
}

func careerFields() []schema.FieldDescriptor {
	return []schema.FieldDescriptor{
		{Name: "code", Kind: schema.KindText, Required: true, Unique: true},
		{Name: "name", Kind: schema.KindText, Required: true},
	}
}

type fixture struct {
	registry *schema.Registry
	subjects *memStore
	careers  *memStore
}

func newFixture(t *testing.T, opts ...schema.TargetOption) *fixture {
	t.Helper()
	careerID := uuid.New()
	f := &fixture{
		registry: schema.NewRegistry(),
		subjects: newMemStore("curriculum.subject"),
		careers: newMemStore("curriculum.career",
			map[string]any{"id": careerID, "code": "ENG", "name": "Engineering"},
			map[string]any{"id": uuid.New(), "code": "MATH", "name": "Mathematics"},
		),
	}
	subject, err := schema.NewTarget("curriculum.subject", subjectFields(), f.subjects, opts...)
	if err != nil {
		t.Fatal(err)
	}
	career, err := schema.NewTarget("curriculum.career", careerFields(), f.careers)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.registry.Register(subject, career); err != nil {
		t.Fatal(err)
	}
	return f
}
