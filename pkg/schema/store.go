package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by store lookups that matched nothing.
	ErrNotFound = errors.New("entity not found")
	// ErrUnavailable marks the store itself as unreachable. Batch commits
	// escalate it to a session-level abort instead of failing every
	// remaining row identically.
	ErrUnavailable = errors.New("entity store unavailable")
	// ErrNoMerge is returned by a merge hook that found nothing to merge,
	// leaving the duplicate row skipped.
	ErrNoMerge = errors.New("nothing to merge")
)

// ValidationError carries entity-level validation failures raised by a store
// on insert, independent of per-field coercion.
type ValidationError struct {
	Entity string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed (%d fields)", e.Entity, len(e.Fields))
}

// Ref identifies an existing persisted entity.
type Ref struct {
	ID     uuid.UUID
	Entity string
}

// LookupCandidate is one value present in a lookup field of some record,
// collected for fuzzy matching.
type LookupCandidate struct {
	Field string
	Value string
}

// Store is the persistence surface the importer needs from a target entity.
// Implementations live with the owning module; the importer stays decoupled
// from the storage technology behind them.
type Store interface {
	// FindByField returns the record whose field equals value,
	// case-insensitively. ErrNotFound when nothing matches.
	FindByField(ctx context.Context, field, value string) (Ref, error)
	// LookupValues returns every value present across the given fields,
	// used as the fuzzy-match candidate set.
	LookupValues(ctx context.Context, fields []string) ([]LookupCandidate, error)
	// FindWhere returns a record matching every filter entry exactly.
	// ErrNotFound when nothing matches.
	FindWhere(ctx context.Context, filter map[string]any) (Ref, error)
	// Insert validates and persists a new record built from the coerced
	// values. Entity-level failures surface as *ValidationError.
	Insert(ctx context.Context, values map[string]any) (Ref, error)
}

// MergeHook runs when a duplicate is detected instead of skipping the row.
// It may create or update a dependent record associating the existing entity
// with the row's remaining data. A nil error upgrades the outcome from
// skipped to imported.
type MergeHook func(ctx context.Context, existing Ref, values map[string]any) error
