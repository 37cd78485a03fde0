// Package schema describes importable entities: an allow-listed registry of
// targets, each with an ordered field descriptor list and a backing store.
package schema

import (
	"fmt"
	"strings"
)

// Kind discriminates how a field coerces and resolves. Exactly one of the
// kind-specific descriptor members is meaningful per kind.
type Kind string

const (
	KindText     Kind = "text"
	KindInteger  Kind = "integer"
	KindDecimal  Kind = "decimal"
	KindChoice   Kind = "choice"
	KindRelation Kind = "relation"
)

// Relation points a field at another registered entity. Lookup fields are
// tried in order when resolving a raw value to an existing record.
type Relation struct {
	Target       string
	LookupFields []string
}

// FieldDescriptor describes one importable field of a target entity.
// Surrogate keys and audit columns are never declared here; a target's
// descriptor list is exactly the set of fields an import may fill.
type FieldDescriptor struct {
	Name       string
	Kind       Kind
	Required   bool
	Unique     bool
	AllowBlank bool

	// Precision applies to KindDecimal: fractional digits kept (truncated).
	Precision int32
	// Choices applies to KindChoice: the closed set of allowed values.
	Choices []string
	// Relation applies to KindRelation.
	Relation *Relation
}

func (f FieldDescriptor) validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("field descriptor without a name")
	}
	switch f.Kind {
	case KindText, KindInteger:
	case KindDecimal:
		if f.Precision < 0 {
			return fmt.Errorf("field %q: negative decimal precision", f.Name)
		}
	case KindChoice:
		if len(f.Choices) == 0 {
			return fmt.Errorf("field %q: choice kind requires at least one allowed value", f.Name)
		}
	case KindRelation:
		if f.Relation == nil || f.Relation.Target == "" || len(f.Relation.LookupFields) == 0 {
			return fmt.Errorf("field %q: relation kind requires a target and lookup fields", f.Name)
		}
	default:
		return fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
	}
	return nil
}
