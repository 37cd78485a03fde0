package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/akdemia/akdemia/pkg/schema"
)

// RelationResolver turns a raw cell value into a reference to an existing
// record of the related target. It tries an exact case-insensitive match on
// each lookup field in order, then falls back to fuzzy matching over every
// value present in those fields.
type RelationResolver struct {
	registry  *schema.Registry
	threshold float64
}

func NewRelationResolver(registry *schema.Registry, threshold float64) *RelationResolver {
	return &RelationResolver{registry: registry, threshold: threshold}
}

func (r *RelationResolver) Resolve(
	ctx context.Context,
	field schema.FieldDescriptor,
	raw string,
) (schema.Ref, error) {
	rel := field.Relation
	target, err := r.registry.Resolve(rel.Target)
	if err != nil {
		return schema.Ref{}, err
	}
	store := target.Store()
	value := strings.TrimSpace(raw)

	for _, lookup := range rel.LookupFields {
		ref, err := store.FindByField(ctx, lookup, value)
		if err == nil {
			return ref, nil
		}
		if !errors.Is(err, schema.ErrNotFound) {
			return schema.Ref{}, err
		}
	}

	candidates, err := store.LookupValues(ctx, rel.LookupFields)
	if err != nil {
		return schema.Ref{}, err
	}
	best, ok := closestMatch(value, candidates, r.threshold)
	if !ok {
		return schema.Ref{}, foreignKeyNotFound(field.Name, raw, rel.Target)
	}
	// The fuzzy winner is a literal stored value, so the exact lookup on it
	// is authoritative and returns the owning record.
	ref, err := store.FindByField(ctx, best.Field, best.Value)
	if err != nil {
		if errors.Is(err, schema.ErrNotFound) {
			return schema.Ref{}, foreignKeyNotFound(field.Name, raw, rel.Target)
		}
		return schema.Ref{}, err
	}
	return ref, nil
}

// closestMatch returns the candidate with the highest similarity ratio to
// value, if any reaches the threshold. Comparison is case-insensitive.
func closestMatch(value string, candidates []schema.LookupCandidate, threshold float64) (schema.LookupCandidate, bool) {
	var (
		best  schema.LookupCandidate
		score float64
		found bool
	)
	for _, c := range candidates {
		s := similarity(value, c.Value)
		if s >= threshold && (!found || s > score) {
			best, score, found = c, s, true
		}
	}
	return best, found
}

func similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 0
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
