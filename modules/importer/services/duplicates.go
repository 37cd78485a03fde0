package services

import (
	"context"
	"errors"

	"github.com/akdemia/akdemia/pkg/schema"
)

// DuplicateDetector checks whether a coerced row collides with an existing
// record on the target's unique fields.
type DuplicateDetector struct{}

func NewDuplicateDetector() *DuplicateDetector {
	return &DuplicateDetector{}
}

// Detect returns the existing record the row duplicates, or ok=false when
// the row is new. Unique fields the row left blank do not participate in the
// filter; a row with every unique field blank is never a duplicate.
func (d *DuplicateDetector) Detect(
	ctx context.Context,
	target *schema.Target,
	values map[string]any,
) (schema.Ref, bool, error) {
	filter := make(map[string]any)
	for _, field := range target.UniqueFields() {
		v, present := values[field.Name]
		if !present || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		filter[field.Name] = v
	}
	if len(filter) == 0 {
		return schema.Ref{}, false, nil
	}
	ref, err := target.Store().FindWhere(ctx, filter)
	if err != nil {
		if errors.Is(err, schema.ErrNotFound) {
			return schema.Ref{}, false, nil
		}
		return schema.Ref{}, false, err
	}
	return ref, true, nil
}
