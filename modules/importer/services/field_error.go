package services

import (
	"fmt"

	"github.com/akdemia/akdemia/modules/importer/domain/importreport"
)

// FieldError is a row-level failure tied to one field. It is data, not a
// thrown fault: the batch loop records it and moves on.
type FieldError struct {
	Field string
	Kind  importreport.FailureKind
	// Raw preserves the offending cell value for diagnostics.
	Raw    string
	Detail string
}

func (e *FieldError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("field %q: %s: %s", e.Field, e.Kind, e.Detail)
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Kind)
}

func missingRequired(field string) *FieldError {
	return &FieldError{Field: field, Kind: importreport.FailureMissingRequired}
}

func invalidChoice(field, raw string) *FieldError {
	return &FieldError{
		Field:  field,
		Kind:   importreport.FailureInvalidChoice,
		Raw:    raw,
		Detail: fmt.Sprintf("%q is not an allowed value", raw),
	}
}

func typeConversion(field, raw string, err error) *FieldError {
	return &FieldError{
		Field:  field,
		Kind:   importreport.FailureTypeConversion,
		Raw:    raw,
		Detail: fmt.Sprintf("cannot convert %q: %v", raw, err),
	}
}

func foreignKeyNotFound(field, raw, target string) *FieldError {
	return &FieldError{
		Field:  field,
		Kind:   importreport.FailureForeignKey,
		Raw:    raw,
		Detail: fmt.Sprintf("no %s matches %q", target, raw),
	}
}
