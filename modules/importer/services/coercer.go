package services

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/akdemia/akdemia/pkg/schema"
)

// FieldCoercer converts raw cell strings into typed values per the target's
// field descriptors. Every failure is a *FieldError carrying the failure
// classification for the row report.
type FieldCoercer struct {
	resolver *RelationResolver
}

func NewFieldCoercer(resolver *RelationResolver) *FieldCoercer {
	return &FieldCoercer{resolver: resolver}
}

// Coerce returns the typed value for one cell. Blank cells on required
// fields fail; blank cells on optional fields yield the zero value for the
// kind ("" for text, nil otherwise).
func (c *FieldCoercer) Coerce(
	ctx context.Context,
	field schema.FieldDescriptor,
	raw string,
) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if field.Required && !field.AllowBlank {
			return nil, missingRequired(field.Name)
		}
		if field.Kind == schema.KindText {
			return "", nil
		}
		return nil, nil
	}

	switch field.Kind {
	case schema.KindText:
		return trimmed, nil
	case schema.KindInteger:
		return coerceInteger(field, trimmed, raw)
	case schema.KindDecimal:
		return coerceDecimal(field, trimmed, raw)
	case schema.KindChoice:
		return coerceChoice(field, trimmed, raw)
	case schema.KindRelation:
		ref, err := c.resolver.Resolve(ctx, field, trimmed)
		if err != nil {
			return nil, err
		}
		return ref, nil
	default:
		return nil, typeConversion(field.Name, raw, errUnknownKind(field.Kind))
	}
}

// Spreadsheets store numeric cells as floats, so "3" often arrives as
// "3.0". Parse as float and truncate toward zero.
func coerceInteger(field schema.FieldDescriptor, trimmed, raw string) (any, error) {
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, typeConversion(field.Name, raw, err)
	}
	return int64(math.Trunc(f)), nil
}

func coerceDecimal(field schema.FieldDescriptor, trimmed, raw string) (any, error) {
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil, typeConversion(field.Name, raw, err)
	}
	// Excess fractional digits are dropped, never rounded.
	return d.Truncate(field.Precision), nil
}

func coerceChoice(field schema.FieldDescriptor, trimmed, raw string) (any, error) {
	for _, choice := range field.Choices {
		if strings.EqualFold(trimmed, choice) {
			return choice, nil
		}
	}
	return nil, invalidChoice(field.Name, raw)
}

type errUnknownKind schema.Kind

func (e errUnknownKind) Error() string {
	return "unknown field kind " + strconv.Quote(string(e))
}
