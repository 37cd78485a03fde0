package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akdemia/akdemia/modules/importer/domain/importreport"
	"github.com/akdemia/akdemia/modules/importer/services"
	"github.com/akdemia/akdemia/pkg/schema"
)

func newCoercer(t *testing.T) (*services.FieldCoercer, *fixture) {
	t.Helper()
	f := newFixture(t)
	resolver := services.NewRelationResolver(f.registry, 0.85)
	return services.NewFieldCoercer(resolver), f
}

func field(t *testing.T, f *fixture, name string) schema.FieldDescriptor {
	t.Helper()
	target, err := f.registry.Resolve("curriculum.subject")
	require.NoError(t, err)
	fd, ok := target.Field(name)
	require.True(t, ok)
	return fd
}

func TestFieldCoercer_Decimal_TruncatesNeverRounds(t *testing.T) {
	coercer, f := newCoercer(t)
	credits := field(t, f, "credits")

	for _, tt := range []struct {
		raw  string
		want string
	}{
		{"9.999", "9.99"},
		{"10.005", "10"},
		{"3.5", "3.5"},
		{"4", "4"},
	} {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := coercer.Coerce(context.Background(), credits, tt.raw)
			require.NoError(t, err)
			d, ok := v.(decimal.Decimal)
			require.True(t, ok)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestFieldCoercer_Integer_TruncatesSpreadsheetFloats(t *testing.T) {
	coercer, f := newCoercer(t)
	hours := field(t, f, "hours")

	v, err := coercer.Coerce(context.Background(), hours, "40.0")
	require.NoError(t, err)
	assert.Equal(t, int64(40), v)

	_, err = coercer.Coerce(context.Background(), hours, "forty")
	var fieldErr *services.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, importreport.FailureTypeConversion, fieldErr.Kind)
	assert.Equal(t, "forty", fieldErr.Raw)
}

func TestFieldCoercer_Choice_CaseAndWhitespaceInsensitive(t *testing.T) {
	coercer, f := newCoercer(t)
	status := field(t, f, "status")

	v, err := coercer.Coerce(context.Background(), status, "  active ")
	require.NoError(t, err)
	assert.Equal(t, "Active", v)

	_, err = coercer.Coerce(context.Background(), status, "Activee")
	var fieldErr *services.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, importreport.FailureInvalidChoice, fieldErr.Kind)
	assert.Equal(t, "Activee", fieldErr.Raw)
}

func TestFieldCoercer_Blank(t *testing.T) {
	coercer, f := newCoercer(t)

	_, err := coercer.Coerce(context.Background(), field(t, f, "code"), "   ")
	var fieldErr *services.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, importreport.FailureMissingRequired, fieldErr.Kind)

	v, err := coercer.Coerce(context.Background(), field(t, f, "credits"), "")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = coercer.Coerce(context.Background(), field(t, f, "name"), "")
	require.Error(t, err)

	optional := schema.FieldDescriptor{Name: "notes", Kind: schema.KindText}
	v, err = coercer.Coerce(context.Background(), optional, "")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestFieldCoercer_Text_Trims(t *testing.T) {
	coercer, f := newCoercer(t)
	v, err := coercer.Coerce(context.Background(), field(t, f, "name"), "  Linear Algebra ")
	require.NoError(t, err)
	assert.Equal(t, "Linear Algebra", v)
}
