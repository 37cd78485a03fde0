package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akdemia/akdemia/pkg/schema"
)

type nopStore struct{}

func (nopStore) FindByField(ctx context.Context, field, value string) (schema.Ref, error) {
	return schema.Ref{}, schema.ErrNotFound
}

func (nopStore) LookupValues(ctx context.Context, fields []string) ([]schema.LookupCandidate, error) {
	return nil, nil
}

func (nopStore) FindWhere(ctx context.Context, filter map[string]any) (schema.Ref, error) {
	return schema.Ref{}, schema.ErrNotFound
}

func (nopStore) Insert(ctx context.Context, values map[string]any) (schema.Ref, error) {
	return schema.Ref{}, nil
}

func subjectFields() []schema.FieldDescriptor {
	return []schema.FieldDescriptor{
		{Name: "code", Kind: schema.KindText, Required: true, Unique: true},
		{Name: "name", Kind: schema.KindText, Required: true},
		{Name: "credits", Kind: schema.KindDecimal, Precision: 2},
		{Name: "status", Kind: schema.KindChoice, Choices: []string{"active", "inactive"}},
		{Name: "career", Kind: schema.KindRelation, Relation: &schema.Relation{
			Target:       "curriculum.career",
			LookupFields: []string{"code", "name"},
		}},
	}
}

func TestNewTarget_ValidatesDescriptors(t *testing.T) {
	cases := []struct {
		name   string
		fields []schema.FieldDescriptor
	}{
		{"empty name", []schema.FieldDescriptor{{Name: " ", Kind: schema.KindText}}},
		{"unknown kind", []schema.FieldDescriptor{{Name: "x", Kind: schema.Kind("blob")}}},
		{"choice without values", []schema.FieldDescriptor{{Name: "x", Kind: schema.KindChoice}}},
		{"relation without target", []schema.FieldDescriptor{{Name: "x", Kind: schema.KindRelation}}},
		{"duplicate field", []schema.FieldDescriptor{
			{Name: "x", Kind: schema.KindText},
			{Name: "x", Kind: schema.KindText},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schema.NewTarget("curriculum.subject", tc.fields, nopStore{})
			require.Error(t, err)
		})
	}
}

func TestRegistry_ResolveFailsClosed(t *testing.T) {
	registry := schema.NewRegistry()

	target, err := schema.NewTarget("curriculum.subject", subjectFields(), nopStore{})
	require.NoError(t, err)
	require.NoError(t, registry.Register(target))

	resolved, err := registry.Resolve("curriculum.subject")
	require.NoError(t, err)
	assert.Equal(t, "curriculum.subject", resolved.ID())

	_, err = registry.Resolve("auth.user")
	require.ErrorIs(t, err, schema.ErrTargetNotAuthorized)

	_, err = registry.Resolve("")
	require.ErrorIs(t, err, schema.ErrTargetNotAuthorized)
}

func TestRegistry_RejectsDuplicateRegistration(t *testing.T) {
	registry := schema.NewRegistry()

	target, err := schema.NewTarget("curriculum.subject", subjectFields(), nopStore{})
	require.NoError(t, err)
	require.NoError(t, registry.Register(target))
	require.Error(t, registry.Register(target))
}

func TestTarget_FieldSubsets(t *testing.T) {
	target, err := schema.NewTarget("curriculum.subject", subjectFields(), nopStore{})
	require.NoError(t, err)

	required := target.RequiredFields()
	require.Len(t, required, 2)
	assert.Equal(t, "code", required[0].Name)
	assert.Equal(t, "name", required[1].Name)

	unique := target.UniqueFields()
	require.Len(t, unique, 1)
	assert.Equal(t, "code", unique[0].Name)

	_, ok := target.Field("career")
	assert.True(t, ok)
	_, ok = target.Field("id")
	assert.False(t, ok)
}
