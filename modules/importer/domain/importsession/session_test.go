package importsession_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akdemia/akdemia/modules/importer/domain/importsession"
)

func loadedSession(t *testing.T) *importsession.Session {
	t.Helper()
	s := importsession.New("curriculum.subject", "/tmp/subjects.xlsx", "Subjects", "A1:C4", time.Hour)
	require.NoError(t, s.LoadRange(
		[]string{"code", "name", "credits"},
		[][]string{{"MAT101", "Algebra", "4.5"}},
	))
	return s
}

func TestSession_HappyPath(t *testing.T) {
	s := loadedSession(t)
	assert.Equal(t, importsession.StateRangeLoaded, s.State())

	mapping := importsession.Mapping{"code": 0, "name": 1, "credits": 2}
	require.NoError(t, s.ConfirmMapping(mapping, []string{"code", "name"}))
	assert.Equal(t, importsession.StateMappingConfirmed, s.State())
	assert.Equal(t, mapping, s.Mapping())

	require.NoError(t, s.Complete())
	assert.Equal(t, importsession.StateCompleted, s.State())
}

func TestSession_ConfirmMapping_MissingRequired(t *testing.T) {
	s := loadedSession(t)

	err := s.ConfirmMapping(importsession.Mapping{"name": 1}, []string{"code", "name"})
	var incomplete *importsession.MappingIncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"code"}, incomplete.Missing)
	// The failed confirmation must not advance the state machine.
	assert.Equal(t, importsession.StateRangeLoaded, s.State())
}

func TestSession_ConfirmMapping_ColumnOutOfRange(t *testing.T) {
	s := loadedSession(t)

	err := s.ConfirmMapping(importsession.Mapping{"code": 7}, []string{"code"})
	require.Error(t, err)
	assert.Equal(t, importsession.StateRangeLoaded, s.State())
}

func TestSession_InvalidTransitions(t *testing.T) {
	s := importsession.New("curriculum.subject", "/tmp/f.xlsx", "S", "A1:B2", time.Hour)

	// Cannot confirm or complete before a range is loaded.
	require.ErrorIs(t, s.ConfirmMapping(importsession.Mapping{}, nil), importsession.ErrInvalidTransition)
	require.ErrorIs(t, s.Complete(), importsession.ErrInvalidTransition)

	// Loading twice is not allowed.
	require.NoError(t, s.LoadRange([]string{"a"}, nil))
	require.ErrorIs(t, s.LoadRange([]string{"a"}, nil), importsession.ErrInvalidTransition)
}

func TestSession_CancelDiscardsRows(t *testing.T) {
	s := loadedSession(t)
	require.NoError(t, s.Cancel())
	assert.Equal(t, importsession.StateCancelled, s.State())
	assert.Nil(t, s.Rows())
	assert.Nil(t, s.Headers())

	// Terminal states cannot be cancelled again.
	require.ErrorIs(t, s.Cancel(), importsession.ErrInvalidTransition)
}

func TestSession_Expired(t *testing.T) {
	s := importsession.New("curriculum.subject", "/tmp/f.xlsx", "S", "A1:B2", time.Minute)
	assert.False(t, s.Expired(time.Now().UTC()))
	assert.True(t, s.Expired(time.Now().UTC().Add(2*time.Minute)))
}
