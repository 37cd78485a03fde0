package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akdemia/akdemia/modules/importer/domain/importsession"
	"github.com/akdemia/akdemia/modules/importer/infrastructure/persistence"
)

func newLoadedSession(t *testing.T, ttl time.Duration) *importsession.Session {
	t.Helper()
	session := importsession.New("curriculum.subject", "/tmp/subjects.xlsx", "Subjects", "A1:C10", ttl)
	require.NoError(t, session.LoadRange(
		[]string{"Code", "Name", "Credits"},
		[][]string{{"MAT101", "Calculus I", "6"}, {"MAT102", "Calculus II", "6"}},
	))
	return session
}

func TestMemorySessionRepository_RoundTrip(t *testing.T) {
	repo := persistence.NewMemorySessionRepository()
	ctx := context.Background()
	session := newLoadedSession(t, time.Hour)

	require.NoError(t, repo.Save(ctx, session))

	got, err := repo.Get(ctx, session.Token())
	require.NoError(t, err)
	assert.Equal(t, session.Token(), got.Token())
	assert.Equal(t, session.TargetID(), got.TargetID())
	assert.Equal(t, session.Headers(), got.Headers())
	assert.Equal(t, session.Rows(), got.Rows())
	assert.Equal(t, session.State(), got.State())
	assert.WithinDuration(t, session.ExpiresAt(), got.ExpiresAt(), time.Second)
}

func TestMemorySessionRepository_UnknownToken(t *testing.T) {
	repo := persistence.NewMemorySessionRepository()
	_, err := repo.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, importsession.ErrNotFound)
}

func TestMemorySessionRepository_Expired(t *testing.T) {
	repo := persistence.NewMemorySessionRepository()
	ctx := context.Background()
	session := newLoadedSession(t, time.Millisecond)
	require.NoError(t, repo.Save(ctx, session))

	time.Sleep(5 * time.Millisecond)
	_, err := repo.Get(ctx, session.Token())
	require.ErrorIs(t, err, importsession.ErrExpired)
}

func TestMemorySessionRepository_DeleteIsIdempotent(t *testing.T) {
	repo := persistence.NewMemorySessionRepository()
	ctx := context.Background()
	session := newLoadedSession(t, time.Hour)
	require.NoError(t, repo.Save(ctx, session))

	require.NoError(t, repo.Delete(ctx, session.Token()))
	require.NoError(t, repo.Delete(ctx, session.Token()))
	_, err := repo.Get(ctx, session.Token())
	require.ErrorIs(t, err, importsession.ErrNotFound)
}
