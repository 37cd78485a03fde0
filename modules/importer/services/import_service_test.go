package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/akdemia/akdemia/modules/importer/domain/importreport"
	"github.com/akdemia/akdemia/modules/importer/domain/importsession"
	"github.com/akdemia/akdemia/modules/importer/infrastructure/persistence"
	"github.com/akdemia/akdemia/modules/importer/services"
	"github.com/akdemia/akdemia/pkg/configuration"
	"github.com/akdemia/akdemia/pkg/eventbus"
	"github.com/akdemia/akdemia/pkg/schema"
)

func writeSubjectsWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { require.NoError(t, f.Close()) }()

	const sheet = "Subjects"
	idx, err := f.NewSheet(sheet)
	require.NoError(t, err)
	f.SetActiveSheet(idx)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "subjects.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func newImportService(t *testing.T, f *fixture, opts configuration.ImportOptions) *services.ImportService {
	t.Helper()
	resolver := services.NewRelationResolver(f.registry, opts.FuzzyThreshold)
	committer := services.NewBatchCommitter(
		services.NewFieldCoercer(resolver),
		services.NewDuplicateDetector(),
	)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return services.NewImportService(
		f.registry,
		persistence.NewMemorySessionRepository(),
		committer,
		eventbus.NewEventPublisher(log),
		opts,
	)
}

func defaultImportOptions() configuration.ImportOptions {
	return configuration.ImportOptions{
		FuzzyThreshold: 0.85,
		SessionTTL:     time.Hour,
		MaxRows:        5000,
		SampleRows:     5,
	}
}

func TestImportService_TwoPhaseFlow(t *testing.T) {
	f := newFixture(t)
	svc := newImportService(t, f, defaultImportOptions())
	path := writeSubjectsWorkbook(t, [][]any{
		{"Code", "Name", "Credits", "Status", "Career"},
		{"MAT101", "Calculus I", "6.5", "active", "Engineering"},
		{"MAT102", "", "6", "Active", "ENG"},
		{"FIS101", "Physics I", "8.999", "Active", "Mathematic"},
	})

	loaded, err := svc.Load(context.Background(), "curriculum.subject", path, "Subjects", "A1:E4")
	require.NoError(t, err)
	assert.Equal(t, []string{"Code", "Name", "Credits", "Status", "Career"}, loaded.Headers)
	assert.Equal(t, 3, loaded.RowCount)
	assert.Len(t, loaded.SampleRows, 3)

	report, err := svc.Commit(context.Background(), loaded.Token, subjectMapping())
	require.NoError(t, err)
	require.Len(t, report, 3)
	assert.Equal(t, importreport.OutcomeImported, report[0].Outcome)
	assert.Equal(t, importreport.OutcomeFailed, report[1].Outcome)
	assert.Contains(t, report[1].Reason, string(importreport.FailureMissingRequired))
	assert.Equal(t, importreport.OutcomeImported, report[2].Outcome)
	assert.Equal(t, 2, f.subjects.count())

	// The session is single-use.
	_, err = svc.Commit(context.Background(), loaded.Token, subjectMapping())
	require.ErrorIs(t, err, importsession.ErrNotFound)
}

func TestImportService_UnknownTargetFailsClosed(t *testing.T) {
	f := newFixture(t)
	svc := newImportService(t, f, defaultImportOptions())

	_, err := svc.Load(context.Background(), "curriculum.student", "ignored.xlsx", "Sheet1", "A1:B2")
	require.ErrorIs(t, err, schema.ErrTargetNotAuthorized)
}

func TestImportService_MappingMissingRequiredField(t *testing.T) {
	f := newFixture(t)
	svc := newImportService(t, f, defaultImportOptions())
	path := writeSubjectsWorkbook(t, [][]any{
		{"Code", "Name"},
		{"MAT101", "Calculus I"},
	})

	loaded, err := svc.Load(context.Background(), "curriculum.subject", path, "Subjects", "A1:B2")
	require.NoError(t, err)

	_, err = svc.Commit(context.Background(), loaded.Token, importsession.Mapping{"code": 0})
	var incomplete *importsession.MappingIncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Contains(t, incomplete.Missing, "name")

	// The failed confirmation leaves the session usable.
	report, err := svc.Commit(context.Background(), loaded.Token, importsession.Mapping{"code": 0, "name": 1})
	require.NoError(t, err)
	imported, _, _ := report.Counts()
	assert.Equal(t, 1, imported)
}

func TestImportService_RowLimit(t *testing.T) {
	f := newFixture(t)
	opts := defaultImportOptions()
	opts.MaxRows = 2
	svc := newImportService(t, f, opts)
	path := writeSubjectsWorkbook(t, [][]any{
		{"Code", "Name"},
		{"MAT101", "Calculus I"},
		{"MAT102", "Calculus II"},
		{"MAT103", "Calculus III"},
	})

	_, err := svc.Load(context.Background(), "curriculum.subject", path, "Subjects", "A1:B4")
	require.ErrorIs(t, err, services.ErrTooManyRows)
}

func TestImportService_SampleRowsCapped(t *testing.T) {
	f := newFixture(t)
	opts := defaultImportOptions()
	opts.SampleRows = 2
	svc := newImportService(t, f, opts)
	path := writeSubjectsWorkbook(t, [][]any{
		{"Code", "Name"},
		{"MAT101", "Calculus I"},
		{"MAT102", "Calculus II"},
		{"MAT103", "Calculus III"},
	})

	loaded, err := svc.Load(context.Background(), "curriculum.subject", path, "Subjects", "A1:B4")
	require.NoError(t, err)
	assert.Len(t, loaded.SampleRows, 2)
	assert.Equal(t, 3, loaded.RowCount)
}

func TestImportService_Cancel(t *testing.T) {
	f := newFixture(t)
	svc := newImportService(t, f, defaultImportOptions())
	path := writeSubjectsWorkbook(t, [][]any{
		{"Code", "Name"},
		{"MAT101", "Calculus I"},
	})

	loaded, err := svc.Load(context.Background(), "curriculum.subject", path, "Subjects", "A1:B2")
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), loaded.Token))

	_, err = svc.Commit(context.Background(), loaded.Token, subjectMapping())
	require.ErrorIs(t, err, importsession.ErrNotFound)
	assert.Equal(t, 0, f.subjects.count())
}

func TestImportService_Targets(t *testing.T) {
	f := newFixture(t)
	svc := newImportService(t, f, defaultImportOptions())
	assert.Equal(t, []string{"curriculum.career", "curriculum.subject"}, svc.Targets())

	fields, err := svc.Fields("curriculum.subject")
	require.NoError(t, err)
	require.NotEmpty(t, fields)
	assert.Equal(t, "code", fields[0].Name)

	_, err = svc.Fields("curriculum.student")
	require.ErrorIs(t, err, schema.ErrTargetNotAuthorized)
}
