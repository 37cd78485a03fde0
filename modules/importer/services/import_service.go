package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/akdemia/akdemia/modules/importer/domain/importreport"
	"github.com/akdemia/akdemia/modules/importer/domain/importsession"
	"github.com/akdemia/akdemia/pkg/composables"
	"github.com/akdemia/akdemia/pkg/configuration"
	"github.com/akdemia/akdemia/pkg/eventbus"
	"github.com/akdemia/akdemia/pkg/excel"
	"github.com/akdemia/akdemia/pkg/metrics"
	"github.com/akdemia/akdemia/pkg/schema"
)

var (
	ErrEmptyRange  = fmt.Errorf("selected range contains no rows")
	ErrTooManyRows = fmt.Errorf("selected range exceeds the row limit")
)

// LoadResult is what phase one hands back to the caller: enough to render
// the mapping step without re-reading the workbook.
type LoadResult struct {
	Token      uuid.UUID
	Headers    []string
	SampleRows [][]string
	RowCount   int
}

// ImportService orchestrates the two-phase import workflow. Phase one loads
// a sheet range into a session; phase two confirms the column mapping and
// commits the batch.
type ImportService struct {
	registry  *schema.Registry
	sessions  importsession.Repository
	committer *BatchCommitter
	publisher eventbus.EventBus
	opts      configuration.ImportOptions
}

func NewImportService(
	registry *schema.Registry,
	sessions importsession.Repository,
	committer *BatchCommitter,
	publisher eventbus.EventBus,
	opts configuration.ImportOptions,
) *ImportService {
	return &ImportService{
		registry:  registry,
		sessions:  sessions,
		committer: committer,
		publisher: publisher,
		opts:      opts,
	}
}

// Load opens the workbook, extracts the range and creates a pending session.
// The first row of the range is treated as the header row.
func (s *ImportService) Load(
	ctx context.Context,
	targetID, filePath, sheetName, rangeExpr string,
) (*LoadResult, error) {
	if _, err := s.registry.Resolve(targetID); err != nil {
		return nil, err
	}
	cells, err := excel.ReadRange(filePath, sheetName, rangeExpr)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, ErrEmptyRange
	}
	headers, rows := cells[0], cells[1:]
	if len(rows) > s.opts.MaxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(rows), s.opts.MaxRows)
	}

	session := importsession.New(targetID, filePath, sheetName, rangeExpr, s.opts.SessionTTL)
	if err := session.LoadRange(headers, rows); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	logger := composables.UseLogger(ctx)
	logger.WithField("token", session.Token()).
		WithField("target", targetID).
		WithField("rows", len(rows)).
		Info("import session created")
	metrics.ImportSessions.WithLabelValues("created").Inc()
	s.publisher.Publish(importsession.CreatedEvent{
		Token:    session.Token(),
		TargetID: targetID,
		RowCount: len(rows),
	})

	return &LoadResult{
		Token:      session.Token(),
		Headers:    headers,
		SampleRows: sample(rows, s.opts.SampleRows),
		RowCount:   len(rows),
	}, nil
}

// Commit runs phase two: validate the mapping against the target, persist
// every row and discard the session. A session-level abort leaves the
// session in place so the caller can retry once the store recovers.
func (s *ImportService) Commit(
	ctx context.Context,
	token uuid.UUID,
	mapping importsession.Mapping,
) (importreport.Report, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now().UTC()) {
		return nil, importsession.ErrExpired
	}
	target, err := s.registry.Resolve(session.TargetID())
	if err != nil {
		return nil, err
	}
	if err := session.ConfirmMapping(mapping, requiredNames(target)); err != nil {
		return nil, err
	}

	report, err := s.committer.Commit(ctx, target, mapping, session.Rows())
	if err != nil {
		metrics.ImportSessions.WithLabelValues("aborted").Inc()
		return report, err
	}

	if err := session.Complete(); err != nil {
		return report, err
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		composables.UseLogger(ctx).WithError(err).Warn("could not discard import session")
	}
	s.removeUpload(ctx, session.FilePath())

	imported, skipped, failed := report.Counts()
	composables.UseLogger(ctx).
		WithField("token", token).
		WithField("target", target.ID()).
		WithField("imported", imported).
		WithField("skipped", skipped).
		WithField("failed", failed).
		Info("import session completed")
	metrics.ImportSessions.WithLabelValues("completed").Inc()
	s.publisher.Publish(importsession.CompletedEvent{
		Token:    token,
		TargetID: target.ID(),
		Imported: imported,
		Skipped:  skipped,
		Failed:   failed,
	})
	return report, nil
}

// Cancel discards a pending session and its uploaded workbook.
func (s *ImportService) Cancel(ctx context.Context, token uuid.UUID) error {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return err
	}
	if err := session.Cancel(); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}
	s.removeUpload(ctx, session.FilePath())
	metrics.ImportSessions.WithLabelValues("cancelled").Inc()
	s.publisher.Publish(importsession.CancelledEvent{
		Token:    token,
		TargetID: session.TargetID(),
	})
	return nil
}

// Targets lists the entities authorized for import.
func (s *ImportService) Targets() []string {
	return s.registry.IDs()
}

// Fields returns the ordered field descriptors of an authorized target, the
// material the mapping step is built from.
func (s *ImportService) Fields(targetID string) ([]schema.FieldDescriptor, error) {
	target, err := s.registry.Resolve(targetID)
	if err != nil {
		return nil, err
	}
	return target.Fields(), nil
}

func (s *ImportService) removeUpload(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		composables.UseLogger(ctx).WithError(err).Warn("could not remove uploaded workbook")
	}
}

func requiredNames(target *schema.Target) []string {
	fields := target.RequiredFields()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}

func sample(rows [][]string, n int) [][]string {
	if len(rows) <= n {
		return rows
	}
	return rows[:n]
}
