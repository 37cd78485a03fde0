package services

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/akdemia/akdemia/modules/importer/domain/importreport"
	"github.com/akdemia/akdemia/modules/importer/domain/importsession"
	"github.com/akdemia/akdemia/pkg/composables"
	"github.com/akdemia/akdemia/pkg/metrics"
	"github.com/akdemia/akdemia/pkg/schema"
)

// BatchCommitter walks the mapped rows in sheet order and persists each one
// in its own transaction. Row failures are recorded and never stop the
// batch; only a store outage aborts the remaining rows.
type BatchCommitter struct {
	coercer  *FieldCoercer
	detector *DuplicateDetector
}

func NewBatchCommitter(coercer *FieldCoercer, detector *DuplicateDetector) *BatchCommitter {
	return &BatchCommitter{coercer: coercer, detector: detector}
}

// Commit processes every row and returns one result per input row, in input
// order. A non-nil error means the batch was aborted; the report then covers
// only the rows processed before the abort.
func (c *BatchCommitter) Commit(
	ctx context.Context,
	target *schema.Target,
	mapping importsession.Mapping,
	rows [][]string,
) (importreport.Report, error) {
	report := make(importreport.Report, 0, len(rows))
	for i, row := range rows {
		result, err := c.commitRow(ctx, target, mapping, i, row)
		if err != nil {
			return report, errors.Wrapf(err, "row %d", i+1)
		}
		report = append(report, result)
		metrics.ImportRows.WithLabelValues(target.ID(), string(result.Outcome)).Inc()
	}
	return report, nil
}

func (c *BatchCommitter) commitRow(
	ctx context.Context,
	target *schema.Target,
	mapping importsession.Mapping,
	rowIndex int,
	row []string,
) (importreport.RowResult, error) {
	values, fieldErr, err := c.coerceRow(ctx, target, mapping, row)
	if err != nil {
		return importreport.RowResult{}, err
	}
	if fieldErr != nil {
		return importreport.Failed(rowIndex, fieldErr.Kind, fieldErr.Error()), nil
	}

	existing, dup, err := c.detector.Detect(ctx, target, values)
	if err != nil {
		if errors.Is(err, schema.ErrUnavailable) {
			return importreport.RowResult{}, err
		}
		return importreport.Failed(rowIndex, importreport.FailureUnexpected, err.Error()), nil
	}
	if dup {
		hook := target.MergeHook()
		if hook == nil {
			return importreport.Skipped(rowIndex, importreport.SkipDuplicate), nil
		}
		if err := c.runInTx(ctx, func(txCtx context.Context) error {
			return hook(txCtx, existing, values)
		}); err != nil {
			if errors.Is(err, schema.ErrUnavailable) {
				return importreport.RowResult{}, err
			}
			// A merge that cannot apply leaves the duplicate skipped.
			return importreport.Skipped(rowIndex, importreport.SkipDuplicate), nil
		}
		return importreport.Imported(rowIndex), nil
	}

	if err := c.runInTx(ctx, func(txCtx context.Context) error {
		_, insertErr := target.Store().Insert(txCtx, values)
		return insertErr
	}); err != nil {
		return c.persistenceFailure(rowIndex, err)
	}
	return importreport.Imported(rowIndex), nil
}

// coerceRow builds the typed value map for one row. The first field-level
// failure is returned as data; store-level failures abort.
func (c *BatchCommitter) coerceRow(
	ctx context.Context,
	target *schema.Target,
	mapping importsession.Mapping,
	row []string,
) (map[string]any, *FieldError, error) {
	values := make(map[string]any, len(mapping))
	for _, field := range target.Fields() {
		col, mapped := mapping[field.Name]
		if !mapped {
			continue
		}
		raw := ""
		if col < len(row) {
			raw = row[col]
		}
		v, err := c.coercer.Coerce(ctx, field, raw)
		if err != nil {
			var fieldErr *FieldError
			if errors.As(err, &fieldErr) {
				return nil, fieldErr, nil
			}
			return nil, nil, err
		}
		values[field.Name] = v
	}
	return values, nil, nil
}

func (c *BatchCommitter) persistenceFailure(rowIndex int, err error) (importreport.RowResult, error) {
	if errors.Is(err, schema.ErrUnavailable) {
		return importreport.RowResult{}, err
	}
	var validationErr *schema.ValidationError
	if errors.As(err, &validationErr) {
		return importreport.Failed(rowIndex, importreport.FailureValidation, validationErr.Error()), nil
	}
	return importreport.Failed(rowIndex, importreport.FailureUnexpected, err.Error()), nil
}

// runInTx wraps fn in a per-row transaction when a pool is wired into the
// context. Stores without one (in-memory) run fn directly.
func (c *BatchCommitter) runInTx(ctx context.Context, fn func(context.Context) error) error {
	if _, err := composables.UsePool(ctx); err != nil {
		return fn(ctx)
	}
	return composables.InTx(ctx, fn)
}
