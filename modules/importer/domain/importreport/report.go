// Package importreport models the outcome of a batch commit: one ordered
// entry per input row, errors as data rather than control flow.
package importreport

import "fmt"

type Outcome string

const (
	OutcomeImported Outcome = "imported"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// FailureKind classifies row-level failures.
type FailureKind string

const (
	FailureMissingRequired FailureKind = "MissingRequiredField"
	FailureInvalidChoice   FailureKind = "InvalidChoiceValue"
	FailureTypeConversion  FailureKind = "TypeConversionError"
	FailureForeignKey      FailureKind = "ForeignKeyNotFound"
	FailureValidation      FailureKind = "ValidationError"
	FailureUnexpected      FailureKind = "UnexpectedError"
)

// SkipDuplicate is the reason recorded when an existing entity short-circuits
// persistence. A duplicate is not an error.
const SkipDuplicate = "duplicate"

// RowResult is the outcome of one input row. RowIndex is the 0-based index
// within the imported range's data rows, so callers can point back at the
// original spreadsheet row.
type RowResult struct {
	RowIndex int     `json:"row_index"`
	Outcome  Outcome `json:"outcome"`
	Reason   string  `json:"reason,omitempty"`
}

func (r RowResult) String() string {
	if r.Reason == "" {
		return fmt.Sprintf("row %d: %s", r.RowIndex+1, r.Outcome)
	}
	return fmt.Sprintf("row %d: %s (%s)", r.RowIndex+1, r.Outcome, r.Reason)
}

// Report lists one result per input row, in input order.
type Report []RowResult

// Counts folds the report into aggregate totals.
func (r Report) Counts() (imported, skipped, failed int) {
	for _, row := range r {
		switch row.Outcome {
		case OutcomeImported:
			imported++
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}
	return imported, skipped, failed
}

// Messages renders the per-row results as human-readable lines.
func (r Report) Messages() []string {
	out := make([]string, 0, len(r))
	for _, row := range r {
		out = append(out, row.String())
	}
	return out
}

func Imported(rowIndex int) RowResult {
	return RowResult{RowIndex: rowIndex, Outcome: OutcomeImported}
}

func Skipped(rowIndex int, reason string) RowResult {
	return RowResult{RowIndex: rowIndex, Outcome: OutcomeSkipped, Reason: reason}
}

func Failed(rowIndex int, kind FailureKind, detail string) RowResult {
	reason := string(kind)
	if detail != "" {
		reason = fmt.Sprintf("%s: %s", kind, detail)
	}
	return RowResult{RowIndex: rowIndex, Outcome: OutcomeFailed, Reason: reason}
}
