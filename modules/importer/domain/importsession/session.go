// Package importsession holds the transient state bridging the two
// interactions of the import wizard: load a range, then map and commit.
package importsession

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateIdle             State = "idle"
	StateRangeLoaded      State = "range_loaded"
	StateMappingConfirmed State = "mapping_confirmed"
	StateCompleted        State = "completed"
	StateCancelled        State = "cancelled"
)

var (
	ErrNotFound          = errors.New("import session not found")
	ErrExpired           = errors.New("import session expired")
	ErrInvalidTransition = errors.New("invalid session state transition")
)

// MappingIncompleteError reports required fields absent from a submitted
// column mapping. This is a session-level failure: no row is processed.
type MappingIncompleteError struct {
	Missing []string
}

func (e *MappingIncompleteError) Error() string {
	return fmt.Sprintf("column mapping is missing required fields: %v", e.Missing)
}

// Mapping is a partial function from field name to 0-based column index
// within the loaded range.
type Mapping map[string]int

// Columns returns whether the mapping stays inside a row of the given width.
func (m Mapping) WithinWidth(width int) error {
	for field, col := range m {
		if col < 0 || col >= width {
			return fmt.Errorf("field %q mapped to column %d, outside range width %d", field, col, width)
		}
	}
	return nil
}

// Session is the per-user wizard state. Everything it holds serializes to
// text, numbers, and booleans: the spreadsheet stays on disk (path only),
// cells are kept as the strings they were read as.
type Session struct {
	token     uuid.UUID
	targetID  string
	filePath  string
	sheetName string
	rangeExpr string
	headers   []string
	rows      [][]string
	mapping   Mapping
	state     State
	createdAt time.Time
	expiresAt time.Time
}

func New(targetID, filePath, sheetName, rangeExpr string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		token:     uuid.New(),
		targetID:  targetID,
		filePath:  filePath,
		sheetName: sheetName,
		rangeExpr: rangeExpr,
		state:     StateIdle,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

func Hydrate(
	token uuid.UUID,
	targetID, filePath, sheetName, rangeExpr string,
	headers []string,
	rows [][]string,
	mapping Mapping,
	state State,
	createdAt, expiresAt time.Time,
) *Session {
	return &Session{
		token:     token,
		targetID:  targetID,
		filePath:  filePath,
		sheetName: sheetName,
		rangeExpr: rangeExpr,
		headers:   headers,
		rows:      rows,
		mapping:   mapping,
		state:     state,
		createdAt: createdAt,
		expiresAt: expiresAt,
	}
}

func (s *Session) Token() uuid.UUID { return s.token }
func (s *Session) TargetID() string { return s.targetID }
func (s *Session) FilePath() string { return s.filePath }
func (s *Session) SheetName() string { return s.sheetName }
func (s *Session) RangeExpr() string { return s.rangeExpr }
func (s *Session) Headers() []string { return s.headers }
func (s *Session) Rows() [][]string { return s.rows }
func (s *Session) Mapping() Mapping { return s.mapping }
func (s *Session) State() State { return s.state }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.expiresAt)
}

// LoadRange stores the extracted headers and data rows.
func (s *Session) LoadRange(headers []string, rows [][]string) error {
	if s.state != StateIdle {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, StateRangeLoaded)
	}
	s.headers = headers
	s.rows = rows
	s.state = StateRangeLoaded
	return nil
}

// ConfirmMapping validates that every required field is mapped and that the
// mapping addresses existing columns. Pure validation, nothing persists here.
func (s *Session) ConfirmMapping(mapping Mapping, requiredFields []string) error {
	if s.state != StateRangeLoaded {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, StateMappingConfirmed)
	}

	var missing []string
	for _, name := range requiredFields {
		if _, ok := mapping[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MappingIncompleteError{Missing: missing}
	}
	if err := mapping.WithinWidth(len(s.headers)); err != nil {
		return err
	}

	s.mapping = mapping
	s.state = StateMappingConfirmed
	return nil
}

// Complete marks the session finished. Partial success is still completion:
// the batch ran, however many rows failed.
func (s *Session) Complete() error {
	if s.state != StateMappingConfirmed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, StateCompleted)
	}
	s.state = StateCompleted
	return nil
}

// Cancel discards the session from any non-terminal state.
func (s *Session) Cancel() error {
	switch s.state {
	case StateCompleted, StateCancelled:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, StateCancelled)
	}
	s.rows = nil
	s.headers = nil
	s.state = StateCancelled
	return nil
}
