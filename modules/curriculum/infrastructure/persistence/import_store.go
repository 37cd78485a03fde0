package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/akdemia/akdemia/modules/curriculum/domain/aggregates/career"
	"github.com/akdemia/akdemia/modules/curriculum/domain/aggregates/subject"
	"github.com/akdemia/akdemia/pkg/composables"
	"github.com/akdemia/akdemia/pkg/schema"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// entityStore is the shared pgx plumbing behind the import targets. Columns
// are an allow-list: field names arrive from descriptors, never from user
// input, but only listed columns are ever interpolated.
type entityStore struct {
	entity  string
	table   string
	columns map[string]string
}

func (s *entityStore) column(field string) (string, error) {
	col, ok := s.columns[field]
	if !ok {
		return "", fmt.Errorf("%s: unknown field %q", s.entity, field)
	}
	return col, nil
}

func (s *entityStore) FindByField(ctx context.Context, field, value string) (schema.Ref, error) {
	col, err := s.column(field)
	if err != nil {
		return schema.Ref{}, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return schema.Ref{}, err
	}
	var id uuid.UUID
	query := fmt.Sprintf(`SELECT id FROM %s WHERE lower(%s) = lower($1)`, s.table, col)
	if err := tx.QueryRow(ctx, query, strings.TrimSpace(value)).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schema.Ref{}, schema.ErrNotFound
		}
		return schema.Ref{}, storeErr(err)
	}
	return schema.Ref{ID: id, Entity: s.entity}, nil
}

func (s *entityStore) LookupValues(ctx context.Context, fields []string) ([]schema.LookupCandidate, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var out []schema.LookupCandidate
	for _, field := range fields {
		col, err := s.column(field)
		if err != nil {
			return nil, err
		}
		query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s IS NOT NULL`, col, s.table, col)
		rows, err := tx.Query(ctx, query)
		if err != nil {
			return nil, storeErr(err)
		}
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return nil, storeErr(err)
			}
			out = append(out, schema.LookupCandidate{Field: field, Value: v})
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, storeErr(err)
		}
	}
	return out, nil
}

func (s *entityStore) FindWhere(ctx context.Context, filter map[string]any) (schema.Ref, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return schema.Ref{}, err
	}
	var (
		clauses []string
		args    []any
	)
	for field, value := range filter {
		col, err := s.column(field)
		if err != nil {
			return schema.Ref{}, err
		}
		args = append(args, value)
		if _, isText := value.(string); isText {
			clauses = append(clauses, fmt.Sprintf("lower(%s) = lower($%d)", col, len(args)))
		} else {
			clauses = append(clauses, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	query := fmt.Sprintf(`SELECT id FROM %s WHERE %s`, s.table, strings.Join(clauses, " AND "))
	var id uuid.UUID
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schema.Ref{}, schema.ErrNotFound
		}
		return schema.Ref{}, storeErr(err)
	}
	return schema.Ref{ID: id, Entity: s.entity}, nil
}

// SubjectImportStore adapts the subjects table to the importer.
type SubjectImportStore struct {
	entityStore
	subjects subject.Repository
	careers  career.Repository
}

func NewSubjectImportStore(subjects subject.Repository, careers career.Repository) *SubjectImportStore {
	return &SubjectImportStore{
		entityStore: entityStore{
			entity: "curriculum.subject",
			table:  "subjects",
			columns: map[string]string{
				"code":   "code",
				"name":   "name",
				"status": "status",
			},
		},
		subjects: subjects,
		careers:  careers,
	}
}

type subjectValues struct {
	Code    string `validate:"required,max=32"`
	Name    string `validate:"required,min=2,max=255"`
	Credits decimal.Decimal `validate:"-"`
	Hours   int64           `validate:"min=0"`
	Status  string `validate:"omitempty,oneof=Active Inactive"`
}

func (s *SubjectImportStore) Insert(ctx context.Context, values map[string]any) (schema.Ref, error) {
	dto := subjectValues{
		Code:    asString(values["code"]),
		Name:    asString(values["name"]),
		Credits: asDecimal(values["credits"]),
		Hours:   asInt(values["hours"]),
		Status:  asString(values["status"]),
	}
	if err := validate.Struct(dto); err != nil {
		return schema.Ref{}, asValidationError(s.entity, err)
	}
	status := subject.StatusActive
	if dto.Status != "" {
		status = subject.Status(dto.Status)
	}
	entity := subject.New(dto.Code, dto.Name, dto.Credits, dto.Hours, status)
	careerRef, hasCareer := values["career"].(schema.Ref)
	if hasCareer {
		entity.AssignCareer(careerRef.ID)
	}
	if err := s.subjects.Create(ctx, entity); err != nil {
		return schema.Ref{}, storeErr(err)
	}
	if hasCareer {
		if err := s.careers.AttachSubject(ctx, careerRef.ID, entity.ID()); err != nil {
			return schema.Ref{}, storeErr(err)
		}
	}
	return schema.Ref{ID: entity.ID(), Entity: s.entity}, nil
}

// MergeDuplicate associates an existing subject with the career named in the
// incoming row. A row that brings no career has nothing to merge.
func (s *SubjectImportStore) MergeDuplicate(ctx context.Context, existing schema.Ref, values map[string]any) error {
	careerRef, ok := values["career"].(schema.Ref)
	if !ok {
		return schema.ErrNoMerge
	}
	if err := s.careers.AttachSubject(ctx, careerRef.ID, existing.ID); err != nil {
		return storeErr(err)
	}
	return nil
}

// CareerImportStore adapts the careers table to the importer.
type CareerImportStore struct {
	entityStore
	careers career.Repository
}

func NewCareerImportStore(careers career.Repository) *CareerImportStore {
	return &CareerImportStore{
		entityStore: entityStore{
			entity: "curriculum.career",
			table:  "careers",
			columns: map[string]string{
				"code": "code",
				"name": "name",
			},
		},
		careers: careers,
	}
}

type careerValues struct {
	Code string `validate:"required,max=32"`
	Name string `validate:"required,min=2,max=255"`
}

func (s *CareerImportStore) Insert(ctx context.Context, values map[string]any) (schema.Ref, error) {
	dto := careerValues{
		Code: asString(values["code"]),
		Name: asString(values["name"]),
	}
	if err := validate.Struct(dto); err != nil {
		return schema.Ref{}, asValidationError(s.entity, err)
	}
	entity := career.New(dto.Code, dto.Name)
	if err := s.careers.Create(ctx, entity); err != nil {
		return schema.Ref{}, storeErr(err)
	}
	return schema.Ref{ID: entity.ID(), Entity: s.entity}, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asDecimal(v any) decimal.Decimal {
	d, _ := v.(decimal.Decimal)
	return d
}

func asInt(v any) int64 {
	n, _ := v.(int64)
	return n
}

func asValidationError(entity string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return &schema.ValidationError{Entity: entity, Fields: fields}
}

// storeErr classifies connection-level failures as ErrUnavailable so the
// batch aborts instead of failing every remaining row the same way.
func storeErr(err error) error {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return errors.Wrap(schema.ErrUnavailable, err.Error())
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "08") {
		return errors.Wrap(schema.ErrUnavailable, err.Error())
	}
	return err
}
