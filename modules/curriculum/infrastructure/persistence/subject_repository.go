package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akdemia/akdemia/modules/curriculum/domain/aggregates/subject"
	"github.com/akdemia/akdemia/pkg/composables"
)

const (
	selectSubjectQuery = `
		SELECT id, code, name, credits, hours, status, career_id, created_at, updated_at
		FROM subjects`

	insertSubjectQuery = `
		INSERT INTO subjects (id, code, name, credits, hours, status, career_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateSubjectQuery = `
		UPDATE subjects
		SET code = $2, name = $3, credits = $4, hours = $5, status = $6, career_id = $7, updated_at = $8
		WHERE id = $1`

	deleteSubjectQuery = `DELETE FROM subjects WHERE id = $1`
)

type PgSubjectRepository struct{}

func NewSubjectRepository() subject.Repository {
	return &PgSubjectRepository{}
}

func (g *PgSubjectRepository) Create(ctx context.Context, data *subject.Subject) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	r := toSubjectRow(data)
	_, err = tx.Exec(ctx, insertSubjectQuery,
		r.ID, r.Code, r.Name, r.Credits, r.Hours, r.Status, r.CareerID, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return wrapSubjectErr(err)
	}
	return nil
}

func (g *PgSubjectRepository) Update(ctx context.Context, data *subject.Subject) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	r := toSubjectRow(data)
	_, err = tx.Exec(ctx, updateSubjectQuery,
		r.ID, r.Code, r.Name, r.Credits, r.Hours, r.Status, r.CareerID, r.UpdatedAt)
	if err != nil {
		return wrapSubjectErr(err)
	}
	return nil
}

func (g *PgSubjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*subject.Subject, error) {
	return g.queryOne(ctx, selectSubjectQuery+` WHERE id = $1`, id)
}

func (g *PgSubjectRepository) GetByCode(ctx context.Context, code string) (*subject.Subject, error) {
	return g.queryOne(ctx, selectSubjectQuery+` WHERE lower(code) = lower($1)`, code)
}

func (g *PgSubjectRepository) GetAll(ctx context.Context) ([]*subject.Subject, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectSubjectQuery+` ORDER BY code`)
	if err != nil {
		return nil, errors.Wrap(err, "query subjects")
	}
	defer rows.Close()

	var out []*subject.Subject
	for rows.Next() {
		r, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, toDomainSubject(r))
	}
	return out, rows.Err()
}

func (g *PgSubjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, deleteSubjectQuery, id)
	return err
}

func (g *PgSubjectRepository) queryOne(ctx context.Context, query string, args ...any) (*subject.Subject, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	r, err := scanSubject(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, subject.ErrNotFound
		}
		return nil, errors.Wrap(err, "query subject")
	}
	return toDomainSubject(r), nil
}

func scanSubject(row pgx.Row) (subjectRow, error) {
	var r subjectRow
	err := row.Scan(
		&r.ID, &r.Code, &r.Name, &r.Credits, &r.Hours,
		&r.Status, &r.CareerID, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func wrapSubjectErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return subject.ErrDuplicateCode
	}
	return err
}
