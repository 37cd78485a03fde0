package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akdemia/akdemia/modules/curriculum/domain/aggregates/career"
	"github.com/akdemia/akdemia/pkg/composables"
)

const (
	selectCareerQuery = `
		SELECT id, code, name, created_at, updated_at FROM careers`

	insertCareerQuery = `
		INSERT INTO careers (id, code, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	updateCareerQuery = `
		UPDATE careers SET code = $2, name = $3, updated_at = $4 WHERE id = $1`

	deleteCareerQuery = `DELETE FROM careers WHERE id = $1`

	attachSubjectQuery = `
		INSERT INTO career_subjects (career_id, subject_id)
		VALUES ($1, $2)
		ON CONFLICT (career_id, subject_id) DO NOTHING`
)

type PgCareerRepository struct{}

func NewCareerRepository() career.Repository {
	return &PgCareerRepository{}
}

func (g *PgCareerRepository) Create(ctx context.Context, data *career.Career) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	r := toCareerRow(data)
	if _, err := tx.Exec(ctx, insertCareerQuery, r.ID, r.Code, r.Name, r.CreatedAt, r.UpdatedAt); err != nil {
		return wrapCareerErr(err)
	}
	return nil
}

func (g *PgCareerRepository) Update(ctx context.Context, data *career.Career) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	r := toCareerRow(data)
	if _, err := tx.Exec(ctx, updateCareerQuery, r.ID, r.Code, r.Name, r.UpdatedAt); err != nil {
		return wrapCareerErr(err)
	}
	return nil
}

func (g *PgCareerRepository) GetByID(ctx context.Context, id uuid.UUID) (*career.Career, error) {
	return g.queryOne(ctx, selectCareerQuery+` WHERE id = $1`, id)
}

func (g *PgCareerRepository) GetByCode(ctx context.Context, code string) (*career.Career, error) {
	return g.queryOne(ctx, selectCareerQuery+` WHERE lower(code) = lower($1)`, code)
}

func (g *PgCareerRepository) GetAll(ctx context.Context) ([]*career.Career, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectCareerQuery+` ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "query careers")
	}
	defer rows.Close()

	var out []*career.Career
	for rows.Next() {
		var r careerRow
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan career")
		}
		out = append(out, toDomainCareer(r))
	}
	return out, rows.Err()
}

func (g *PgCareerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, deleteCareerQuery, id)
	return err
}

func (g *PgCareerRepository) AttachSubject(ctx context.Context, careerID, subjectID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, attachSubjectQuery, careerID, subjectID)
	return err
}

func (g *PgCareerRepository) queryOne(ctx context.Context, query string, args ...any) (*career.Career, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var r careerRow
	err = tx.QueryRow(ctx, query, args...).
		Scan(&r.ID, &r.Code, &r.Name, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, career.ErrNotFound
		}
		return nil, errors.Wrap(err, "query career")
	}
	return toDomainCareer(r), nil
}

func wrapCareerErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return career.ErrDuplicateCode
	}
	return err
}
