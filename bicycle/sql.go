package bicycle

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/pedalpoint/equipment-backend/internal/apperr"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]Bicycle, error) {
	var bicycles []Bicycle
	if err := r.db.SelectContext(ctx, &bicycles, listBicycles); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list bicycles", err)
	}
	return bicycles, nil
}

const listBicycles = `SELECT * FROM bicycles WHERE status <> 'DELETED' ORDER BY tag_number`

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Bicycle, error) {
	var b Bicycle
	err := r.db.GetContext(ctx, &b, getBicycle, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Bicycle{}, apperr.New(apperr.NotFound, "bicycle not found")
	}
	if err != nil {
		return Bicycle{}, apperr.Wrap(apperr.Internal, "get bicycle", err)
	}
	return b, nil
}

const getBicycle = `SELECT * FROM bicycles WHERE id = $1 AND status <> 'DELETED'`

// Create registers a new bicycle in NEW status.
func (r *Repository) Create(ctx context.Context, brand, model string, year, tagNumber int) (Bicycle, error) {
	if brand == "" || model == "" || year == 0 || tagNumber == 0 {
		return Bicycle{}, apperr.New(apperr.InvalidData, "brand, model, year and tag number are required")
	}

	var b Bicycle
	err := r.db.GetContext(ctx, &b, createBicycle, uuid.New(), brand, model, year, tagNumber)
	if isUniqueViolation(err) {
		return Bicycle{}, apperr.Newf(apperr.InvalidData, "tag number %d already registered", tagNumber)
	}
	if err != nil {
		return Bicycle{}, apperr.Wrap(apperr.Internal, "create bicycle", err)
	}
	return b, nil
}

const createBicycle = `
INSERT INTO bicycles (id, brand, model, year, tag_number, status)
VALUES ($1, $2, $3, $4, $5, 'NEW')
RETURNING *
`

// Update edits the descriptive fields. Status and tag number are not
// editable here.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, brand, model string, year int) (Bicycle, error) {
	if brand == "" || model == "" || year == 0 {
		return Bicycle{}, apperr.New(apperr.InvalidData, "brand, model and year are required")
	}

	var b Bicycle
	err := r.db.GetContext(ctx, &b, updateBicycle, brand, model, year, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Bicycle{}, apperr.New(apperr.NotFound, "bicycle not found")
	}
	if err != nil {
		return Bicycle{}, apperr.Wrap(apperr.Internal, "update bicycle", err)
	}
	return b, nil
}

const updateBicycle = `
UPDATE bicycles SET brand = $1, model = $2, year = $3
WHERE id = $4 AND status <> 'DELETED'
RETURNING *
`

// SetStatus is the administrative override. It bypasses the guarded
// transitions on purpose; the workflow operations never call it.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status Status) (Bicycle, error) {
	if !ValidOverride(status) {
		return Bicycle{}, apperr.Newf(apperr.InvalidData, "invalid status %q", status)
	}

	var b Bicycle
	err := r.db.GetContext(ctx, &b, setBicycleStatus, status, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Bicycle{}, apperr.New(apperr.NotFound, "bicycle not found")
	}
	if err != nil {
		return Bicycle{}, apperr.Wrap(apperr.Internal, "set bicycle status", err)
	}
	return b, nil
}

const setBicycleStatus = `
UPDATE bicycles SET status = $1
WHERE id = $2 AND status <> 'DELETED'
RETURNING *
`

// SoftDelete marks a retired, unseated bicycle as DELETED. The row stays
// for the audit trail but disappears from all lookups.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "begin delete bicycle", err)
	}
	defer tx.Rollback()

	var b Bicycle
	err = tx.GetContext(ctx, &b, getBicycleForUpdate, id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.NotFound, "bicycle not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "get bicycle", err)
	}

	if b.Status != StatusRetired {
		return apperr.New(apperr.InvalidData, "bicycle is not retired")
	}

	var held bool
	if err := tx.GetContext(ctx, &held, bicycleHeldByLock, id); err != nil {
		return apperr.Wrap(apperr.Internal, "check holding lock", err)
	}
	if held {
		return apperr.New(apperr.Conflict, "bicycle is still seated in a lock")
	}

	if _, err := tx.ExecContext(ctx, deleteBicycle, id); err != nil {
		return apperr.Wrap(apperr.Internal, "delete bicycle", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Internal, "commit delete bicycle", err)
	}
	return nil
}

const getBicycleForUpdate = `SELECT * FROM bicycles WHERE id = $1 AND status <> 'DELETED' FOR UPDATE`

const bicycleHeldByLock = `SELECT EXISTS (SELECT 1 FROM locks WHERE bicycle_id = $1)`

const deleteBicycle = `UPDATE bicycles SET status = 'DELETED' WHERE id = $1`

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
