package lock

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/pedalpoint/equipment-backend/bicycle"
	"github.com/pedalpoint/equipment-backend/internal/apperr"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]Lock, error) {
	var locks []Lock
	if err := r.db.SelectContext(ctx, &locks, listLocks); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list locks", err)
	}
	return locks, nil
}

const listLocks = `SELECT * FROM locks WHERE status <> 'DELETED' ORDER BY tag_number`

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Lock, error) {
	var l Lock
	err := r.db.GetContext(ctx, &l, getLock, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Lock{}, apperr.New(apperr.NotFound, "lock not found")
	}
	if err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "get lock", err)
	}
	return l, nil
}

const getLock = `SELECT * FROM locks WHERE id = $1 AND status <> 'DELETED'`

// Create registers a new lock in NEW status, not yet attached to any
// station.
func (r *Repository) Create(ctx context.Context, tagNumber int, location string, manufactureYear int, model string) (Lock, error) {
	if tagNumber == 0 || location == "" || manufactureYear == 0 || model == "" {
		return Lock{}, apperr.New(apperr.InvalidData, "tag number, location, manufacture year and model are required")
	}

	var l Lock
	err := r.db.GetContext(ctx, &l, createLock, uuid.New(), tagNumber, location, manufactureYear, model)
	if isUniqueViolation(err) {
		return Lock{}, apperr.Newf(apperr.InvalidData, "tag number %d already registered", tagNumber)
	}
	if err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "create lock", err)
	}
	return l, nil
}

const createLock = `
INSERT INTO locks (id, tag_number, location, manufacture_year, model, status)
VALUES ($1, $2, $3, $4, $5, 'NEW')
RETURNING *
`

// Update edits the manufacture year and model. Tag number, location,
// status and associations are not editable here.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, manufactureYear int, model string) (Lock, error) {
	if manufactureYear == 0 || model == "" {
		return Lock{}, apperr.New(apperr.InvalidData, "manufacture year and model are required")
	}

	var l Lock
	err := r.db.GetContext(ctx, &l, updateLock, manufactureYear, model, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Lock{}, apperr.New(apperr.NotFound, "lock not found")
	}
	if err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "update lock", err)
	}
	return l, nil
}

const updateLock = `
UPDATE locks SET manufacture_year = $1, model = $2
WHERE id = $3 AND status <> 'DELETED'
RETURNING *
`

// SetStatus is the administrative override, bypassing the guarded
// transitions.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status Status) (Lock, error) {
	if !ValidOverride(status) {
		return Lock{}, apperr.Newf(apperr.InvalidData, "invalid status %q", status)
	}

	var l Lock
	err := r.db.GetContext(ctx, &l, setLockStatus, status, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Lock{}, apperr.New(apperr.NotFound, "lock not found")
	}
	if err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "set lock status", err)
	}
	return l, nil
}

const setLockStatus = `
UPDATE locks SET status = $1
WHERE id = $2 AND status <> 'DELETED'
RETURNING *
`

// Seat closes the lock around a bicycle and marks the bicycle AVAILABLE,
// atomically.
func (r *Repository) Seat(ctx context.Context, lockID, bicycleID uuid.UUID) (Lock, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "begin seat", err)
	}
	defer tx.Rollback()

	l, err := getForUpdate(ctx, tx, lockID)
	if err != nil {
		return Lock{}, err
	}

	var b bicycle.Bicycle
	err = tx.GetContext(ctx, &b, getBicycleForUpdate, bicycleID)
	if errors.Is(err, sql.ErrNoRows) {
		return Lock{}, apperr.New(apperr.NotFound, "bicycle not found")
	}
	if err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "get bicycle", err)
	}

	if err := l.Seat(b.ID); err != nil {
		return Lock{}, err
	}

	if _, err := tx.ExecContext(ctx, seatLock, l.BicycleID, lockID); err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "seat lock", err)
	}
	if _, err := tx.ExecContext(ctx, markBicycleAvailable, b.ID); err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "mark bicycle available", err)
	}

	if err := tx.Commit(); err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "commit seat", err)
	}
	return l, nil
}

const getBicycleForUpdate = `SELECT * FROM bicycles WHERE id = $1 AND status <> 'DELETED' FOR UPDATE`

const seatLock = `UPDATE locks SET bicycle_id = $1, status = 'OCCUPIED' WHERE id = $2`

const markBicycleAvailable = `UPDATE bicycles SET status = 'AVAILABLE' WHERE id = $1`

// Release opens the lock, clearing the held bicycle.
func (r *Repository) Release(ctx context.Context, lockID uuid.UUID) (Lock, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "begin release", err)
	}
	defer tx.Rollback()

	l, err := getForUpdate(ctx, tx, lockID)
	if err != nil {
		return Lock{}, err
	}

	if err := l.Release(); err != nil {
		return Lock{}, err
	}

	if _, err := tx.ExecContext(ctx, releaseLock, lockID); err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "release lock", err)
	}

	if err := tx.Commit(); err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "commit release", err)
	}
	return l, nil
}

const releaseLock = `UPDATE locks SET bicycle_id = NULL, status = 'FREE' WHERE id = $1`

// SeatedBicycle returns the bicycle currently held by the lock.
func (r *Repository) SeatedBicycle(ctx context.Context, lockID uuid.UUID) (bicycle.Bicycle, error) {
	var b bicycle.Bicycle
	err := r.db.GetContext(ctx, &b, getSeatedBicycle, lockID)
	if errors.Is(err, sql.ErrNoRows) {
		return bicycle.Bicycle{}, apperr.New(apperr.NotFound, "no bicycle in lock")
	}
	if err != nil {
		return bicycle.Bicycle{}, apperr.Wrap(apperr.Internal, "get seated bicycle", err)
	}
	return b, nil
}

const getSeatedBicycle = `
SELECT b.* FROM bicycles b
JOIN locks l ON l.bicycle_id = b.id
WHERE l.id = $1
`

// SoftDelete marks an empty lock as DELETED.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "begin delete lock", err)
	}
	defer tx.Rollback()

	l, err := getForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if l.BicycleID != nil {
		return apperr.New(apperr.Conflict, "lock still holds a bicycle")
	}

	if _, err := tx.ExecContext(ctx, deleteLock, id); err != nil {
		return apperr.Wrap(apperr.Internal, "delete lock", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Internal, "commit delete lock", err)
	}
	return nil
}

const deleteLock = `UPDATE locks SET status = 'DELETED', station_id = NULL WHERE id = $1`

func getForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (Lock, error) {
	var l Lock
	err := tx.GetContext(ctx, &l, getLockForUpdate, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Lock{}, apperr.New(apperr.NotFound, "lock not found")
	}
	if err != nil {
		return Lock{}, apperr.Wrap(apperr.Internal, "get lock", err)
	}
	return l, nil
}

const getLockForUpdate = `SELECT * FROM locks WHERE id = $1 AND status <> 'DELETED' FOR UPDATE`

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
