package station

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pedalpoint/equipment-backend/bicycle"
	"github.com/pedalpoint/equipment-backend/internal/apperr"
	"github.com/pedalpoint/equipment-backend/lock"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]Station, error) {
	var stations []Station
	if err := r.db.SelectContext(ctx, &stations, listStations); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list stations", err)
	}
	return stations, nil
}

const listStations = `SELECT * FROM stations ORDER BY location`

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Station, error) {
	var s Station
	err := r.db.GetContext(ctx, &s, getStation, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Station{}, apperr.New(apperr.NotFound, "station not found")
	}
	if err != nil {
		return Station{}, apperr.Wrap(apperr.Internal, "get station", err)
	}
	return s, nil
}

const getStation = `SELECT * FROM stations WHERE id = $1`

func (r *Repository) Create(ctx context.Context, location, description string) (Station, error) {
	if location == "" {
		return Station{}, apperr.New(apperr.InvalidData, "location is required")
	}

	var s Station
	if err := r.db.GetContext(ctx, &s, createStation, uuid.New(), location, description); err != nil {
		return Station{}, apperr.Wrap(apperr.Internal, "create station", err)
	}
	return s, nil
}

const createStation = `
INSERT INTO stations (id, location, description)
VALUES ($1, $2, $3)
RETURNING *
`

func (r *Repository) Update(ctx context.Context, id uuid.UUID, location, description string) (Station, error) {
	if location == "" {
		return Station{}, apperr.New(apperr.InvalidData, "location is required")
	}

	var s Station
	err := r.db.GetContext(ctx, &s, updateStation, location, description, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Station{}, apperr.New(apperr.NotFound, "station not found")
	}
	if err != nil {
		return Station{}, apperr.Wrap(apperr.Internal, "update station", err)
	}
	return s, nil
}

const updateStation = `
UPDATE stations SET location = $1, description = $2
WHERE id = $3
RETURNING *
`

// Delete removes a station. A station with any attached lock cannot be
// deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "begin delete station", err)
	}
	defer tx.Rollback()

	var attached int
	if err := tx.GetContext(ctx, &attached, countAttachedLocks, id); err != nil {
		return apperr.Wrap(apperr.Internal, "count attached locks", err)
	}
	if attached > 0 {
		return apperr.New(apperr.Conflict, "station still has locks attached")
	}

	// Soft-deleted locks may still reference the station; detach them so
	// the row delete does not trip the foreign key.
	if _, err := tx.ExecContext(ctx, detachDeletedLocks, id); err != nil {
		return apperr.Wrap(apperr.Internal, "detach deleted locks", err)
	}

	res, err := tx.ExecContext(ctx, deleteStation, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "delete station", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "station not found")
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Internal, "commit delete station", err)
	}
	return nil
}

const countAttachedLocks = `SELECT count(*) FROM locks WHERE station_id = $1 AND status <> 'DELETED'`

const detachDeletedLocks = `UPDATE locks SET station_id = NULL WHERE station_id = $1 AND status = 'DELETED'`

const deleteStation = `DELETE FROM stations WHERE id = $1`

// Locks lists the locks attached to a station.
func (r *Repository) Locks(ctx context.Context, id uuid.UUID) ([]lock.Lock, error) {
	var locks []lock.Lock
	if err := r.db.SelectContext(ctx, &locks, stationLocks, id); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list station locks", err)
	}
	return locks, nil
}

const stationLocks = `
SELECT * FROM locks
WHERE station_id = $1 AND status <> 'DELETED'
ORDER BY tag_number
`

// Bicycles lists the bicycles currently seated in a station's locks.
func (r *Repository) Bicycles(ctx context.Context, id uuid.UUID) ([]bicycle.Bicycle, error) {
	var bicycles []bicycle.Bicycle
	if err := r.db.SelectContext(ctx, &bicycles, stationBicycles, id); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list station bicycles", err)
	}
	return bicycles, nil
}

const stationBicycles = `
SELECT b.* FROM bicycles b
JOIN locks l ON l.bicycle_id = b.id
WHERE l.station_id = $1 AND l.status <> 'DELETED'
ORDER BY b.tag_number
`
