package network

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pedalpoint/equipment-backend/bicycle"
	"github.com/pedalpoint/equipment-backend/internal/apperr"
	"github.com/pedalpoint/equipment-backend/lock"
	"github.com/pedalpoint/equipment-backend/station"
)

// Repository implements Store on Postgres. Every mutating method opens
// one transaction, re-verifies its preconditions under FOR UPDATE row
// locks and writes the audit record together with the status updates.
// Two concurrent integrations racing for the same lock serialize on the
// lock's row; the loser fails its re-check and rolls back.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetBicycle(ctx context.Context, id uuid.UUID) (bicycle.Bicycle, error) {
	var b bicycle.Bicycle
	err := r.db.GetContext(ctx, &b, getBicycle, id)
	if errors.Is(err, sql.ErrNoRows) {
		return bicycle.Bicycle{}, apperr.New(apperr.NotFound, "bicycle not found")
	}
	if err != nil {
		return bicycle.Bicycle{}, apperr.Wrap(apperr.Internal, "get bicycle", err)
	}
	return b, nil
}

const getBicycle = `SELECT * FROM bicycles WHERE id = $1 AND status <> 'DELETED'`

func (r *Repository) GetLock(ctx context.Context, id uuid.UUID) (lock.Lock, error) {
	var l lock.Lock
	err := r.db.GetContext(ctx, &l, getLock, id)
	if errors.Is(err, sql.ErrNoRows) {
		return lock.Lock{}, apperr.New(apperr.NotFound, "lock not found")
	}
	if err != nil {
		return lock.Lock{}, apperr.Wrap(apperr.Internal, "get lock", err)
	}
	return l, nil
}

const getLock = `SELECT * FROM locks WHERE id = $1 AND status <> 'DELETED'`

func (r *Repository) GetStation(ctx context.Context, id uuid.UUID) (station.Station, error) {
	var s station.Station
	err := r.db.GetContext(ctx, &s, getStation, id)
	if errors.Is(err, sql.ErrNoRows) {
		return station.Station{}, apperr.New(apperr.NotFound, "station not found")
	}
	if err != nil {
		return station.Station{}, apperr.Wrap(apperr.Internal, "get station", err)
	}
	return s, nil
}

const getStation = `SELECT * FROM stations WHERE id = $1`

// IntegrateBicycle writes the BicycleInsertion record and seats the
// bicycle (lock OCCUPIED, bicycle AVAILABLE) as one unit.
func (r *Repository) IntegrateBicycle(ctx context.Context, lockID, bicycleID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "begin integrate bicycle", err)
	}
	defer tx.Rollback()

	l, err := lockForUpdate(ctx, tx, lockID)
	if err != nil {
		return err
	}
	if l.Status != lock.StatusFree {
		return apperr.New(apperr.InvalidData, "lock is not free")
	}

	b, err := bicycleForUpdate(ctx, tx, bicycleID)
	if err != nil {
		return err
	}
	if !b.IntegrationReady() {
		return apperr.Newf(apperr.InvalidData, "bicycle in status %s cannot be integrated", b.Status)
	}

	if _, err := tx.ExecContext(ctx, insertBicycleInsertion, uuid.New(), b.TagNumber, l.TagNumber); err != nil {
		return apperr.Wrap(apperr.Internal, "record bicycle insertion", err)
	}

	if err := l.Seat(b.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, seatLock, l.BicycleID, l.ID); err != nil {
		return apperr.Wrap(apperr.Internal, "seat lock", err)
	}
	if _, err := tx.ExecContext(ctx, setBicycleStatus, bicycle.StatusAvailable, b.ID); err != nil {
		return apperr.Wrap(apperr.Internal, "mark bicycle available", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Internal, "commit integrate bicycle", err)
	}
	return nil
}

const insertBicycleInsertion = `
INSERT INTO bicycle_insertions (id, bicycle_tag, lock_tag, occurred_at)
VALUES ($1, $2, $3, now())
`

const seatLock = `UPDATE locks SET bicycle_id = $1, status = 'OCCUPIED' WHERE id = $2`

const setBicycleStatus = `UPDATE bicycles SET status = $1 WHERE id = $2`

// RemoveBicycle writes the BicycleRemoval record, applies the repairer
// action to the bicycle and opens the lock, as one unit.
func (r *Repository) RemoveBicycle(ctx context.Context, lockID, bicycleID uuid.UUID, action bicycle.RepairerAction, badge string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "begin remove bicycle", err)
	}
	defer tx.Rollback()

	l, err := lockForUpdate(ctx, tx, lockID)
	if err != nil {
		return err
	}
	if !l.Holds(bicycleID) {
		return apperr.New(apperr.InvalidData, "bicycle is not seated in this lock")
	}

	b, err := bicycleForUpdate(ctx, tx, bicycleID)
	if err != nil {
		return err
	}
	if b.Status != bicycle.StatusRepairRequested {
		return apperr.New(apperr.InvalidData, "bicycle has no repair requested")
	}

	if _, err := tx.ExecContext(ctx, insertBicycleRemoval, uuid.New(), b.TagNumber, badge); err != nil {
		return apperr.Wrap(apperr.Internal, "record bicycle removal", err)
	}

	if err := b.ApplyRepairerAction(action); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, setBicycleStatus, b.Status, b.ID); err != nil {
		return apperr.Wrap(apperr.Internal, "update bicycle status", err)
	}

	if err := l.Release(); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, releaseLock, l.ID); err != nil {
		return apperr.Wrap(apperr.Internal, "release lock", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Internal, "commit remove bicycle", err)
	}
	return nil
}

const insertBicycleRemoval = `
INSERT INTO bicycle_removals (id, bicycle_tag, employee_badge, occurred_at)
VALUES ($1, $2, $3, now())
`

const releaseLock = `UPDATE locks SET bicycle_id = NULL, status = 'FREE' WHERE id = $1`

// IntegrateLock writes the LockInsertion record and attaches the lock to
// the station (status FREE), as one unit.
func (r *Repository) IntegrateLock(ctx context.Context, stationID, lockID uuid.UUID, badge string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "begin integrate lock", err)
	}
	defer tx.Rollback()

	l, err := lockForUpdate(ctx, tx, lockID)
	if err != nil {
		return err
	}
	if !l.IntegrationReady() {
		return apperr.Newf(apperr.InvalidData, "lock in status %s cannot be integrated", l.Status)
	}
	if l.StationID != nil && *l.StationID != stationID {
		return apperr.New(apperr.Conflict, "lock is attached to another station")
	}

	var exists bool
	if err := tx.GetContext(ctx, &exists, stationExists, stationID); err != nil {
		return apperr.Wrap(apperr.Internal, "check station", err)
	}
	if !exists {
		return apperr.New(apperr.NotFound, "station not found")
	}

	if _, err := tx.ExecContext(ctx, insertLockInsertion, uuid.New(), badge, l.TagNumber); err != nil {
		return apperr.Wrap(apperr.Internal, "record lock insertion", err)
	}

	if _, err := tx.ExecContext(ctx, attachLock, stationID, l.ID); err != nil {
		return apperr.Wrap(apperr.Internal, "attach lock", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Internal, "commit integrate lock", err)
	}
	return nil
}

const stationExists = `SELECT EXISTS (SELECT 1 FROM stations WHERE id = $1)`

const insertLockInsertion = `
INSERT INTO lock_insertions (id, employee_badge, lock_tag, occurred_at)
VALUES ($1, $2, $3, now())
`

const attachLock = `UPDATE locks SET station_id = $1, status = 'FREE' WHERE id = $2`

// RemoveLock writes the LockRemoval record and detaches the lock from
// its station, moving it to IN_REPAIR or RETIRED, as one unit.
func (r *Repository) RemoveLock(ctx context.Context, stationID, lockID uuid.UUID, action bicycle.RepairerAction, badge string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "begin remove lock", err)
	}
	defer tx.Rollback()

	l, err := lockForUpdate(ctx, tx, lockID)
	if err != nil {
		return err
	}
	if l.BicycleID != nil {
		return apperr.New(apperr.Conflict, "lock still holds a bicycle")
	}
	if l.StationID == nil || *l.StationID != stationID {
		return apperr.New(apperr.NotFound, "lock is not attached to this station")
	}

	next, err := lock.StatusForRepairerAction(action)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, insertLockRemoval, uuid.New(), badge, l.TagNumber); err != nil {
		return apperr.Wrap(apperr.Internal, "record lock removal", err)
	}

	if _, err := tx.ExecContext(ctx, detachLock, next, l.ID); err != nil {
		return apperr.Wrap(apperr.Internal, "detach lock", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Internal, "commit remove lock", err)
	}
	return nil
}

const insertLockRemoval = `
INSERT INTO lock_removals (id, employee_badge, lock_tag, occurred_at)
VALUES ($1, $2, $3, now())
`

const detachLock = `UPDATE locks SET station_id = NULL, status = $1 WHERE id = $2`

// BicycleInsertions lists the insertion records for a bicycle tag.
func (r *Repository) BicycleInsertions(ctx context.Context, bicycleTag int) ([]BicycleInsertion, error) {
	var records []BicycleInsertion
	if err := r.db.SelectContext(ctx, &records, listBicycleInsertions, bicycleTag); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list bicycle insertions", err)
	}
	return records, nil
}

const listBicycleInsertions = `SELECT * FROM bicycle_insertions WHERE bicycle_tag = $1 ORDER BY occurred_at`

// BicycleRemovals lists the removal records for a bicycle tag.
func (r *Repository) BicycleRemovals(ctx context.Context, bicycleTag int) ([]BicycleRemoval, error) {
	var records []BicycleRemoval
	if err := r.db.SelectContext(ctx, &records, listBicycleRemovals, bicycleTag); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list bicycle removals", err)
	}
	return records, nil
}

const listBicycleRemovals = `SELECT * FROM bicycle_removals WHERE bicycle_tag = $1 ORDER BY occurred_at`

// LockInsertions lists the insertion records for a lock tag.
func (r *Repository) LockInsertions(ctx context.Context, lockTag int) ([]LockInsertion, error) {
	var records []LockInsertion
	if err := r.db.SelectContext(ctx, &records, listLockInsertions, lockTag); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list lock insertions", err)
	}
	return records, nil
}

const listLockInsertions = `SELECT * FROM lock_insertions WHERE lock_tag = $1 ORDER BY occurred_at`

// LockRemovals lists the removal records for a lock tag.
func (r *Repository) LockRemovals(ctx context.Context, lockTag int) ([]LockRemoval, error) {
	var records []LockRemoval
	if err := r.db.SelectContext(ctx, &records, listLockRemovals, lockTag); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list lock removals", err)
	}
	return records, nil
}

const listLockRemovals = `SELECT * FROM lock_removals WHERE lock_tag = $1 ORDER BY occurred_at`

func lockForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (lock.Lock, error) {
	var l lock.Lock
	err := tx.GetContext(ctx, &l, getLockForUpdate, id)
	if errors.Is(err, sql.ErrNoRows) {
		return lock.Lock{}, apperr.New(apperr.NotFound, "lock not found")
	}
	if err != nil {
		return lock.Lock{}, apperr.Wrap(apperr.Internal, "get lock", err)
	}
	return l, nil
}

const getLockForUpdate = `SELECT * FROM locks WHERE id = $1 AND status <> 'DELETED' FOR UPDATE`

func bicycleForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (bicycle.Bicycle, error) {
	var b bicycle.Bicycle
	err := tx.GetContext(ctx, &b, getBicycleForUpdate, id)
	if errors.Is(err, sql.ErrNoRows) {
		return bicycle.Bicycle{}, apperr.New(apperr.NotFound, "bicycle not found")
	}
	if err != nil {
		return bicycle.Bicycle{}, apperr.Wrap(apperr.Internal, "get bicycle", err)
	}
	return b, nil
}

const getBicycleForUpdate = `SELECT * FROM bicycles WHERE id = $1 AND status <> 'DELETED' FOR UPDATE`
