// Package lock holds the docking lock ("tranca") model, its status
// machine and its repository. A lock belongs to at most one station and
// holds at most one bicycle.
package lock

import (
	"github.com/google/uuid"

	"github.com/pedalpoint/equipment-backend/bicycle"
	"github.com/pedalpoint/equipment-backend/internal/apperr"
)

type Status string

const (
	StatusNew      Status = "NEW"
	StatusFree     Status = "FREE"
	StatusOccupied Status = "OCCUPIED"
	StatusInRepair Status = "IN_REPAIR"
	StatusRetired  Status = "RETIRED"
	StatusDeleted  Status = "DELETED"
)

var overrideStatuses = map[Status]bool{
	StatusNew:      true,
	StatusFree:     true,
	StatusOccupied: true,
	StatusInRepair: true,
	StatusRetired:  true,
}

// ValidOverride reports whether s is a legal target for the
// administrative status override.
func ValidOverride(s Status) bool {
	return overrideStatuses[s]
}

// StatusForRepairerAction maps a removal outcome to the lock's next
// status.
func StatusForRepairerAction(action bicycle.RepairerAction) (Status, error) {
	switch action {
	case bicycle.ActionRepair:
		return StatusInRepair, nil
	case bicycle.ActionRetirement:
		return StatusRetired, nil
	}
	return "", apperr.Newf(apperr.InvalidData, "unknown repairer action %q", action)
}

type Lock struct {
	ID              uuid.UUID `db:"id"`
	TagNumber       int       `db:"tag_number"`
	Location        string    `db:"location"`
	ManufactureYear int       `db:"manufacture_year"`
	Model           string    `db:"model"`
	Status          Status    `db:"status"`
	// BicycleID is a weak reference to the bicycle currently seated in
	// the lock. Invariant: set exactly when Status is OCCUPIED.
	BicycleID *uuid.UUID `db:"bicycle_id"`
	// StationID is a weak reference to the station the lock is attached
	// to. A lock without a station can never be FREE or OCCUPIED.
	StationID *uuid.UUID `db:"station_id"`
}

// IntegrationReady reports whether the lock may be attached to a station
// by the integration workflow.
func (l Lock) IntegrationReady() bool {
	return l.Status == StatusNew || l.Status == StatusInRepair
}

// Holds reports whether the given bicycle is seated in this lock.
func (l Lock) Holds(bicycleID uuid.UUID) bool {
	return l.BicycleID != nil && *l.BicycleID == bicycleID
}

// Seat closes the lock around a bicycle. Mutates the in-memory record
// only; the caller persists both sides inside its transaction.
func (l *Lock) Seat(bicycleID uuid.UUID) error {
	if l.Status == StatusOccupied {
		return apperr.New(apperr.Conflict, "lock is already occupied")
	}
	if l.StationID == nil {
		return apperr.New(apperr.InvalidData, "lock is not attached to a station")
	}
	l.BicycleID = &bicycleID
	l.Status = StatusOccupied
	return nil
}

// Release opens the lock, freeing whatever bicycle it held.
func (l *Lock) Release() error {
	if l.Status != StatusOccupied {
		return apperr.New(apperr.InvalidData, "lock is not occupied")
	}
	l.BicycleID = nil
	l.Status = StatusFree
	return nil
}
