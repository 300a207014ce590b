// Package bicycle holds the bicycle model, its status machine and its
// repository.
package bicycle

import (
	"github.com/google/uuid"

	"github.com/pedalpoint/equipment-backend/internal/apperr"
)

type Status string

const (
	StatusNew             Status = "NEW"
	StatusAvailable       Status = "AVAILABLE"
	StatusInUse           Status = "IN_USE"
	StatusRepairRequested Status = "REPAIR_REQUESTED"
	StatusInRepair        Status = "IN_REPAIR"
	StatusRetired         Status = "RETIRED"
	// StatusDeleted is a soft-delete sentinel. Deleted bicycles stay in
	// the table but are excluded from every list and lookup.
	StatusDeleted Status = "DELETED"
)

// overrideStatuses are the targets the administrative status endpoint may
// set directly. DELETED is reachable only through the guarded soft delete.
var overrideStatuses = map[Status]bool{
	StatusAvailable:       true,
	StatusInUse:           true,
	StatusNew:             true,
	StatusRetired:         true,
	StatusRepairRequested: true,
	StatusInRepair:        true,
}

// ValidOverride reports whether s is a legal target for the
// administrative status override.
func ValidOverride(s Status) bool {
	return overrideStatuses[s]
}

// RepairerAction is the outcome a repairer chooses when equipment leaves
// the network: send it to repair or retire it.
type RepairerAction string

const (
	ActionRepair     RepairerAction = "REPAIR"
	ActionRetirement RepairerAction = "RETIREMENT"
)

type Bicycle struct {
	ID    uuid.UUID `db:"id"`
	Brand string    `db:"brand"`
	Model string    `db:"model"`
	Year  int       `db:"year"`
	// TagNumber is the unique hardware tag stamped on the frame.
	TagNumber int    `db:"tag_number"`
	Status    Status `db:"status"`
}

// IntegrationReady reports whether the bicycle may be seated into a lock
// by the integration workflow. Only new and freshly repaired bicycles
// qualify.
func (b Bicycle) IntegrationReady() bool {
	return b.Status == StatusNew || b.Status == StatusInRepair
}

// ApplyRepairerAction advances the status according to the repairer's
// choice. It mutates the in-memory record only; persisting is the
// caller's job, inside its transaction.
func (b *Bicycle) ApplyRepairerAction(action RepairerAction) error {
	switch action {
	case ActionRepair:
		b.Status = StatusInRepair
	case ActionRetirement:
		b.Status = StatusRetired
	default:
		return apperr.Newf(apperr.InvalidData, "unknown repairer action %q", action)
	}
	return nil
}
