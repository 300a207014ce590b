package network

import (
	"time"

	"github.com/google/uuid"
)

// Audit records are append-only: written exactly once inside a workflow
// transaction, never updated or deleted. They are the durable evidence
// of equipment moving into and out of the network.

// BicycleInsertion records a bicycle being seated into a lock.
type BicycleInsertion struct {
	ID         uuid.UUID `db:"id"`
	BicycleTag int       `db:"bicycle_tag"`
	LockTag    int       `db:"lock_tag"`
	OccurredAt time.Time `db:"occurred_at"`
}

// BicycleRemoval records a bicycle leaving the network, attributed to
// the employee who performed it.
type BicycleRemoval struct {
	ID            uuid.UUID `db:"id"`
	BicycleTag    int       `db:"bicycle_tag"`
	EmployeeBadge string    `db:"employee_badge"`
	OccurredAt    time.Time `db:"occurred_at"`
}

// LockInsertion records a lock being attached to a station.
type LockInsertion struct {
	ID            uuid.UUID `db:"id"`
	EmployeeBadge string    `db:"employee_badge"`
	LockTag       int       `db:"lock_tag"`
	OccurredAt    time.Time `db:"occurred_at"`
}

// LockRemoval records a lock being detached from a station.
type LockRemoval struct {
	ID            uuid.UUID `db:"id"`
	EmployeeBadge string    `db:"employee_badge"`
	LockTag       int       `db:"lock_tag"`
	OccurredAt    time.Time `db:"occurred_at"`
}
