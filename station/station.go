// Package station holds the docking station ("totem") model and its
// repository. A station hosts zero or more locks by back-reference.
package station

import (
	"github.com/google/uuid"
)

type Station struct {
	ID          uuid.UUID `db:"id"`
	Location    string    `db:"location"`
	Description string    `db:"description"`
}
