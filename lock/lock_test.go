package lock

import (
	"testing"

	"github.com/google/uuid"

	"github.com/pedalpoint/equipment-backend/bicycle"
	"github.com/pedalpoint/equipment-backend/internal/apperr"
)

// invariantHolds checks that a lock is OCCUPIED exactly when it holds a
// bicycle reference.
func invariantHolds(l Lock) bool {
	return (l.Status == StatusOccupied) == (l.BicycleID != nil)
}

func TestSeat(t *testing.T) {
	stationID := uuid.New()
	bicycleID := uuid.New()

	t.Run("free lock seats bicycle", func(t *testing.T) {
		l := Lock{Status: StatusFree, StationID: &stationID}
		if err := l.Seat(bicycleID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.Status != StatusOccupied {
			t.Errorf("expected OCCUPIED, got %s", l.Status)
		}
		if !l.Holds(bicycleID) {
			t.Error("expected lock to hold the bicycle")
		}
		if !invariantHolds(l) {
			t.Error("occupancy invariant violated")
		}
	})

	t.Run("occupied lock rejects second bicycle", func(t *testing.T) {
		held := uuid.New()
		l := Lock{Status: StatusOccupied, StationID: &stationID, BicycleID: &held}
		err := l.Seat(bicycleID)
		if !apperr.IsKind(err, apperr.Conflict) {
			t.Fatalf("expected Conflict, got %v", err)
		}
		if !l.Holds(held) {
			t.Error("held bicycle changed on failed seat")
		}
		if !invariantHolds(l) {
			t.Error("occupancy invariant violated")
		}
	})

	t.Run("unattached lock cannot seat", func(t *testing.T) {
		l := Lock{Status: StatusNew}
		err := l.Seat(bicycleID)
		if !apperr.IsKind(err, apperr.InvalidData) {
			t.Fatalf("expected InvalidData, got %v", err)
		}
		if !invariantHolds(l) {
			t.Error("occupancy invariant violated")
		}
	})
}

func TestRelease(t *testing.T) {
	stationID := uuid.New()
	bicycleID := uuid.New()

	t.Run("occupied lock releases", func(t *testing.T) {
		l := Lock{Status: StatusOccupied, StationID: &stationID, BicycleID: &bicycleID}
		if err := l.Release(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.Status != StatusFree {
			t.Errorf("expected FREE, got %s", l.Status)
		}
		if l.BicycleID != nil {
			t.Error("expected bicycle reference to be cleared")
		}
		if !invariantHolds(l) {
			t.Error("occupancy invariant violated")
		}
	})

	for _, status := range []Status{StatusNew, StatusFree, StatusInRepair, StatusRetired} {
		t.Run("release from "+string(status), func(t *testing.T) {
			l := Lock{Status: status, StationID: &stationID}
			err := l.Release()
			if !apperr.IsKind(err, apperr.InvalidData) {
				t.Fatalf("expected InvalidData, got %v", err)
			}
		})
	}
}

func TestStatusForRepairerAction(t *testing.T) {
	if s, err := StatusForRepairerAction(bicycle.ActionRepair); err != nil || s != StatusInRepair {
		t.Errorf("REPAIR: expected IN_REPAIR, got %s, %v", s, err)
	}
	if s, err := StatusForRepairerAction(bicycle.ActionRetirement); err != nil || s != StatusRetired {
		t.Errorf("RETIREMENT: expected RETIRED, got %s, %v", s, err)
	}
	if _, err := StatusForRepairerAction(bicycle.RepairerAction("SELL")); !apperr.IsKind(err, apperr.InvalidData) {
		t.Errorf("expected InvalidData for unknown action, got %v", err)
	}
}

func TestValidOverride(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusFree, StatusOccupied, StatusInRepair, StatusRetired} {
		if !ValidOverride(s) {
			t.Errorf("expected %s to be a valid override target", s)
		}
	}
	if ValidOverride(StatusDeleted) {
		t.Error("DELETED must not be reachable through the status override")
	}
}

func TestIntegrationReady(t *testing.T) {
	ready := map[Status]bool{
		StatusNew:      true,
		StatusInRepair: true,
		StatusFree:     false,
		StatusOccupied: false,
		StatusRetired:  false,
		StatusDeleted:  false,
	}

	for status, want := range ready {
		l := Lock{Status: status}
		if got := l.IntegrationReady(); got != want {
			t.Errorf("IntegrationReady for %s: expected %v, got %v", status, want, got)
		}
	}
}
