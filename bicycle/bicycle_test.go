package bicycle

import (
	"testing"

	"github.com/pedalpoint/equipment-backend/internal/apperr"
)

func TestApplyRepairerAction(t *testing.T) {
	tests := []struct {
		name       string
		action     RepairerAction
		wantStatus Status
		wantErr    bool
	}{
		{name: "repair", action: ActionRepair, wantStatus: StatusInRepair},
		{name: "retirement", action: ActionRetirement, wantStatus: StatusRetired},
		{name: "unknown action", action: RepairerAction("SCRAP"), wantErr: true},
		{name: "empty action", action: RepairerAction(""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Bicycle{Status: StatusRepairRequested}
			err := b.ApplyRepairerAction(tt.action)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for action %q", tt.action)
				}
				if !apperr.IsKind(err, apperr.InvalidData) {
					t.Errorf("expected InvalidData, got %v", apperr.KindOf(err))
				}
				if b.Status != StatusRepairRequested {
					t.Errorf("status changed on failed action: %s", b.Status)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, b.Status)
			}
		})
	}
}

func TestIntegrationReady(t *testing.T) {
	ready := map[Status]bool{
		StatusNew:             true,
		StatusInRepair:        true,
		StatusAvailable:       false,
		StatusInUse:           false,
		StatusRepairRequested: false,
		StatusRetired:         false,
		StatusDeleted:         false,
	}

	for status, want := range ready {
		b := Bicycle{Status: status}
		if got := b.IntegrationReady(); got != want {
			t.Errorf("IntegrationReady for %s: expected %v, got %v", status, want, got)
		}
	}
}

func TestValidOverride(t *testing.T) {
	for _, s := range []Status{StatusAvailable, StatusInUse, StatusNew, StatusRetired, StatusRepairRequested, StatusInRepair} {
		if !ValidOverride(s) {
			t.Errorf("expected %s to be a valid override target", s)
		}
	}

	if ValidOverride(StatusDeleted) {
		t.Error("DELETED must not be reachable through the status override")
	}
	if ValidOverride(Status("BROKEN")) {
		t.Error("unknown status must not be a valid override target")
	}
}
