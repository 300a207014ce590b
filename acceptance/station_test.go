package acceptance

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/pedalpoint/equipment-backend/bicycle"
	"github.com/pedalpoint/equipment-backend/lock"
)

type stationResponse struct {
	ID          uuid.UUID `json:"id"`
	Location    string    `json:"localizacao"`
	Description string    `json:"descricao"`
}

func TestCreateStation(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	w := ts.POST("/totem", map[string]interface{}{
		"localizacao": "Copacabana", "descricao": "Posto 4",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var resp stationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Location != "Copacabana" {
		t.Errorf("expected location Copacabana, got %s", resp.Location)
	}
}

func TestCreateStation_MissingLocation(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	w := ts.POST("/totem", map[string]interface{}{"descricao": "Posto 4"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, w.Code, w.Body.String())
	}
}

func TestUpdateStation(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	id := ts.CreateTestStation(t, "Copacabana")

	w := ts.PUT("/totem/"+id.String(), map[string]interface{}{
		"localizacao": "Ipanema", "descricao": "Posto 9",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp stationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Location != "Ipanema" || resp.Description != "Posto 9" {
		t.Errorf("unexpected station after update: %+v", resp)
	}
}

func TestDeleteStation(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	id := ts.CreateTestStation(t, "Copacabana")

	w := ts.DELETE("/totem/" + id.String())
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if w := ts.GET("/totem/" + id.String()); w.Code != http.StatusNotFound {
		t.Errorf("expected deleted station to 404, got %d", w.Code)
	}

	// Stations delete for real; no soft-delete row remains.
	var count int
	if err := ts.DB.Get(&count, "SELECT count(*) FROM stations WHERE id = $1", id); err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	if count != 0 {
		t.Errorf("expected station row removed, found %d", count)
	}
}

func TestDeleteStation_WithLocksConflicts(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	id := ts.CreateTestStation(t, "Copacabana")
	ts.CreateTestLock(t, 9, lock.StatusFree, &id)

	w := ts.DELETE("/totem/" + id.String())
	if w.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
	}
}

func TestDeleteStation_IgnoresDeletedLocks(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	id := ts.CreateTestStation(t, "Copacabana")
	ts.CreateTestLock(t, 9, lock.StatusDeleted, &id)

	w := ts.DELETE("/totem/" + id.String())
	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
}

func TestStationLocksAndBicycles(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	id := ts.CreateTestStation(t, "Copacabana")
	other := ts.CreateTestStation(t, "Ipanema")

	l1 := ts.CreateTestLock(t, 9, lock.StatusFree, &id)
	ts.CreateTestLock(t, 10, lock.StatusFree, &id)
	ts.CreateTestLock(t, 11, lock.StatusFree, &other)

	b := ts.CreateTestBicycle(t, 501, bicycle.StatusAvailable)
	ts.SeatBicycleInDB(t, l1, b)

	w := ts.GET("/totem/" + id.String() + "/trancas")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	var locks []lockResponse
	if err := json.Unmarshal(w.Body.Bytes(), &locks); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(locks) != 2 {
		t.Errorf("expected 2 locks at the station, got %d", len(locks))
	}

	w = ts.GET("/totem/" + id.String() + "/bicicletas")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	var bicycles []bicycleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &bicycles); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(bicycles) != 1 || bicycles[0].ID != b {
		t.Errorf("expected the seated bicycle only, got %+v", bicycles)
	}
}
