package scheduler

import (
	"testing"

	"maintdesk/internal/models"
)

func TestRandomStrategy_Select(t *testing.T) {
	strategy := NewRandomStrategyWithSeed(7)

	if got := strategy.Select(nil, nil); got != nil {
		t.Errorf("empty pool: expected nil, got %v", got)
	}

	onlyInactive := []models.Technician{
		{ID: "t1", Status: models.TechnicianStatusInactive},
		{ID: "t2", Status: models.TechnicianStatusOnLeave},
	}
	if got := strategy.Select(nil, onlyInactive); got != nil {
		t.Errorf("no active technicians: expected nil, got %v", got)
	}

	pool := []models.Technician{
		{ID: "t1", Status: models.TechnicianStatusInactive},
		{ID: "t2", Status: models.TechnicianStatusActive},
		{ID: "t3", Status: models.TechnicianStatusActive},
	}
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		pick := strategy.Select(nil, pool)
		if pick == nil {
			t.Fatal("expected a pick from a pool with active technicians")
		}
		if pick.ID == "t1" {
			t.Fatal("inactive technician picked")
		}
		seen[pick.ID] = true
	}
	if !seen["t2"] || !seen["t3"] {
		t.Errorf("expected both active technicians to be picked over 100 draws, saw %v", seen)
	}
}

func TestLeastBusyStrategy_Select(t *testing.T) {
	pool := []models.Technician{
		{ID: "busy", Status: models.TechnicianStatusActive},
		{ID: "idle", Status: models.TechnicianStatusActive},
		{ID: "gone", Status: models.TechnicianStatusInactive},
	}

	strategy := NewLeastBusyStrategy(map[string]int{"busy": 5, "idle": 1, "gone": 0})
	pick := strategy.Select(nil, pool)
	if pick == nil || pick.ID != "idle" {
		t.Fatalf("expected idle technician, got %v", pick)
	}

	// Ties resolve to input order.
	tied := NewLeastBusyStrategy(map[string]int{"busy": 2, "idle": 2})
	pick = tied.Select(nil, pool)
	if pick == nil || pick.ID != "busy" {
		t.Fatalf("expected first technician on tie, got %v", pick)
	}

	// A nil load map treats everyone as idle.
	empty := NewLeastBusyStrategy(nil)
	pick = empty.Select(nil, pool)
	if pick == nil || pick.ID != "busy" {
		t.Fatalf("expected first active technician with no loads, got %v", pick)
	}

	if got := empty.Select(nil, nil); got != nil {
		t.Errorf("empty pool: expected nil, got %v", got)
	}
}
