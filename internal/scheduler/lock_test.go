package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"maintdesk/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newLockTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.PlanExecution{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func TestGormLockGateway_ClaimOnce(t *testing.T) {
	db := newLockTestDB(t)
	gateway := NewGormLockGateway(db, nil)
	ctx := context.Background()

	if err := gateway.Claim(ctx, "plan-1", "2025-03-10"); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	err := gateway.Claim(ctx, "plan-1", "2025-03-10")
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("second claim: expected ErrAlreadyClaimed, got %v", err)
	}

	// Other plans and other days are independent.
	if err := gateway.Claim(ctx, "plan-2", "2025-03-10"); err != nil {
		t.Errorf("different plan, same day: %v", err)
	}
	if err := gateway.Claim(ctx, "plan-1", "2025-03-11"); err != nil {
		t.Errorf("same plan, different day: %v", err)
	}

	var count int64
	db.Model(&models.PlanExecution{}).Count(&count)
	if count != 3 {
		t.Errorf("expected 3 lock rows, got %d", count)
	}
}

func TestGormLockGateway_ConcurrentClaims(t *testing.T) {
	db := newLockTestDB(t)
	gateway := NewGormLockGateway(db, nil)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- gateway.Claim(ctx, "plan-1", "2025-03-10")
		}()
	}
	wg.Wait()
	close(results)

	won := 0
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAlreadyClaimed):
			// expected for the losers
		default:
			t.Errorf("unexpected claim error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one winning claim, got %d", won)
	}
}

// With a real database-backed gateway, two evaluations of the same snapshot on
// the same day must yield exactly one ticket for the plan.
func TestEngineWithGormGateway_ExactlyOncePerDay(t *testing.T) {
	db := newLockTestDB(t)
	engine := NewEngine(NewGormLockGateway(db, nil), NewRandomStrategyWithSeed(1), nil)

	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	snap := Snapshot{Plans: []models.PreventivePlan{activePlan("plan-1", timePtr(now))}}

	first := engine.Evaluate(context.Background(), now, snap)
	second := engine.Evaluate(context.Background(), now, snap)

	if len(first.Tickets)+len(second.Tickets) != 1 {
		t.Fatalf("expected exactly one ticket across both runs, got %d",
			len(first.Tickets)+len(second.Tickets))
	}

	// The next calendar day opens a fresh lock window.
	tomorrow := now.AddDate(0, 0, 1)
	third := engine.Evaluate(context.Background(), tomorrow, snap)
	if len(third.Tickets) != 1 {
		t.Fatalf("expected 1 ticket on the next day, got %d", len(third.Tickets))
	}
}
