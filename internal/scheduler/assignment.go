package scheduler

import (
	"math/rand"
	"time"

	"maintdesk/internal/models"
)

// AssignmentStrategy picks zero or one technician to receive a generated
// ticket. Implementations must only return technicians with active status and
// return nil when none are eligible.
type AssignmentStrategy interface {
	Select(asset *models.Asset, technicians []models.Technician) *models.Technician
}

// activeTechnicians filters to technicians eligible for auto-assignment.
func activeTechnicians(technicians []models.Technician) []models.Technician {
	eligible := []models.Technician{}
	for _, t := range technicians {
		if t.IsActive() {
			eligible = append(eligible, t)
		}
	}
	return eligible
}

// RandomStrategy assigns uniformly at random among active technicians. It is
// the baseline load-distribution policy; skill/workload aware matching can be
// substituted without touching the engine.
type RandomStrategy struct {
	rng *rand.Rand
}

// NewRandomStrategy creates the baseline strategy with its own rng.
func NewRandomStrategy() *RandomStrategy {
	return &RandomStrategy{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewRandomStrategyWithSeed creates a deterministic strategy for tests.
func NewRandomStrategyWithSeed(seed int64) *RandomStrategy {
	return &RandomStrategy{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomStrategy) Select(asset *models.Asset, technicians []models.Technician) *models.Technician {
	eligible := activeTechnicians(technicians)
	if len(eligible) == 0 {
		return nil
	}
	pick := eligible[s.rng.Intn(len(eligible))]
	return &pick
}

// LeastBusyStrategy picks the active technician with the fewest open tickets.
// Loads are snapshotted by the caller before evaluation so the strategy stays
// free of database access. Ties resolve to the first technician in input order.
type LeastBusyStrategy struct {
	Loads map[string]int // technician id -> open ticket count
}

// NewLeastBusyStrategy creates a strategy over a precomputed load map.
func NewLeastBusyStrategy(loads map[string]int) *LeastBusyStrategy {
	if loads == nil {
		loads = map[string]int{}
	}
	return &LeastBusyStrategy{Loads: loads}
}

func (s *LeastBusyStrategy) Select(asset *models.Asset, technicians []models.Technician) *models.Technician {
	eligible := activeTechnicians(technicians)
	if len(eligible) == 0 {
		return nil
	}

	best := 0
	for i := 1; i < len(eligible); i++ {
		if s.Loads[eligible[i].ID] < s.Loads[eligible[best].ID] {
			best = i
		}
	}
	pick := eligible[best]
	return &pick
}
