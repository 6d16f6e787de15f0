package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maintdesk/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TitlePrefix marks tickets generated from preventive plans.
const TitlePrefix = "[Preventiva] "

// Snapshot is the read-only input to one evaluation: the current plans, assets
// and technicians as loaded by the caller. The engine never mutates it.
type Snapshot struct {
	Plans       []models.PreventivePlan
	Assets      []models.Asset
	Technicians []models.Technician
}

// Result holds the records produced by one evaluation. Tickets and Plans are
// aligned 1:1 per plan that advanced, in input order. Persisting them is the
// caller's responsibility.
type Result struct {
	Tickets []models.MaintenanceTicket
	Plans   []models.PreventivePlan
}

// Engine decides which preventive plans are due and builds the resulting
// tickets and plan advancements. Apart from the lock claim it is pure: it
// performs no persistence and returns new records only.
type Engine struct {
	locks    LockGateway
	strategy AssignmentStrategy
	logger   *logrus.Logger
}

// NewEngine creates the scheduler engine. A nil strategy falls back to uniform
// random assignment.
func NewEngine(locks LockGateway, strategy AssignmentStrategy, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	if strategy == nil {
		strategy = NewRandomStrategy()
	}
	return &Engine{locks: locks, strategy: strategy, logger: logger}
}

// Evaluate walks the plans in input order and, for each active due plan whose
// execution lock is claimed, emits a generated ticket and the advanced plan
// record. Lock contention and gateway errors cause a silent skip for that plan
// only (fail-closed); one plan never blocks the rest of the batch.
func (e *Engine) Evaluate(ctx context.Context, now time.Time, snap Snapshot) Result {
	result := Result{}

	for i := range snap.Plans {
		plan := snap.Plans[i]

		if plan.Status != models.PlanStatusActive {
			continue
		}
		if !plan.AutoGenerateEnabled() {
			continue
		}
		// Usage-based recurrence is not driven by the clock.
		if plan.FrequencyType != "" && plan.FrequencyType != models.FrequencyTypeTime {
			continue
		}

		// A missing due date means the plan is due immediately.
		nextDue := now
		if plan.NextExecution != nil {
			nextDue = *plan.NextExecution
		}
		if now.Before(nextDue) {
			continue
		}

		if err := e.locks.Claim(ctx, plan.ID, DayKey(now)); err != nil {
			if errors.Is(err, ErrAlreadyClaimed) {
				e.logger.Debugf("Plan %s already generated for %s, skipping", plan.ID, DayKey(now))
			} else {
				// Treat store failures as already handled to avoid duplicates.
				e.logger.Warnf("Lock claim failed for plan %s, skipping this cycle: %v", plan.ID, err)
			}
			continue
		}

		ticket := e.buildTicket(now, &plan, snap)
		result.Tickets = append(result.Tickets, ticket)
		result.Plans = append(result.Plans, advancePlan(plan, now, nextDue))

		e.logger.Infof("Generated preventive ticket %s for plan %s (asset %s)", ticket.ID, plan.ID, ticket.AssetID)
	}

	return result
}

// buildTicket constructs the work order for a due plan per the generation
// contract: checklist copied from the plan tasks in order, medium urgency and
// priority, status derived from whether a technician was chosen, and system
// activity entries recording what happened.
func (e *Engine) buildTicket(now time.Time, plan *models.PreventivePlan, snap Snapshot) models.MaintenanceTicket {
	asset := findAsset(snap.Assets, plan.FirstAssetID())

	assetID := models.UnknownAssetID
	assetName := "equipamento desconhecido"
	if asset != nil {
		assetID = asset.ID
		assetName = asset.Name
	}

	planID := plan.ID
	ticket := models.MaintenanceTicket{
		ID:          uuid.NewString(),
		Title:       TitlePrefix + plan.Name,
		Description: fmt.Sprintf("Manutenção preventiva de %s.\nPlano: %s\n%s", assetName, plan.Name, plan.Description),
		AssetID:     assetID,
		PlanID:      &planID,
		Status:      models.TicketStatusOpen,
		Urgency:     models.LevelMedium,
		Priority:    models.LevelMedium,
		Origin:      models.TicketOriginPreventive,
		TotalCost:   0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for i, task := range plan.Tasks {
		ticket.Checklist = append(ticket.Checklist, models.ChecklistItem{
			Position:    i,
			Description: task.Description,
			Checked:     false,
			Category:    models.ChecklistCategoryExecution,
		})
	}

	ticket.Activities = append(ticket.Activities, models.TicketActivity{
		Type:      models.ActivityTypeSystem,
		Message:   fmt.Sprintf("Chamado gerado automaticamente pelo plano preventivo %q", plan.Name),
		CreatedAt: now,
	})

	if tech := e.strategy.Select(asset, snap.Technicians); tech != nil {
		techID := tech.ID
		ticket.TechnicianID = &techID
		ticket.Status = models.TicketStatusAssigned
		ticket.Activities = append(ticket.Activities, models.TicketActivity{
			Type:      models.ActivityTypeSystem,
			Message:   fmt.Sprintf("Atribuído automaticamente a %s", tech.Name),
			CreatedAt: now,
		})
	}

	return ticket
}

// advancePlan returns the plan record with lastExecution set to now and
// nextExecution advanced from the prior due date, not from now, so a delayed
// evaluation does not drift the cadence. Unrecognized frequency units leave
// the due date unchanged.
func advancePlan(plan models.PreventivePlan, now, nextDue time.Time) models.PreventivePlan {
	next := nextDue
	switch plan.FrequencyUnit {
	case models.FrequencyUnitDays:
		next = nextDue.AddDate(0, 0, plan.FrequencyValue)
	case models.FrequencyUnitMonths:
		next = nextDue.AddDate(0, plan.FrequencyValue, 0)
	case models.FrequencyUnitYears:
		next = nextDue.AddDate(plan.FrequencyValue, 0, 0)
	}

	lastExec := now
	plan.LastExecution = &lastExec
	plan.NextExecution = &next
	return plan
}

func findAsset(assets []models.Asset, id string) *models.Asset {
	if id == "" {
		return nil
	}
	for i := range assets {
		if assets[i].ID == id {
			return &assets[i]
		}
	}
	return nil
}
