package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"maintdesk/internal/models"
	"maintdesk/internal/scheduler"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Assignment policy names accepted in config.
const (
	AssignmentRandom    = "random"
	AssignmentLeastBusy = "least_busy"
)

// SchedulerStatus reports the outcome of the most recent evaluation pass.
type SchedulerStatus struct {
	Running       bool       `json:"running"`
	Runs          int64      `json:"runs"`
	LastRun       *time.Time `json:"last_run"`
	LastGenerated int        `json:"last_generated"`
	LastError     string     `json:"last_error,omitempty"`
}

// SchedulerService owns the periodic evaluation loop: it snapshots plans,
// assets and technicians, runs the engine, persists the returned records and
// triggers assignment notifications. The engine decides, this service persists.
type SchedulerService struct {
	db          *gorm.DB
	logger      *logrus.Logger
	locks       scheduler.LockGateway
	plans       *PlanService
	tickets     *TicketService
	technicians *TechnicianService
	notifier    AssignmentNotifier
	hub         *WebSocketHub
	assignment  string

	cron    *cron.Cron
	entryID cron.EntryID

	mu     sync.Mutex
	status SchedulerStatus
}

// NewSchedulerService wires the scheduler over the shared database.
func NewSchedulerService(
	db *gorm.DB,
	logger *logrus.Logger,
	plans *PlanService,
	tickets *TicketService,
	technicians *TechnicianService,
	notifier AssignmentNotifier,
	hub *WebSocketHub,
	assignment string,
) *SchedulerService {
	if logger == nil {
		logger = logrus.New()
	}
	if assignment == "" {
		assignment = AssignmentRandom
	}
	return &SchedulerService{
		db:          db,
		logger:      logger,
		locks:       scheduler.NewGormLockGateway(db, logger),
		plans:       plans,
		tickets:     tickets,
		technicians: technicians,
		notifier:    notifier,
		hub:         hub,
		assignment:  assignment,
	}
}

// Start begins the periodic evaluation loop. Overlapping triggers are safe:
// the execution lock serializes generation per (plan, day) even across
// processes.
func (s *SchedulerService) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	s.cron = cron.New()
	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.logger.Errorf("Scheduler pass failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule evaluation loop: %w", err)
	}
	s.entryID = entryID
	s.cron.Start()

	s.mu.Lock()
	s.status.Running = true
	s.mu.Unlock()

	s.logger.Infof("Preventive scheduler started, interval %s, assignment policy %s", interval, s.assignment)
	return nil
}

// Stop halts the loop and waits for a running pass to finish.
func (s *SchedulerService) Stop() {
	if s.cron != nil {
		s.cron.Remove(s.entryID)
		ctx := s.cron.Stop()
		<-ctx.Done()
	}

	s.mu.Lock()
	s.status.Running = false
	s.mu.Unlock()

	s.logger.Info("Preventive scheduler stopped")
}

// RunOnce performs a single evaluation pass and persists its output. Returns
// the number of tickets generated. Persistence failures are isolated per
// record: a failed ticket insert is logged and skipped, it never aborts the
// batch (the claimed lock means that plan's cycle is lost for the day, a
// documented limitation of the lock-as-insert design).
func (s *SchedulerService) RunOnce(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		s.recordRun(now, 0, err)
		return 0, err
	}

	strategy, err := s.buildStrategy(ctx)
	if err != nil {
		s.recordRun(now, 0, err)
		return 0, err
	}

	engine := scheduler.NewEngine(s.locks, strategy, s.logger)
	result := engine.Evaluate(ctx, now, snap)

	generated := 0
	for i := range result.Tickets {
		ticket := result.Tickets[i]
		plan := result.Plans[i]

		if err := s.tickets.PersistGenerated(ctx, &ticket); err != nil {
			s.logger.Errorf("Failed to persist ticket for plan %s: %v", plan.ID, err)
			continue
		}
		generated++

		if err := s.plans.AdvancePlan(ctx, &plan); err != nil {
			s.logger.Errorf("Failed to advance plan %s: %v", plan.ID, err)
		} else if s.hub != nil {
			s.hub.Broadcast(EventPlanUpdated, map[string]interface{}{
				"plan_id":        plan.ID,
				"next_execution": plan.NextExecution,
			})
		}

		s.notifyAssignment(ctx, &ticket, snap.Technicians)
	}

	if generated > 0 {
		s.logger.Infof("Scheduler pass generated %d ticket(s) from %d plan(s)", generated, len(snap.Plans))
	}

	s.recordRun(now, generated, nil)
	return generated, nil
}

// Status returns a copy of the current run status.
func (s *SchedulerService) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// loadSnapshot reads the evaluation input: active plans with ordered tasks,
// all assets, all technicians. The snapshot is read-only for the engine.
func (s *SchedulerService) loadSnapshot(ctx context.Context) (scheduler.Snapshot, error) {
	plans, err := s.plans.ActivePlans(ctx)
	if err != nil {
		return scheduler.Snapshot{}, err
	}

	var assets []models.Asset
	if err := s.db.WithContext(ctx).Find(&assets).Error; err != nil {
		return scheduler.Snapshot{}, fmt.Errorf("failed to load assets: %w", err)
	}

	var technicians []models.Technician
	if err := s.db.WithContext(ctx).Find(&technicians).Error; err != nil {
		return scheduler.Snapshot{}, fmt.Errorf("failed to load technicians: %w", err)
	}

	return scheduler.Snapshot{Plans: plans, Assets: assets, Technicians: technicians}, nil
}

func (s *SchedulerService) buildStrategy(ctx context.Context) (scheduler.AssignmentStrategy, error) {
	switch s.assignment {
	case AssignmentLeastBusy:
		loads, err := s.technicians.OpenTicketLoads(ctx)
		if err != nil {
			return nil, err
		}
		return scheduler.NewLeastBusyStrategy(loads), nil
	default:
		return scheduler.NewRandomStrategy(), nil
	}
}

func (s *SchedulerService) notifyAssignment(ctx context.Context, ticket *models.MaintenanceTicket, technicians []models.Technician) {
	if s.notifier == nil || ticket.TechnicianID == nil {
		return
	}

	for i := range technicians {
		if technicians[i].ID == *ticket.TechnicianID {
			if err := s.notifier.NotifyAssignment(ctx, &technicians[i], ticket); err != nil {
				s.logger.Warnf("Assignment notification failed for ticket %s: %v", ticket.ID, err)
			}
			return
		}
	}
}

func (s *SchedulerService) recordRun(at time.Time, generated int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Runs++
	s.status.LastRun = &at
	s.status.LastGenerated = generated
	if err != nil {
		s.status.LastError = err.Error()
	} else {
		s.status.LastError = ""
	}
}
