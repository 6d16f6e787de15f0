package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"maintdesk/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newPlanTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.PreventivePlan{}, &models.PlanTask{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// stubGenerator implements TextGenerator for tests.
type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}

func TestPlanService_CreateAndGet(t *testing.T) {
	db := newPlanTestDB(t)
	svc := NewPlanService(db, nil, nil)
	ctx := context.Background()

	next := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	plan, err := svc.CreatePlan(ctx, &PlanCreateRequest{
		Name:           "Inspeção semanal",
		Description:    "Rotina da prensa",
		AssetIDs:       []string{"asset-1", "asset-2"},
		FrequencyValue: 7,
		FrequencyUnit:  models.FrequencyUnitDays,
		Tasks:          []string{"A", "B", "C"},
		NextExecution:  &next,
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	if plan.Status != models.PlanStatusActive {
		t.Errorf("new plans must start active, got %q", plan.Status)
	}
	if plan.FrequencyType != models.FrequencyTypeTime {
		t.Errorf("frequency type must default to time, got %q", plan.FrequencyType)
	}
	if plan.AssetIDs != "asset-1,asset-2" {
		t.Errorf("unexpected asset ids %q", plan.AssetIDs)
	}
	if got := plan.FirstAssetID(); got != "asset-1" {
		t.Errorf("expected first asset asset-1, got %q", got)
	}

	if len(plan.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(plan.Tasks))
	}
	for i, want := range []string{"A", "B", "C"} {
		if plan.Tasks[i].Description != want || plan.Tasks[i].Position != i {
			t.Errorf("task[%d]: got %q at position %d", i, plan.Tasks[i].Description, plan.Tasks[i].Position)
		}
	}
}

func TestPlanService_UpdateReplacesTasks(t *testing.T) {
	db := newPlanTestDB(t)
	svc := NewPlanService(db, nil, nil)
	ctx := context.Background()

	plan, err := svc.CreatePlan(ctx, &PlanCreateRequest{
		Name:           "Plano",
		FrequencyValue: 1,
		FrequencyUnit:  models.FrequencyUnitMonths,
		Tasks:          []string{"antiga 1", "antiga 2"},
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	newName := "Plano revisado"
	updated, err := svc.UpdatePlan(ctx, plan.ID, &PlanUpdateRequest{
		Name:  &newName,
		Tasks: []string{"nova 1", "nova 2", "nova 3"},
	})
	if err != nil {
		t.Fatalf("update plan: %v", err)
	}

	if updated.Name != "Plano revisado" {
		t.Errorf("unexpected name %q", updated.Name)
	}
	if len(updated.Tasks) != 3 {
		t.Fatalf("expected 3 tasks after replace, got %d", len(updated.Tasks))
	}
	if updated.Tasks[0].Description != "nova 1" {
		t.Errorf("unexpected first task %q", updated.Tasks[0].Description)
	}

	// No orphan task rows remain.
	var taskCount int64
	db.Model(&models.PlanTask{}).Where("plan_id = ?", plan.ID).Count(&taskCount)
	if taskCount != 3 {
		t.Errorf("expected 3 task rows, got %d", taskCount)
	}
}

func TestPlanService_SetPlanStatus(t *testing.T) {
	db := newPlanTestDB(t)
	svc := NewPlanService(db, nil, nil)
	ctx := context.Background()

	plan, err := svc.CreatePlan(ctx, &PlanCreateRequest{
		Name:           "Plano",
		FrequencyValue: 7,
		FrequencyUnit:  models.FrequencyUnitDays,
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	if err := svc.SetPlanStatus(ctx, plan.ID, models.PlanStatusPaused); err != nil {
		t.Fatalf("pause: %v", err)
	}
	got, _ := svc.GetPlanByID(ctx, plan.ID)
	if got.Status != models.PlanStatusPaused {
		t.Errorf("expected paused, got %q", got.Status)
	}

	if err := svc.SetPlanStatus(ctx, plan.ID, models.PlanStatusActive); err != nil {
		t.Fatalf("resume: %v", err)
	}

	if err := svc.SetPlanStatus(ctx, plan.ID, "archived"); err == nil {
		t.Error("expected error for invalid status")
	}
	if err := svc.SetPlanStatus(ctx, "missing", models.PlanStatusPaused); err == nil {
		t.Error("expected error for missing plan")
	}
}

func TestPlanService_ActivePlansExcludesPaused(t *testing.T) {
	db := newPlanTestDB(t)
	svc := NewPlanService(db, nil, nil)
	ctx := context.Background()

	active, err := svc.CreatePlan(ctx, &PlanCreateRequest{
		Name: "Ativo", FrequencyValue: 7, FrequencyUnit: models.FrequencyUnitDays,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	paused, err := svc.CreatePlan(ctx, &PlanCreateRequest{
		Name: "Pausado", FrequencyValue: 7, FrequencyUnit: models.FrequencyUnitDays,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.SetPlanStatus(ctx, paused.ID, models.PlanStatusPaused); err != nil {
		t.Fatalf("pause: %v", err)
	}

	plans, err := svc.ActivePlans(ctx)
	if err != nil {
		t.Fatalf("active plans: %v", err)
	}
	if len(plans) != 1 || plans[0].ID != active.ID {
		t.Fatalf("expected only the active plan, got %d plans", len(plans))
	}
}

func TestPlanService_AdvancePlanTouchesOnlyExecutionFields(t *testing.T) {
	db := newPlanTestDB(t)
	svc := NewPlanService(db, nil, nil)
	ctx := context.Background()

	plan, err := svc.CreatePlan(ctx, &PlanCreateRequest{
		Name: "Plano", Description: "original",
		FrequencyValue: 7, FrequencyUnit: models.FrequencyUnitDays,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	last := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	next := last.AddDate(0, 0, 7)
	plan.LastExecution = &last
	plan.NextExecution = &next
	plan.Description = "adulterada" // must not be written

	if err := svc.AdvancePlan(ctx, plan); err != nil {
		t.Fatalf("advance: %v", err)
	}

	got, _ := svc.GetPlanByID(ctx, plan.ID)
	if got.LastExecution == nil || !got.LastExecution.Equal(last) {
		t.Errorf("expected last execution %v, got %v", last, got.LastExecution)
	}
	if got.NextExecution == nil || !got.NextExecution.Equal(next) {
		t.Errorf("expected next execution %v, got %v", next, got.NextExecution)
	}
	if got.Description != "original" {
		t.Errorf("advance must not touch other fields, description became %q", got.Description)
	}
}

func TestPlanService_SuggestTasks(t *testing.T) {
	db := newPlanTestDB(t)

	gen := &stubGenerator{text: "- Verificar óleo\n\n* Limpar filtro\n• Testar válvulas\n"}
	svc := NewPlanService(db, nil, gen)

	tasks, err := svc.SuggestTasks(context.Background(), "Plano mensal", "Compressor")
	if err != nil {
		t.Fatalf("suggest tasks: %v", err)
	}
	want := []string{"Verificar óleo", "Limpar filtro", "Testar válvulas"}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d: %v", len(want), len(tasks), tasks)
	}
	for i := range want {
		if tasks[i] != want[i] {
			t.Errorf("task[%d]: expected %q, got %q", i, want[i], tasks[i])
		}
	}

	failing := NewPlanService(db, nil, &stubGenerator{err: errors.New("upstream down")})
	if _, err := failing.SuggestTasks(context.Background(), "Plano", "Ativo"); err == nil {
		t.Error("expected error from failing generator")
	}

	unconfigured := NewPlanService(db, nil, nil)
	if _, err := unconfigured.SuggestTasks(context.Background(), "Plano", "Ativo"); err == nil {
		t.Error("expected error when generation is not configured")
	}
}
