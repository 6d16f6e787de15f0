package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"maintdesk/internal/models"
	"maintdesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newPlanHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.PreventivePlan{}, &models.PlanTask{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func newPlanTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewPlanHandler(services.NewPlanService(db, nil, nil), testLogger())

	router := gin.New()
	api := router.Group("/api")
	RegisterPlanRoutes(api, handler)
	return router
}

func TestPlanHandler_CreatePlan(t *testing.T) {
	router := newPlanTestRouter(newPlanHandlerTestDB(t))

	payload := map[string]interface{}{
		"name":            "Inspeção semanal",
		"frequency_value": 7,
		"frequency_unit":  "days",
		"tasks":           []string{"A", "B"},
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest("POST", "/api/plans", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var plan models.PreventivePlan
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Equal(t, "Inspeção semanal", plan.Name)
	assert.Equal(t, models.PlanStatusActive, plan.Status)
	assert.Len(t, plan.Tasks, 2)
}

func TestPlanHandler_CreatePlan_MissingFields(t *testing.T) {
	router := newPlanTestRouter(newPlanHandlerTestDB(t))

	req := httptest.NewRequest("POST", "/api/plans", bytes.NewReader([]byte(`{"name":"sem frequência"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanHandler_PauseAndResume(t *testing.T) {
	db := newPlanHandlerTestDB(t)
	router := newPlanTestRouter(db)

	plan := models.PreventivePlan{
		ID: "plan-1", Name: "Plano", Status: models.PlanStatusActive,
		FrequencyType: models.FrequencyTypeTime, FrequencyValue: 7, FrequencyUnit: models.FrequencyUnitDays,
	}
	db.Create(&plan)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/plans/plan-1/pause", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.PreventivePlan
	db.First(&got, "id = ?", "plan-1")
	assert.Equal(t, models.PlanStatusPaused, got.Status)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/plans/plan-1/resume", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&got, "id = ?", "plan-1")
	assert.Equal(t, models.PlanStatusActive, got.Status)

	// Unknown plan id is a 404.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/plans/missing/pause", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanHandler_GetPlan_NotFound(t *testing.T) {
	router := newPlanTestRouter(newPlanHandlerTestDB(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/plans/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanHandler_SuggestTasks_NotConfigured(t *testing.T) {
	router := newPlanTestRouter(newPlanHandlerTestDB(t))

	body := []byte(`{"plan_name":"Plano mensal","asset_name":"Compressor"}`)
	req := httptest.NewRequest("POST", "/api/plans/suggest-tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
