package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maintdesk/internal/models"
	"maintdesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newSchedulerHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Asset{},
		&models.Technician{},
		&models.PreventivePlan{},
		&models.PlanTask{},
		&models.MaintenanceTicket{},
		&models.ChecklistItem{},
		&models.TicketActivity{},
		&models.UsedPart{},
		&models.TimeLog{},
		&models.PlanExecution{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func newSchedulerTestRouter(db *gorm.DB) (*gin.Engine, *services.SchedulerService) {
	gin.SetMode(gin.TestMode)
	logger := testLogger()

	planService := services.NewPlanService(db, logger, nil)
	ticketService := services.NewTicketService(db, logger, nil)
	technicianService := services.NewTechnicianService(db, logger)
	schedulerService := services.NewSchedulerService(
		db, logger, planService, ticketService, technicianService, nil, nil, services.AssignmentRandom,
	)

	router := gin.New()
	api := router.Group("/api")
	RegisterSchedulerRoutes(api, NewSchedulerHandler(schedulerService, logger))
	return router, schedulerService
}

func TestSchedulerHandler_RunAndStatus(t *testing.T) {
	db := newSchedulerHandlerTestDB(t)
	router, _ := newSchedulerTestRouter(db)

	past := time.Now().UTC().AddDate(0, 0, -1)
	plan := models.PreventivePlan{
		ID: "plan-1", Name: "Plano", Status: models.PlanStatusActive,
		FrequencyType: models.FrequencyTypeTime, FrequencyValue: 7, FrequencyUnit: models.FrequencyUnitDays,
		NextExecution: &past,
	}
	db.Create(&plan)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/scheduler/run", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var runResponse SuccessResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &runResponse))

	var ticketCount int64
	db.Model(&models.MaintenanceTicket{}).Count(&ticketCount)
	assert.EqualValues(t, 1, ticketCount)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/scheduler/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var status services.SchedulerStatus
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.EqualValues(t, 1, status.Runs)
	assert.Equal(t, 1, status.LastGenerated)
	assert.NotNil(t, status.LastRun)
}

func TestSchedulerHandler_RunWithNothingDue(t *testing.T) {
	db := newSchedulerHandlerTestDB(t)
	router, _ := newSchedulerTestRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/scheduler/run", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var ticketCount int64
	db.Model(&models.MaintenanceTicket{}).Count(&ticketCount)
	assert.EqualValues(t, 0, ticketCount)
}
