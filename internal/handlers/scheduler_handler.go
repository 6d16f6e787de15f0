package handlers

import (
	"net/http"

	"maintdesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SchedulerHandler 调度器处理器
type SchedulerHandler struct {
	schedulerService *services.SchedulerService
	logger           *logrus.Logger
}

// NewSchedulerHandler 创建调度器处理器
func NewSchedulerHandler(schedulerService *services.SchedulerService, logger *logrus.Logger) *SchedulerHandler {
	return &SchedulerHandler{schedulerService: schedulerService, logger: logger}
}

// RunScheduler 手动触发一次调度评估
func (h *SchedulerHandler) RunScheduler(c *gin.Context) {
	generated, err := h.schedulerService.RunOnce(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Manual scheduler run failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Scheduler run failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Scheduler run completed",
		Data:    gin.H{"generated": generated},
	})
}

// GetSchedulerStatus 获取调度器状态
func (h *SchedulerHandler) GetSchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.schedulerService.Status())
}

// RegisterSchedulerRoutes 注册调度器路由
func RegisterSchedulerRoutes(r *gin.RouterGroup, handler *SchedulerHandler) {
	sched := r.Group("/scheduler")
	{
		sched.POST("/run", handler.RunScheduler)
		sched.GET("/status", handler.GetSchedulerStatus)
	}
}
