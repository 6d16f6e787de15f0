package handlers

import (
	"net/http"

	"maintdesk/internal/models"
	"maintdesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PlanHandler 维护计划处理器
type PlanHandler struct {
	planService *services.PlanService
	logger      *logrus.Logger
}

// NewPlanHandler 创建计划处理器
func NewPlanHandler(planService *services.PlanService, logger *logrus.Logger) *PlanHandler {
	return &PlanHandler{planService: planService, logger: logger}
}

// CreatePlan 创建维护计划
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req services.PlanCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		h.logger.Errorf("Failed to create plan: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create plan",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// GetPlan 获取计划详情
func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.planService.GetPlanByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Plan not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ListPlans 获取计划列表
func (h *PlanHandler) ListPlans(c *gin.Context) {
	var req services.PlanListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return
	}

	plans, total, err := h.planService.ListPlans(c.Request.Context(), &req)
	if err != nil {
		h.logger.Errorf("Failed to list plans: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list plans",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:     plans,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
}

// UpdatePlan 更新计划
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	var req services.PlanUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.logger.Errorf("Failed to update plan %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to update plan",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, plan)
}

// PausePlan 暂停计划
func (h *PlanHandler) PausePlan(c *gin.Context) {
	h.setStatus(c, models.PlanStatusPaused)
}

// ResumePlan 恢复计划
func (h *PlanHandler) ResumePlan(c *gin.Context) {
	h.setStatus(c, models.PlanStatusActive)
}

func (h *PlanHandler) setStatus(c *gin.Context, status string) {
	if err := h.planService.SetPlanStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Failed to update plan status",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Plan status updated"})
}

// DeletePlan 删除计划
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	if err := h.planService.DeletePlan(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Errorf("Failed to delete plan %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to delete plan",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Plan deleted"})
}

// SuggestTasksRequest AI 任务建议请求
type SuggestTasksRequest struct {
	PlanName  string `json:"plan_name" binding:"required"`
	AssetName string `json:"asset_name"`
}

// SuggestTasks 通过外部文本生成服务生成检查项草稿
func (h *PlanHandler) SuggestTasks(c *gin.Context) {
	var req SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	tasks, err := h.planService.SuggestTasks(c.Request.Context(), req.PlanName, req.AssetName)
	if err != nil {
		h.logger.Errorf("Failed to suggest tasks: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "Failed to suggest tasks",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"tasks": tasks}})
}

// RegisterPlanRoutes 注册计划路由
func RegisterPlanRoutes(r *gin.RouterGroup, handler *PlanHandler) {
	plans := r.Group("/plans")
	{
		plans.POST("", handler.CreatePlan)
		plans.GET("", handler.ListPlans)
		plans.GET("/:id", handler.GetPlan)
		plans.PUT("/:id", handler.UpdatePlan)
		plans.DELETE("/:id", handler.DeletePlan)
		plans.POST("/:id/pause", handler.PausePlan)
		plans.POST("/:id/resume", handler.ResumePlan)
		plans.POST("/suggest-tasks", handler.SuggestTasks)
	}
}
