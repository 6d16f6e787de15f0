package handlers

import (
	"net/http"

	"maintdesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TechnicianHandler 技师处理器
type TechnicianHandler struct {
	technicianService *services.TechnicianService
	logger            *logrus.Logger
}

// NewTechnicianHandler 创建技师处理器
func NewTechnicianHandler(technicianService *services.TechnicianService, logger *logrus.Logger) *TechnicianHandler {
	return &TechnicianHandler{technicianService: technicianService, logger: logger}
}

// CreateTechnician 创建技师
func (h *TechnicianHandler) CreateTechnician(c *gin.Context) {
	var req services.TechnicianCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	technician, err := h.technicianService.CreateTechnician(c.Request.Context(), &req)
	if err != nil {
		h.logger.Errorf("Failed to create technician: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create technician",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, technician)
}

// GetTechnician 获取技师详情
func (h *TechnicianHandler) GetTechnician(c *gin.Context) {
	technician, err := h.technicianService.GetTechnicianByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Technician not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, technician)
}

// ListTechnicians 获取技师列表
func (h *TechnicianHandler) ListTechnicians(c *gin.Context) {
	technicians, err := h.technicianService.ListTechnicians(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.logger.Errorf("Failed to list technicians: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list technicians",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, technicians)
}

// UpdateTechnician 更新技师
func (h *TechnicianHandler) UpdateTechnician(c *gin.Context) {
	var req services.TechnicianUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	technician, err := h.technicianService.UpdateTechnician(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.logger.Errorf("Failed to update technician %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to update technician",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, technician)
}

// RegisterTechnicianRoutes 注册技师路由
func RegisterTechnicianRoutes(r *gin.RouterGroup, handler *TechnicianHandler) {
	technicians := r.Group("/technicians")
	{
		technicians.POST("", handler.CreateTechnician)
		technicians.GET("", handler.ListTechnicians)
		technicians.GET("/:id", handler.GetTechnician)
		technicians.PUT("/:id", handler.UpdateTechnician)
	}
}
