package handlers

import (
	"net/http"
	"strconv"

	"maintdesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TicketHandler 工单处理器
type TicketHandler struct {
	ticketService *services.TicketService
	logger        *logrus.Logger
}

// NewTicketHandler 创建工单处理器
func NewTicketHandler(ticketService *services.TicketService, logger *logrus.Logger) *TicketHandler {
	return &TicketHandler{ticketService: ticketService, logger: logger}
}

// CreateTicket 创建工单
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req services.TicketCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	ticket, err := h.ticketService.CreateTicket(c.Request.Context(), &req)
	if err != nil {
		h.logger.Errorf("Failed to create ticket: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create ticket",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// GetTicket 获取工单详情
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, err := h.ticketService.GetTicketByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Ticket not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// ListTickets 获取工单列表
func (h *TicketHandler) ListTickets(c *gin.Context) {
	var req services.TicketListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return
	}

	tickets, total, err := h.ticketService.ListTickets(c.Request.Context(), &req)
	if err != nil {
		h.logger.Errorf("Failed to list tickets: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list tickets",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:     tickets,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
}

// AssignTicketRequest 分配工单请求
type AssignTicketRequest struct {
	TechnicianID string `json:"technician_id" binding:"required"`
}

// AssignTicket 分配工单
func (h *TicketHandler) AssignTicket(c *gin.Context) {
	var req AssignTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	if err := h.ticketService.AssignTicket(c.Request.Context(), c.Param("id"), req.TechnicianID); err != nil {
		h.logger.Errorf("Failed to assign ticket %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to assign ticket",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Ticket assigned"})
}

// ToggleChecklistRequest 勾选检查项请求
type ToggleChecklistRequest struct {
	Checked bool `json:"checked"`
}

// ToggleChecklistItem 勾选/取消检查项
func (h *TicketHandler) ToggleChecklistItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid checklist item ID",
			Message: "ID must be a valid number",
		})
		return
	}

	var req ToggleChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	if err := h.ticketService.ToggleChecklistItem(c.Request.Context(), c.Param("id"), uint(itemID), req.Checked); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Failed to update checklist item",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Checklist item updated"})
}

// CloseTicketRequest 关闭工单请求
type CloseTicketRequest struct {
	Reason string `json:"reason"`
}

// CloseTicket 关闭工单
func (h *TicketHandler) CloseTicket(c *gin.Context) {
	var req CloseTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	if err := h.ticketService.CloseTicket(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		h.logger.Errorf("Failed to close ticket %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to close ticket",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Ticket closed"})
}

// GetTicketStats 获取工单统计
func (h *TicketHandler) GetTicketStats(c *gin.Context) {
	stats, err := h.ticketService.GetTicketStats(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Failed to get ticket stats: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get ticket stats",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RegisterTicketRoutes 注册工单路由
func RegisterTicketRoutes(r *gin.RouterGroup, handler *TicketHandler) {
	tickets := r.Group("/tickets")
	{
		tickets.POST("", handler.CreateTicket)
		tickets.GET("", handler.ListTickets)
		tickets.GET("/stats", handler.GetTicketStats)
		tickets.GET("/:id", handler.GetTicket)
		tickets.POST("/:id/assign", handler.AssignTicket)
		tickets.POST("/:id/close", handler.CloseTicket)
		tickets.PUT("/:id/checklist/:item_id", handler.ToggleChecklistItem)
	}
}
