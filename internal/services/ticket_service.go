package services

import (
	"context"
	"fmt"
	"time"

	"maintdesk/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TicketService 工单管理服务
type TicketService struct {
	db     *gorm.DB
	logger *logrus.Logger
	hub    *WebSocketHub // optional change feed
}

// NewTicketService 创建工单服务
func NewTicketService(db *gorm.DB, logger *logrus.Logger, hub *WebSocketHub) *TicketService {
	if logger == nil {
		logger = logrus.New()
	}
	return &TicketService{db: db, logger: logger, hub: hub}
}

// TicketCreateRequest 创建工单请求（手动）
type TicketCreateRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	AssetID     string   `json:"asset_id" binding:"required"`
	Urgency     string   `json:"urgency"`
	Priority    string   `json:"priority"`
	Checklist   []string `json:"checklist"`
}

// TicketListRequest 工单列表请求
type TicketListRequest struct {
	Page         int      `form:"page,default=1"`
	PageSize     int      `form:"page_size,default=20"`
	Status       []string `form:"status"`
	Priority     []string `form:"priority"`
	Origin       string   `form:"origin"`
	AssetID      string   `form:"asset_id"`
	TechnicianID string   `form:"technician_id"`
	SortBy       string   `form:"sort_by,default=created_at"`
	SortOrder    string   `form:"sort_order,default=desc"`
}

// CreateTicket 创建工单
func (s *TicketService) CreateTicket(ctx context.Context, req *TicketCreateRequest) (*models.MaintenanceTicket, error) {
	var asset models.Asset
	if err := s.db.WithContext(ctx).First(&asset, "id = ?", req.AssetID).Error; err != nil {
		return nil, fmt.Errorf("asset not found: %w", err)
	}

	if req.Urgency == "" {
		req.Urgency = models.LevelMedium
	}
	if req.Priority == "" {
		req.Priority = models.LevelMedium
	}

	ticket := &models.MaintenanceTicket{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		AssetID:     req.AssetID,
		Status:      models.TicketStatusOpen,
		Urgency:     req.Urgency,
		Priority:    req.Priority,
		Origin:      models.TicketOriginManual,
	}

	for i, desc := range req.Checklist {
		ticket.Checklist = append(ticket.Checklist, models.ChecklistItem{
			Position:    i,
			Description: desc,
			Category:    models.ChecklistCategoryExecution,
		})
	}

	ticket.Activities = append(ticket.Activities, models.TicketActivity{
		Type:    models.ActivityTypeUser,
		Message: "Chamado aberto manualmente",
	})

	if err := s.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	if s.hub != nil {
		s.hub.Broadcast(EventTicketCreated, ticket)
	}

	s.logger.Infof("Created ticket %s for asset %s", ticket.ID, req.AssetID)
	return s.GetTicketByID(ctx, ticket.ID)
}

// PersistGenerated saves a ticket built by the scheduler engine, including its
// nested checklist and activity rows. The engine owns the record's content;
// this only writes it.
func (s *TicketService) PersistGenerated(ctx context.Context, ticket *models.MaintenanceTicket) error {
	if err := s.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return fmt.Errorf("failed to persist generated ticket %s: %w", ticket.ID, err)
	}

	if s.hub != nil {
		s.hub.Broadcast(EventTicketCreated, ticket)
	}

	return nil
}

// GetTicketByID 根据ID获取工单
func (s *TicketService) GetTicketByID(ctx context.Context, ticketID string) (*models.MaintenanceTicket, error) {
	var ticket models.MaintenanceTicket
	err := s.db.WithContext(ctx).
		Preload("Asset").
		Preload("Technician").
		Preload("Checklist", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("UsedParts").
		Preload("TimeLogs").
		First(&ticket, "id = ?", ticketID).Error
	if err != nil {
		return nil, fmt.Errorf("ticket not found: %w", err)
	}
	return &ticket, nil
}

// ListTickets 获取工单列表
func (s *TicketService) ListTickets(ctx context.Context, req *TicketListRequest) ([]models.MaintenanceTicket, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.MaintenanceTicket{}).
		Preload("Asset").
		Preload("Technician")

	if len(req.Status) > 0 {
		query = query.Where("status IN ?", req.Status)
	}
	if len(req.Priority) > 0 {
		query = query.Where("priority IN ?", req.Priority)
	}
	if req.Origin != "" {
		query = query.Where("origin = ?", req.Origin)
	}
	if req.AssetID != "" {
		query = query.Where("asset_id = ?", req.AssetID)
	}
	if req.TechnicianID != "" {
		query = query.Where("technician_id = ?", req.TechnicianID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	orderBy := fmt.Sprintf("%s %s", req.SortBy, req.SortOrder)
	offset := (req.Page - 1) * req.PageSize

	var tickets []models.MaintenanceTicket
	if err := query.Order(orderBy).Offset(offset).Limit(req.PageSize).Find(&tickets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}

	return tickets, total, nil
}

// AssignTicket 分配工单给技师
func (s *TicketService) AssignTicket(ctx context.Context, ticketID, technicianID string) error {
	var technician models.Technician
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", technicianID, models.TechnicianStatusActive).
		First(&technician).Error
	if err != nil {
		return fmt.Errorf("technician not available: %w", err)
	}

	updates := map[string]interface{}{
		"technician_id": technicianID,
		"status":        models.TicketStatusAssigned,
	}
	if err := s.db.WithContext(ctx).Model(&models.MaintenanceTicket{}).Where("id = ?", ticketID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to assign ticket: %w", err)
	}

	s.recordActivity(ctx, ticketID, models.ActivityTypeUser,
		fmt.Sprintf("Atribuído a %s", technician.Name))

	if s.hub != nil {
		s.hub.Broadcast(EventTicketAssigned, map[string]interface{}{
			"ticket_id":     ticketID,
			"technician_id": technicianID,
		})
	}

	s.logger.Infof("Assigned ticket %s to technician %s", ticketID, technicianID)
	return nil
}

// ToggleChecklistItem 勾选/取消检查项
func (s *TicketService) ToggleChecklistItem(ctx context.Context, ticketID string, itemID uint, checked bool) error {
	result := s.db.WithContext(ctx).Model(&models.ChecklistItem{}).
		Where("id = ? AND ticket_id = ?", itemID, ticketID).
		Update("checked", checked)
	if result.Error != nil {
		return fmt.Errorf("failed to update checklist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("checklist item %d not found on ticket %s", itemID, ticketID)
	}

	if s.hub != nil {
		s.hub.Broadcast(EventTicketUpdated, map[string]interface{}{
			"ticket_id": ticketID,
			"item_id":   itemID,
			"checked":   checked,
		})
	}
	return nil
}

// CloseTicket 关闭工单
func (s *TicketService) CloseTicket(ctx context.Context, ticketID, reason string) error {
	ticket, err := s.GetTicketByID(ctx, ticketID)
	if err != nil {
		return err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":    models.TicketStatusClosed,
		"closed_at": &now,
	}
	if err := s.db.WithContext(ctx).Model(&models.MaintenanceTicket{}).Where("id = ?", ticketID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to close ticket: %w", err)
	}

	msg := "Chamado encerrado"
	if reason != "" {
		msg = fmt.Sprintf("Chamado encerrado. Motivo: %s", reason)
	}
	s.recordActivity(ctx, ticketID, models.ActivityTypeUser, msg)

	if s.hub != nil {
		s.hub.Broadcast(EventTicketUpdated, map[string]interface{}{
			"ticket_id": ticketID,
			"status":    models.TicketStatusClosed,
		})
	}

	s.logger.Infof("Closed ticket %s (was %s)", ticketID, ticket.Status)
	return nil
}

// recordActivity 记录工单活动
func (s *TicketService) recordActivity(ctx context.Context, ticketID, activityType, message string) {
	activity := &models.TicketActivity{
		TicketID: ticketID,
		Type:     activityType,
		Message:  message,
	}
	if err := s.db.WithContext(ctx).Create(activity).Error; err != nil {
		s.logger.Errorf("Failed to record activity for ticket %s: %v", ticketID, err)
	}
}

// TicketStats 工单统计信息
type TicketStats struct {
	Total      int64         `json:"total"`
	Open       int64         `json:"open"`
	Preventive int64         `json:"preventive"`
	ByStatus   []StatusCount `json:"by_status"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// GetTicketStats 获取工单统计
func (s *TicketService) GetTicketStats(ctx context.Context) (*TicketStats, error) {
	stats := &TicketStats{}
	db := s.db.WithContext(ctx)

	db.Model(&models.MaintenanceTicket{}).Count(&stats.Total)
	db.Model(&models.MaintenanceTicket{}).
		Where("status IN ?", []string{models.TicketStatusOpen, models.TicketStatusAssigned}).
		Count(&stats.Open)
	db.Model(&models.MaintenanceTicket{}).
		Where("origin = ?", models.TicketOriginPreventive).
		Count(&stats.Preventive)
	db.Model(&models.MaintenanceTicket{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&stats.ByStatus)

	return stats, nil
}
