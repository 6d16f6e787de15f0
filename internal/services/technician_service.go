package services

import (
	"context"
	"fmt"

	"maintdesk/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TechnicianService 技师管理服务
type TechnicianService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewTechnicianService 创建技师服务
func NewTechnicianService(db *gorm.DB, logger *logrus.Logger) *TechnicianService {
	if logger == nil {
		logger = logrus.New()
	}
	return &TechnicianService{db: db, logger: logger}
}

// TechnicianCreateRequest 创建技师请求
type TechnicianCreateRequest struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Skills string `json:"skills"`
}

// TechnicianUpdateRequest 更新技师请求
type TechnicianUpdateRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Phone  *string `json:"phone"`
	Skills *string `json:"skills"`
	Status *string `json:"status"`
}

// CreateTechnician 创建技师
func (s *TechnicianService) CreateTechnician(ctx context.Context, req *TechnicianCreateRequest) (*models.Technician, error) {
	technician := &models.Technician{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Skills: req.Skills,
		Status: models.TechnicianStatusActive,
	}

	if err := s.db.WithContext(ctx).Create(technician).Error; err != nil {
		return nil, fmt.Errorf("failed to create technician: %w", err)
	}

	s.logger.Infof("Created technician %s (%s)", technician.ID, technician.Name)
	return technician, nil
}

// GetTechnicianByID 根据ID获取技师
func (s *TechnicianService) GetTechnicianByID(ctx context.Context, technicianID string) (*models.Technician, error) {
	var technician models.Technician
	if err := s.db.WithContext(ctx).First(&technician, "id = ?", technicianID).Error; err != nil {
		return nil, fmt.Errorf("technician not found: %w", err)
	}
	return &technician, nil
}

// ListTechnicians 获取技师列表
func (s *TechnicianService) ListTechnicians(ctx context.Context, status string) ([]models.Technician, error) {
	query := s.db.WithContext(ctx).Model(&models.Technician{}).Order("name ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var technicians []models.Technician
	if err := query.Find(&technicians).Error; err != nil {
		return nil, fmt.Errorf("failed to list technicians: %w", err)
	}
	return technicians, nil
}

// UpdateTechnician 更新技师
func (s *TechnicianService) UpdateTechnician(ctx context.Context, technicianID string, req *TechnicianUpdateRequest) (*models.Technician, error) {
	if req.Status != nil {
		validStatuses := map[string]bool{
			models.TechnicianStatusActive:   true,
			models.TechnicianStatusInactive: true,
			models.TechnicianStatusOnLeave:  true,
		}
		if !validStatuses[*req.Status] {
			return nil, fmt.Errorf("invalid status: %s", *req.Status)
		}
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Skills != nil {
		updates["skills"] = *req.Skills
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Technician{}).Where("id = ?", technicianID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update technician: %w", err)
		}
	}

	return s.GetTechnicianByID(ctx, technicianID)
}

// OpenTicketLoads returns the number of open or assigned tickets per
// technician, used by the least-busy assignment policy.
func (s *TechnicianService) OpenTicketLoads(ctx context.Context) (map[string]int, error) {
	type loadRow struct {
		TechnicianID string
		Count        int
	}

	var rows []loadRow
	err := s.db.WithContext(ctx).Model(&models.MaintenanceTicket{}).
		Select("technician_id, COUNT(*) as count").
		Where("technician_id IS NOT NULL AND status IN ?", []string{
			models.TicketStatusOpen, models.TicketStatusAssigned, models.TicketStatusInProgress,
		}).
		Group("technician_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count technician loads: %w", err)
	}

	loads := make(map[string]int, len(rows))
	for _, row := range rows {
		loads[row.TechnicianID] = row.Count
	}
	return loads, nil
}
