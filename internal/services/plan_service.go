package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"maintdesk/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TextGenerator is the opaque external text-generation service used for
// checklist drafts. Prompting and response handling stay thin by design.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// PlanService 预防性维护计划服务
type PlanService struct {
	db     *gorm.DB
	logger *logrus.Logger
	genai  TextGenerator // optional
}

// NewPlanService 创建计划服务
func NewPlanService(db *gorm.DB, logger *logrus.Logger, genai TextGenerator) *PlanService {
	if logger == nil {
		logger = logrus.New()
	}
	return &PlanService{db: db, logger: logger, genai: genai}
}

// PlanCreateRequest 创建计划请求
type PlanCreateRequest struct {
	Name           string     `json:"name" binding:"required"`
	Description    string     `json:"description"`
	AssetIDs       []string   `json:"asset_ids"`
	AutoGenerate   *bool      `json:"auto_generate"`
	FrequencyType  string     `json:"frequency_type"`
	FrequencyValue int        `json:"frequency_value" binding:"required"`
	FrequencyUnit  string     `json:"frequency_unit" binding:"required"`
	Tasks          []string   `json:"tasks"`
	NextExecution  *time.Time `json:"next_execution"`
}

// PlanUpdateRequest 更新计划请求
type PlanUpdateRequest struct {
	Name           *string    `json:"name"`
	Description    *string    `json:"description"`
	AssetIDs       []string   `json:"asset_ids"`
	AutoGenerate   *bool      `json:"auto_generate"`
	FrequencyValue *int       `json:"frequency_value"`
	FrequencyUnit  *string    `json:"frequency_unit"`
	Tasks          []string   `json:"tasks"`
	NextExecution  *time.Time `json:"next_execution"`
}

// PlanListRequest 计划列表请求
type PlanListRequest struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
	Status   string `form:"status"`
	AssetID  string `form:"asset_id"`
}

// CreatePlan 创建维护计划
func (s *PlanService) CreatePlan(ctx context.Context, req *PlanCreateRequest) (*models.PreventivePlan, error) {
	if req.FrequencyType == "" {
		req.FrequencyType = models.FrequencyTypeTime
	}

	plan := &models.PreventivePlan{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Description:    req.Description,
		Status:         models.PlanStatusActive,
		AutoGenerate:   req.AutoGenerate,
		AssetIDs:       strings.Join(req.AssetIDs, ","),
		FrequencyType:  req.FrequencyType,
		FrequencyValue: req.FrequencyValue,
		FrequencyUnit:  req.FrequencyUnit,
		NextExecution:  req.NextExecution,
	}

	for i, desc := range req.Tasks {
		plan.Tasks = append(plan.Tasks, models.PlanTask{
			Position:    i,
			Description: desc,
		})
	}

	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	s.logger.Infof("Created preventive plan %s (%s)", plan.ID, plan.Name)
	return s.GetPlanByID(ctx, plan.ID)
}

// GetPlanByID 根据ID获取计划（任务按顺序预加载）
func (s *PlanService) GetPlanByID(ctx context.Context, planID string) (*models.PreventivePlan, error) {
	var plan models.PreventivePlan
	err := s.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&plan, "id = ?", planID).Error
	if err != nil {
		return nil, fmt.Errorf("plan not found: %w", err)
	}
	return &plan, nil
}

// ListPlans 获取计划列表
func (s *PlanService) ListPlans(ctx context.Context, req *PlanListRequest) ([]models.PreventivePlan, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.PreventivePlan{}).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.AssetID != "" {
		query = query.Where("asset_ids LIKE ?", "%"+req.AssetID+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	offset := (req.Page - 1) * req.PageSize
	var plans []models.PreventivePlan
	if err := query.Order("name ASC").Offset(offset).Limit(req.PageSize).Find(&plans).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}

	return plans, total, nil
}

// ActivePlans returns all active plans with ordered tasks, the scheduler's
// plan snapshot.
func (s *PlanService) ActivePlans(ctx context.Context) ([]models.PreventivePlan, error) {
	var plans []models.PreventivePlan
	err := s.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("status = ?", models.PlanStatusActive).
		Order("created_at ASC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active plans: %w", err)
	}
	return plans, nil
}

// UpdatePlan 更新计划；任务列表整体替换以保持顺序
func (s *PlanService) UpdatePlan(ctx context.Context, planID string, req *PlanUpdateRequest) (*models.PreventivePlan, error) {
	if _, err := s.GetPlanByID(ctx, planID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.AssetIDs != nil {
		updates["asset_ids"] = strings.Join(req.AssetIDs, ",")
	}
	if req.AutoGenerate != nil {
		updates["auto_generate"] = *req.AutoGenerate
	}
	if req.FrequencyValue != nil {
		updates["frequency_value"] = *req.FrequencyValue
	}
	if req.FrequencyUnit != nil {
		updates["frequency_unit"] = *req.FrequencyUnit
	}
	if req.NextExecution != nil {
		updates["next_execution"] = *req.NextExecution
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.PreventivePlan{}).Where("id = ?", planID).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update plan: %w", err)
			}
		}

		if req.Tasks != nil {
			if err := tx.Where("plan_id = ?", planID).Delete(&models.PlanTask{}).Error; err != nil {
				return fmt.Errorf("failed to clear plan tasks: %w", err)
			}
			for i, desc := range req.Tasks {
				task := models.PlanTask{PlanID: planID, Position: i, Description: desc}
				if err := tx.Create(&task).Error; err != nil {
					return fmt.Errorf("failed to recreate plan tasks: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetPlanByID(ctx, planID)
}

// SetPlanStatus 暂停/恢复计划
func (s *PlanService) SetPlanStatus(ctx context.Context, planID, status string) error {
	if status != models.PlanStatusActive && status != models.PlanStatusPaused {
		return fmt.Errorf("invalid plan status: %s", status)
	}

	result := s.db.WithContext(ctx).Model(&models.PreventivePlan{}).
		Where("id = ?", planID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update plan status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("plan not found: %s", planID)
	}

	s.logger.Infof("Plan %s status set to %s", planID, status)
	return nil
}

// AdvancePlan persists the execution advancement returned by the scheduler
// engine: lastExecution and nextExecution only, everything else untouched.
func (s *PlanService) AdvancePlan(ctx context.Context, plan *models.PreventivePlan) error {
	err := s.db.WithContext(ctx).Model(&models.PreventivePlan{}).
		Where("id = ?", plan.ID).
		Updates(map[string]interface{}{
			"last_execution": plan.LastExecution,
			"next_execution": plan.NextExecution,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to advance plan %s: %w", plan.ID, err)
	}
	return nil
}

// DeletePlan 删除计划（软删除）
func (s *PlanService) DeletePlan(ctx context.Context, planID string) error {
	if err := s.db.WithContext(ctx).Delete(&models.PreventivePlan{}, "id = ?", planID).Error; err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	s.logger.Infof("Deleted plan %s", planID)
	return nil
}

// SuggestTasks asks the external text-generation service for a checklist
// draft. Returns one task per non-empty response line.
func (s *PlanService) SuggestTasks(ctx context.Context, planName, assetName string) ([]string, error) {
	if s.genai == nil {
		return nil, fmt.Errorf("text generation service is not configured")
	}

	prompt := fmt.Sprintf(
		"List the maintenance checklist steps for the preventive plan %q on equipment %q. One step per line, no numbering.",
		planName, assetName,
	)

	text, err := s.genai.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate task suggestions: %w", err)
	}

	tasks := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• "))
		if line != "" {
			tasks = append(tasks, line)
		}
	}

	s.logger.Infof("Generated %d task suggestions for plan %q", len(tasks), planName)
	return tasks, nil
}
