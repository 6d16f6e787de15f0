package services

import (
	"context"
	"fmt"

	"maintdesk/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AssetService 资产管理服务
type AssetService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewAssetService 创建资产服务
func NewAssetService(db *gorm.DB, logger *logrus.Logger) *AssetService {
	if logger == nil {
		logger = logrus.New()
	}
	return &AssetService{db: db, logger: logger}
}

// AssetCreateRequest 创建资产请求
type AssetCreateRequest struct {
	Name         string `json:"name" binding:"required"`
	Location     string `json:"location"`
	SerialNumber string `json:"serial_number"`
	Category     string `json:"category"`
	Notes        string `json:"notes"`
}

// AssetUpdateRequest 更新资产请求
type AssetUpdateRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Category *string `json:"category"`
	Status   *string `json:"status"`
	Notes    *string `json:"notes"`
}

// CreateAsset 创建资产
func (s *AssetService) CreateAsset(ctx context.Context, req *AssetCreateRequest) (*models.Asset, error) {
	asset := &models.Asset{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Location:     req.Location,
		SerialNumber: req.SerialNumber,
		Category:     req.Category,
		Status:       models.AssetStatusOperational,
		Notes:        req.Notes,
	}

	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	s.logger.Infof("Created asset %s (%s)", asset.ID, asset.Name)
	return asset, nil
}

// GetAssetByID 根据ID获取资产
func (s *AssetService) GetAssetByID(ctx context.Context, assetID string) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.WithContext(ctx).First(&asset, "id = ?", assetID).Error; err != nil {
		return nil, fmt.Errorf("asset not found: %w", err)
	}
	return &asset, nil
}

// ListAssets 获取资产列表
func (s *AssetService) ListAssets(ctx context.Context, status string) ([]models.Asset, error) {
	query := s.db.WithContext(ctx).Model(&models.Asset{}).Order("name ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var assets []models.Asset
	if err := query.Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

// UpdateAsset 更新资产
func (s *AssetService) UpdateAsset(ctx context.Context, assetID string, req *AssetUpdateRequest) (*models.Asset, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Asset{}).Where("id = ?", assetID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update asset: %w", err)
		}
	}

	return s.GetAssetByID(ctx, assetID)
}

// DeleteAsset 删除资产（软删除）
func (s *AssetService) DeleteAsset(ctx context.Context, assetID string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Asset{}, "id = ?", assetID).Error; err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	s.logger.Infof("Deleted asset %s", assetID)
	return nil
}
