package handlers

import (
	"net/http"

	"maintdesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AssetHandler 资产处理器
type AssetHandler struct {
	assetService *services.AssetService
	logger       *logrus.Logger
}

// NewAssetHandler 创建资产处理器
func NewAssetHandler(assetService *services.AssetService, logger *logrus.Logger) *AssetHandler {
	return &AssetHandler{assetService: assetService, logger: logger}
}

// CreateAsset 创建资产
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req services.AssetCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	asset, err := h.assetService.CreateAsset(c.Request.Context(), &req)
	if err != nil {
		h.logger.Errorf("Failed to create asset: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create asset",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, asset)
}

// GetAsset 获取资产详情
func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, err := h.assetService.GetAssetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Asset not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, asset)
}

// ListAssets 获取资产列表
func (h *AssetHandler) ListAssets(c *gin.Context) {
	assets, err := h.assetService.ListAssets(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.logger.Errorf("Failed to list assets: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list assets",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, assets)
}

// UpdateAsset 更新资产
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	var req services.AssetUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	asset, err := h.assetService.UpdateAsset(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.logger.Errorf("Failed to update asset %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to update asset",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, asset)
}

// DeleteAsset 删除资产
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	if err := h.assetService.DeleteAsset(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Errorf("Failed to delete asset %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to delete asset",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Asset deleted"})
}

// RegisterAssetRoutes 注册资产路由
func RegisterAssetRoutes(r *gin.RouterGroup, handler *AssetHandler) {
	assets := r.Group("/assets")
	{
		assets.POST("", handler.CreateAsset)
		assets.GET("", handler.ListAssets)
		assets.GET("/:id", handler.GetAsset)
		assets.PUT("/:id", handler.UpdateAsset)
		assets.DELETE("/:id", handler.DeleteAsset)
	}
}
