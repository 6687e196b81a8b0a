package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// ImportHandler handles catalog feed import requests
type ImportHandler struct {
	importer services.ImporterService
}

// NewImportHandler creates a new import handler
func NewImportHandler(importer services.ImporterService) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// ImportShop reconciles one shop's catalog from its feed.
// POST /api/v1/import/shops/:id
// The body may carry a feed URL; otherwise the shop's persisted one is used.
func (h *ImportHandler) ImportShop(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("VALIDATION_ERROR", "id must be a UUID"))
		return
	}

	var req models.ImportShopRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
	}

	result, err := h.importer.ImportShop(c.Request.Context(), shopID, req.FeedURL)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Status == models.ImportStatusError {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// ImportAllShops reconciles every active shop independently.
// POST /api/v1/import/all
func (h *ImportHandler) ImportAllShops(c *gin.Context) {
	result, err := h.importer.ImportAllShops(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
