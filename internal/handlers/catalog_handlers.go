package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// CatalogHandler serves the read-only catalog endpoints
type CatalogHandler struct {
	repo repository.CatalogRepository
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(repo repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

// ListProducts returns a filtered, paginated product list.
// GET /api/v1/products?shop_id=&category_id=&min_price=&max_price=&search=&page=&limit=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filters := models.ProductFilters{
		Search: c.Query("search"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	}

	if raw := c.Query("shop_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.NewErrorResponse("VALIDATION_ERROR", "shop_id must be a UUID"))
			return
		}
		filters.ShopID = &id
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.NewErrorResponse("VALIDATION_ERROR", "category_id must be a UUID"))
			return
		}
		filters.CategoryID = &id
	}
	if raw := c.Query("min_price"); raw != "" {
		if price, err := strconv.ParseFloat(raw, 64); err == nil {
			filters.MinPrice = &price
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		if price, err := strconv.ParseFloat(raw, 64); err == nil {
			filters.MaxPrice = &price
		}
	}

	response, err := h.repo.ListProductInfos(filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetProduct returns one product info with its parameters.
// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("VALIDATION_ERROR", "id must be a UUID"))
		return
	}

	info, err := h.repo.GetProductInfoByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// ListCategories returns all categories with their shops.
// GET /api/v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.repo.ListCategories()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListShops returns all shops.
// GET /api/v1/shops
func (h *CatalogHandler) ListShops(c *gin.Context) {
	shops, err := h.repo.ListShops()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	if raw := c.Query(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			return value
		}
	}
	return defaultValue
}
