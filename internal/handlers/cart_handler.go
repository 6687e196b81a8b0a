package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// CartHandler handles HTTP requests for the user's cart
type CartHandler struct {
	cartService services.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart returns the user's cart with its live total.
// GET /api/v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse("UNAUTHORIZED", "Missing user identity"))
		return
	}

	response, err := h.cartService.GetCart(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// AddItem adds a product to the cart or increments an existing line.
// POST /api/v1/cart/add
// 201 on fresh add, 200 with an advisory message when the quantity was clamped.
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse("UNAUTHORIZED", "Missing user identity"))
		return
	}

	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.cartService.AddItem(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if !result.Created || result.Clamped {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// UpdateItem replaces a cart item's quantity.
// PUT /api/v1/cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse("UNAUTHORIZED", "Missing user identity"))
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("VALIDATION_ERROR", "id must be a UUID"))
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.cartService.UpdateItem(userID, itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RemoveItem deletes one cart item.
// DELETE /api/v1/cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse("UNAUTHORIZED", "Missing user identity"))
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("VALIDATION_ERROR", "id must be a UUID"))
		return
	}

	if err := h.cartService.RemoveItem(userID, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearCart removes every item from the user's cart.
// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse("UNAUTHORIZED", "Missing user identity"))
		return
	}

	if err := h.cartService.ClearCart(userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
