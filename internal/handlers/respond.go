package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// respondError maps domain errors onto HTTP statuses with the standard error
// envelope. Unrecognized errors become opaque 500s; details stay in the logs.
func respondError(c *gin.Context, err error) {
	var stockErr *models.InsufficientStockError

	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.NewErrorResponse("NOT_FOUND", "Resource not found"))
	case errors.Is(err, models.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("EMPTY_CART", "Cart is empty"))
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("INSUFFICIENT_STOCK", stockErr.Error()))
	case errors.Is(err, models.ErrMalformedFeed):
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("MALFORMED_FEED", err.Error()))
	case errors.Is(err, models.ErrInvalidStatusTransition):
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("INVALID_TRANSITION", err.Error()))
	case errors.Is(err, services.ErrContactEmailMissing):
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("EMAIL_MISSING", err.Error()))
	case errors.Is(err, services.ErrTokenExpired):
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("TOKEN_EXPIRED", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse("INTERNAL_ERROR", "Internal server error"))
	}
}

// respondValidationError reports a request binding failure
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.NewErrorResponse("VALIDATION_ERROR", err.Error()))
}
