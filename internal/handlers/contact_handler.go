package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// ContactHandler handles HTTP requests for delivery contacts
type ContactHandler struct {
	contactService services.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// CreateContact creates a delivery contact for the user.
// POST /api/v1/contacts
func (h *ContactHandler) CreateContact(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse("UNAUTHORIZED", "Missing user identity"))
		return
	}

	var req models.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	contact, err := h.contactService.CreateContact(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// ListContacts returns the user's contacts.
// GET /api/v1/contacts
func (h *ContactHandler) ListContacts(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse("UNAUTHORIZED", "Missing user identity"))
		return
	}

	contacts, err := h.contactService.ListContacts(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

// GetContact returns one of the user's contacts.
// GET /api/v1/contacts/:id
func (h *ContactHandler) GetContact(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse("UNAUTHORIZED", "Missing user identity"))
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("VALIDATION_ERROR", "id must be a UUID"))
		return
	}

	contact, err := h.contactService.GetContact(userID, contactID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// UpdateContact updates one of the user's contacts.
// PUT /api/v1/contacts/:id
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse("UNAUTHORIZED", "Missing user identity"))
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("VALIDATION_ERROR", "id must be a UUID"))
		return
	}

	var req models.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	contact, err := h.contactService.UpdateContact(userID, contactID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// DeleteContact deletes one of the user's contacts.
// DELETE /api/v1/contacts/:id
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse("UNAUTHORIZED", "Missing user identity"))
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("VALIDATION_ERROR", "id must be a UUID"))
		return
	}

	if err := h.contactService.DeleteContact(userID, contactID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendConfirmation emails a confirmation token to the contact's address.
// POST /api/v1/contacts/:id/send-confirmation
func (h *ContactHandler) SendConfirmation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse("UNAUTHORIZED", "Missing user identity"))
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse("VALIDATION_ERROR", "id must be a UUID"))
		return
	}

	if err := h.contactService.SendConfirmation(c.Request.Context(), userID, contactID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "confirmation email dispatched"})
}

// ConfirmContact marks a contact confirmed from an emailed token.
// POST /api/v1/contacts/confirm
func (h *ContactHandler) ConfirmContact(c *gin.Context) {
	var req models.ConfirmContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	contact, err := h.contactService.ConfirmContact(req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}
