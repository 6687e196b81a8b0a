package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/clients"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// ErrContactEmailMissing is returned when confirmation is requested for a
// contact that has no email address.
var ErrContactEmailMissing = errors.New("contact has no email address")

// ErrTokenExpired is returned when a confirmation token is past its 24h expiry
var ErrTokenExpired = errors.New("confirmation token has expired")

// ContactService manages delivery contacts and their email confirmation flow
type ContactService interface {
	CreateContact(userID uuid.UUID, req models.CreateContactRequest) (*models.Contact, error)
	GetContact(userID, contactID uuid.UUID) (*models.Contact, error)
	ListContacts(userID uuid.UUID) ([]models.Contact, error)
	UpdateContact(userID, contactID uuid.UUID, req models.UpdateContactRequest) (*models.Contact, error)
	DeleteContact(userID, contactID uuid.UUID) error

	// SendConfirmation issues a fresh 24h token and emails it to the contact
	SendConfirmation(ctx context.Context, userID, contactID uuid.UUID) error
	// ConfirmContact resolves a token and marks its contact confirmed
	ConfirmContact(token string) (*models.Contact, error)
}

type contactService struct {
	repo         repository.ContactRepository
	notification *clients.NotificationClient
	logger       *logrus.Entry
}

// NewContactService creates a new contact service
func NewContactService(repo repository.ContactRepository, notification *clients.NotificationClient, logger *logrus.Logger) ContactService {
	return &contactService{
		repo:         repo,
		notification: notification,
		logger:       logger.WithField("component", "contact-service"),
	}
}

func (s *contactService) CreateContact(userID uuid.UUID, req models.CreateContactRequest) (*models.Contact, error) {
	contact := &models.Contact{
		UserID:    userID,
		City:      req.City,
		Street:    req.Street,
		House:     req.House,
		Apartment: req.Apartment,
		Phone:     req.Phone,
		Email:     req.Email,
	}
	if err := s.repo.CreateContact(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) GetContact(userID, contactID uuid.UUID) (*models.Contact, error) {
	return s.repo.GetContact(contactID, userID)
}

func (s *contactService) ListContacts(userID uuid.UUID) ([]models.Contact, error) {
	return s.repo.ListContacts(userID)
}

func (s *contactService) UpdateContact(userID, contactID uuid.UUID, req models.UpdateContactRequest) (*models.Contact, error) {
	contact, err := s.repo.GetContact(contactID, userID)
	if err != nil {
		return nil, err
	}

	if req.City != "" {
		contact.City = req.City
	}
	if req.Street != "" {
		contact.Street = req.Street
	}
	if req.House != "" {
		contact.House = req.House
	}
	if req.Apartment != "" {
		contact.Apartment = req.Apartment
	}
	if req.Phone != "" {
		contact.Phone = req.Phone
	}
	if req.Email != "" && req.Email != contact.Email {
		// A changed address needs to be re-confirmed.
		contact.Email = req.Email
		contact.IsConfirmed = false
	}

	if err := s.repo.UpdateContact(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) DeleteContact(userID, contactID uuid.UUID) error {
	return s.repo.DeleteContact(contactID, userID)
}

func (s *contactService) SendConfirmation(ctx context.Context, userID, contactID uuid.UUID) error {
	contact, err := s.repo.GetContact(contactID, userID)
	if err != nil {
		return err
	}
	if contact.Email == "" {
		return ErrContactEmailMissing
	}

	// One live token per contact: stale tokens are dropped before issuing.
	if err := s.repo.DeleteTokensForContact(contact.ID); err != nil {
		return err
	}

	token := &models.ContactToken{
		ContactID: contact.ID,
		Token:     generateToken(),
		ExpiresAt: time.Now().Add(models.ContactTokenTTL),
	}
	if err := s.repo.CreateToken(token); err != nil {
		return err
	}

	if err := s.notification.SendContactConfirmation(ctx, contact.Email, token.Token); err != nil {
		s.logger.WithError(err).WithField("contact_id", contact.ID).
			Error("Failed to dispatch confirmation email")
		return err
	}
	return nil
}

func (s *contactService) ConfirmContact(token string) (*models.Contact, error) {
	contactToken, err := s.repo.GetToken(token)
	if err != nil {
		return nil, err
	}
	if contactToken.Expired() {
		if err := s.repo.DeleteTokensForContact(contactToken.ContactID); err != nil {
			s.logger.WithError(err).Warn("Failed to clean up expired token")
		}
		return nil, ErrTokenExpired
	}

	if err := s.repo.MarkConfirmed(contactToken.ContactID); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteTokensForContact(contactToken.ContactID); err != nil {
		s.logger.WithError(err).Warn("Failed to clean up used token")
	}
	return s.repo.GetContactByID(contactToken.ContactID)
}

// generateToken returns a 64-character hex token
func generateToken() string {
	buf := make([]byte, 32)
	// crypto/rand never fails on supported platforms
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
