package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-service/internal/models"
)

// ContactRepository defines data operations for delivery contacts and their
// confirmation tokens. All contact lookups are user-scoped except token
// resolution, which carries its own secret.
type ContactRepository interface {
	CreateContact(contact *models.Contact) error
	GetContact(contactID, userID uuid.UUID) (*models.Contact, error)
	GetContactByID(contactID uuid.UUID) (*models.Contact, error)
	ListContacts(userID uuid.UUID) ([]models.Contact, error)
	UpdateContact(contact *models.Contact) error
	DeleteContact(contactID, userID uuid.UUID) error

	CreateToken(token *models.ContactToken) error
	GetToken(token string) (*models.ContactToken, error)
	DeleteTokensForContact(contactID uuid.UUID) error
	MarkConfirmed(contactID uuid.UUID) error
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) CreateContact(contact *models.Contact) error {
	return r.db.Create(contact).Error
}

func (r *contactRepository) GetContact(contactID, userID uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// GetContactByID loads a contact without user scoping; used by the token
// confirmation flow, where the token itself is the credential.
func (r *contactRepository) GetContactByID(contactID uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.First(&contact, "id = ?", contactID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) ListContacts(userID uuid.UUID) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *contactRepository) UpdateContact(contact *models.Contact) error {
	return r.db.Save(contact).Error
}

func (r *contactRepository) DeleteContact(contactID, userID uuid.UUID) error {
	result := r.db.Where("id = ? AND user_id = ?", contactID, userID).
		Delete(&models.Contact{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *contactRepository) CreateToken(token *models.ContactToken) error {
	return r.db.Create(token).Error
}

func (r *contactRepository) GetToken(token string) (*models.ContactToken, error) {
	var contactToken models.ContactToken
	err := r.db.Where("token = ?", token).First(&contactToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &contactToken, nil
}

func (r *contactRepository) DeleteTokensForContact(contactID uuid.UUID) error {
	return r.db.Delete(&models.ContactToken{}, "contact_id = ?", contactID).Error
}

func (r *contactRepository) MarkConfirmed(contactID uuid.UUID) error {
	return r.db.Model(&models.Contact{}).Where("id = ?", contactID).
		Update("is_confirmed", true).Error
}
