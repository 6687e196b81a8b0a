package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactTokenTTL is how long an emailed confirmation token stays valid.
const ContactTokenTTL = 24 * time.Hour

// Contact is a delivery address + phone bound to one user. Orders reference
// a contact; a contact may optionally be confirmed via an emailed token.
type Contact struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;not null;index:idx_contacts_user"`
	City        string    `json:"city" gorm:"type:varchar(100);not null"`
	Street      string    `json:"street" gorm:"type:varchar(255);not null"`
	House       string    `json:"house" gorm:"type:varchar(50)"`
	Apartment   string    `json:"apartment,omitempty" gorm:"type:varchar(50)"`
	Phone       string    `json:"phone" gorm:"type:varchar(50);not null"`
	Email       string    `json:"email" gorm:"type:varchar(255)"`
	IsConfirmed bool      `json:"isConfirmed" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ContactToken is a single-use confirmation token with a 24h expiry
type ContactToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ContactID uuid.UUID `json:"contactId" gorm:"type:uuid;not null;index"`
	Token     string    `json:"-" gorm:"type:varchar(64);not null;uniqueIndex:idx_contact_tokens_token"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the token is past its expiry
func (t *ContactToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// CreateContactRequest is the payload for POST /contacts
type CreateContactRequest struct {
	City      string `json:"city" binding:"required"`
	Street    string `json:"street" binding:"required"`
	House     string `json:"house"`
	Apartment string `json:"apartment"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
}

// UpdateContactRequest is the payload for PUT /contacts/:id
type UpdateContactRequest struct {
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house"`
	Apartment string `json:"apartment"`
	Phone     string `json:"phone"`
	Email     string `json:"email" binding:"omitempty,email"`
}

// ConfirmContactRequest is the payload for POST /contacts/confirm
type ConfirmContactRequest struct {
	Token string `json:"token" binding:"required"`
}
