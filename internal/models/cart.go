package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the per-user staging area for prospective purchases.
// One cart per user, created lazily on first access.
type Cart struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_carts_user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Items []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID"`
}

// CartItem references one ProductInfo with a quantity. The (cart, product info)
// pair is unique; quantity never exceeds the ProductInfo stock at write time.
type CartItem struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CartID        uuid.UUID `json:"cartId" gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_natural,priority:1"`
	ProductInfoID uuid.UUID `json:"productInfoId" gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_natural,priority:2"`
	Quantity      int       `json:"quantity" gorm:"not null"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	ProductInfo *ProductInfo `json:"productInfo,omitempty" gorm:"foreignKey:ProductInfoID"`
}

// AddCartItemRequest is the payload for POST /cart/add
type AddCartItemRequest struct {
	ProductInfoID uuid.UUID `json:"productInfoId" binding:"required"`
	Quantity      int       `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest is the payload for PUT /cart/items/:id
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CartItemResult carries a mutated cart item plus the clamp advisory.
// A clamped write is a success, not an error.
type CartItemResult struct {
	Item    *CartItem `json:"cartItem"`
	Created bool      `json:"-"`
	Clamped bool      `json:"-"`
	Message string    `json:"message,omitempty"`
}

// CartResponse is the cart payload with its live-computed total
type CartResponse struct {
	Cart       *Cart   `json:"cart"`
	TotalPrice float64 `json:"totalPrice"`
}

// Total computes the live cart total from current product info prices.
// Never persisted: prices may change between add and checkout.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		if item.ProductInfo != nil {
			total += item.ProductInfo.Price * float64(item.Quantity)
		}
	}
	return total
}
