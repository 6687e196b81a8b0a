package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "NEW"        // Created from a cart, awaiting processing
	OrderStatusProcessing OrderStatus = "PROCESSING" // Being picked/packed
	OrderStatusShipped    OrderStatus = "SHIPPED"    // Handed to carrier
	OrderStatusDelivered  OrderStatus = "DELIVERED"  // Successfully delivered
)

// ValidOrderTransitions defines the linear order lifecycle:
// NEW → PROCESSING → SHIPPED → DELIVERED
var ValidOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusNew:        {OrderStatusProcessing},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
}

// CanTransitionOrderStatus checks if a transition between statuses is valid
func CanTransitionOrderStatus(from, to OrderStatus) bool {
	for _, next := range ValidOrderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateOrderStatusTransition returns an error if the transition is invalid
func ValidateOrderStatusTransition(from, to OrderStatus) error {
	if !CanTransitionOrderStatus(from, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, from, to)
	}
	return nil
}

// Order is the immutable post-checkout record. It is created from a cart
// snapshot inside one transaction and never re-derived from cart state.
type Order struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID   `json:"userId" gorm:"type:uuid;not null;index:idx_orders_user"`
	ContactID uuid.UUID   `json:"contactId" gorm:"type:uuid;not null"`
	Status    OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'NEW'"`
	CreatedAt time.Time   `json:"createdAt" gorm:"index:idx_orders_created,sort:desc"`
	UpdatedAt time.Time   `json:"updatedAt"`

	Items   []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Contact *Contact    `json:"contact,omitempty" gorm:"foreignKey:ContactID"`
}

// OrderItem records one cart line consumed by the order. UnitPrice is the
// ProductInfo price snapshotted at confirmation time, so historical order
// totals do not drift when shops reprice.
type OrderItem struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID       uuid.UUID `json:"orderId" gorm:"type:uuid;not null;index"`
	ProductInfoID uuid.UUID `json:"productInfoId" gorm:"type:uuid;not null"`
	Quantity      int       `json:"quantity" gorm:"not null"`
	UnitPrice     float64   `json:"unitPrice" gorm:"type:decimal(10,2);not null"`

	ProductInfo *ProductInfo `json:"productInfo,omitempty" gorm:"foreignKey:ProductInfoID"`
}

// Total sums the snapshotted item prices
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// ConfirmOrderRequest is the payload for POST /confirm-order
type ConfirmOrderRequest struct {
	CartID    uuid.UUID `json:"cartId" binding:"required"`
	ContactID uuid.UUID `json:"contactId" binding:"required"`
}

// UpdateOrderStatusRequest is the payload for PATCH /orders/:id/status
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// OrderResponse is the order payload with its computed total
type OrderResponse struct {
	Order      *Order  `json:"order"`
	TotalPrice float64 `json:"totalPrice"`
}
