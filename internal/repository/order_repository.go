package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-service/internal/models"
)

// OrderRepository defines data operations for order confirmation and history.
// Confirmation spans cart, contact, product and order tables; every method is
// available on the transaction-bound repository handed to WithTransaction so
// the whole conversion commits or rolls back as one unit.
type OrderRepository interface {
	WithTransaction(fn func(tx OrderRepository) error) error

	GetCartWithItems(cartID, userID uuid.UUID) (*models.Cart, error)
	GetContact(contactID, userID uuid.UUID) (*models.Contact, error)
	GetProductInfoForUpdate(id uuid.UUID) (*models.ProductInfo, error)
	CreateOrder(order *models.Order) error
	CreateOrderItem(item *models.OrderItem) error
	DecrementStock(productInfoID uuid.UUID, quantity int) error
	ClearCartItems(cartID uuid.UUID) error

	GetOrderByID(orderID, userID uuid.UUID) (*models.Order, error)
	GetOrderForStatusUpdate(orderID uuid.UUID) (*models.Order, error)
	ListOrders(userID uuid.UUID) ([]models.Order, error)
	UpdateOrderStatus(orderID uuid.UUID, status models.OrderStatus) error
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTransaction(fn func(tx OrderRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&orderRepository{db: tx})
	})
}

// GetCartWithItems loads a cart by id scoped to its owner. A cart that exists
// but belongs to someone else reads as not found.
func (r *orderRepository) GetCartWithItems(cartID, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Where("id = ? AND user_id = ?", cartID, userID).
		Preload("Items").Preload("Items.ProductInfo").
		Preload("Items.ProductInfo.Product").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

func (r *orderRepository) GetContact(contactID, userID uuid.UUID) (*models.Contact, error) {
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

// GetProductInfoForUpdate re-reads current stock under a row lock. The check
// must happen inside the confirming transaction, not against an earlier
// snapshot, or two concurrent checkouts can both observe sufficient stock.
func (r *orderRepository) GetProductInfoForUpdate(id uuid.UUID) (*models.ProductInfo, error) {
	var info models.ProductInfo
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Product").
		First(&info, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &info, nil
}

func (r *orderRepository) CreateOrder(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) CreateOrderItem(item *models.OrderItem) error {
	return r.db.Create(item).Error
}

func (r *orderRepository) DecrementStock(productInfoID uuid.UUID, quantity int) error {
	return r.db.Model(&models.ProductInfo{}).
		Where("id = ?", productInfoID).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity)).Error
}

func (r *orderRepository) ClearCartItems(cartID uuid.UUID) error {
	return r.db.Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}

func (r *orderRepository) GetOrderByID(orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("id = ? AND user_id = ?", orderID, userID).
		Preload("Items").Preload("Items.ProductInfo").
		Preload("Items.ProductInfo.Product").Preload("Items.ProductInfo.Shop").
		Preload("Contact").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// GetOrderForStatusUpdate loads an order without user scoping, for the
// fulfilment status endpoint. The row is locked so the caller's transition
// validation holds until its transaction commits.
func (r *orderRepository) GetOrderForStatusUpdate(orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListOrders(userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("user_id = ?", userID).
		Preload("Items").Preload("Items.ProductInfo").
		Preload("Items.ProductInfo.Product").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(orderID uuid.UUID, status models.OrderStatus) error {
	return r.db.Model(&models.Order{}).Where("id = ?", orderID).
		Update("status", status).Error
}
