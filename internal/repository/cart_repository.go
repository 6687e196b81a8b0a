package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-service/internal/models"
)

// CartRepository defines data operations for user carts. Item lookups are
// user-scoped: an item in someone else's cart is indistinguishable from a
// missing one.
type CartRepository interface {
	WithTransaction(fn func(tx CartRepository) error) error

	GetOrCreateCart(userID uuid.UUID) (*models.Cart, error)
	GetCartWithItems(userID uuid.UUID) (*models.Cart, error)
	GetCartItem(itemID, userID uuid.UUID) (*models.CartItem, error)
	GetCartItemByProductInfo(cartID, productInfoID uuid.UUID) (*models.CartItem, error)
	GetProductInfoForUpdate(id uuid.UUID) (*models.ProductInfo, error)
	CreateCartItem(item *models.CartItem) error
	UpdateCartItemQuantity(itemID uuid.UUID, quantity int) error
	DeleteCartItem(itemID uuid.UUID) error
	ClearCart(cartID uuid.UUID) error
}

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTransaction(fn func(tx CartRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&cartRepository{db: tx})
	})
}

// GetOrCreateCart returns the user's singleton cart, creating it on first access
func (r *cartRepository) GetOrCreateCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := r.db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) GetCartWithItems(userID uuid.UUID) (*models.Cart, error) {
	cart, err := r.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}
	err = r.db.Preload("Items").Preload("Items.ProductInfo").
		Preload("Items.ProductInfo.Product").Preload("Items.ProductInfo.Shop").
		First(cart, "id = ?", cart.ID).Error
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *cartRepository) GetCartItem(itemID, userID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, userID).
		Preload("ProductInfo").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) GetCartItemByProductInfo(cartID, productInfoID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("cart_id = ? AND product_info_id = ?", cartID, productInfoID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetProductInfoForUpdate reads a product info row with a row lock. Only
// meaningful inside WithTransaction; the lock serializes concurrent clamp
// checks and stock decrements against the same row.
func (r *cartRepository) GetProductInfoForUpdate(id uuid.UUID) (*models.ProductInfo, error) {
	var info models.ProductInfo
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&info, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &info, nil
}

func (r *cartRepository) CreateCartItem(item *models.CartItem) error {
	return r.db.Create(item).Error
}

func (r *cartRepository) UpdateCartItemQuantity(itemID uuid.UUID, quantity int) error {
	return r.db.Model(&models.CartItem{}).Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *cartRepository) DeleteCartItem(itemID uuid.UUID) error {
	return r.db.Delete(&models.CartItem{}, "id = ?", itemID).Error
}

func (r *cartRepository) ClearCart(cartID uuid.UUID) error {
	return r.db.Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}
