package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// CartService implements the user-scoped cart staging rules. Quantities are
// clamped to available stock at write time, under the same transaction that
// locks the stock row, so a cart item can never exceed what the shop has.
type CartService interface {
	GetCart(userID uuid.UUID) (*models.CartResponse, error)
	AddItem(userID uuid.UUID, req models.AddCartItemRequest) (*models.CartItemResult, error)
	UpdateItem(userID, itemID uuid.UUID, quantity int) (*models.CartItemResult, error)
	RemoveItem(userID, itemID uuid.UUID) error
	ClearCart(userID uuid.UUID) error
}

type cartService struct {
	repo   repository.CartRepository
	logger *logrus.Entry
}

// NewCartService creates a new cart service
func NewCartService(repo repository.CartRepository, logger *logrus.Logger) CartService {
	return &cartService{
		repo:   repo,
		logger: logger.WithField("component", "cart-service"),
	}
}

func (s *cartService) GetCart(userID uuid.UUID) (*models.CartResponse, error) {
	cart, err := s.repo.GetCartWithItems(userID)
	if err != nil {
		return nil, err
	}
	return &models.CartResponse{Cart: cart, TotalPrice: cart.Total()}, nil
}

// AddItem creates a cart item or increments an existing one. The result is
// clamped to available stock; a clamped write is a success with an advisory
// message, not an error.
func (s *cartService) AddItem(userID uuid.UUID, req models.AddCartItemRequest) (*models.CartItemResult, error) {
	var result *models.CartItemResult

	err := s.repo.WithTransaction(func(tx repository.CartRepository) error {
		cart, err := tx.GetOrCreateCart(userID)
		if err != nil {
			return err
		}

		info, err := tx.GetProductInfoForUpdate(req.ProductInfoID)
		if err != nil {
			return err
		}

		requested := req.Quantity
		created := false
		item, err := tx.GetCartItemByProductInfo(cart.ID, req.ProductInfoID)
		if err == models.ErrNotFound {
			created = true
			item = &models.CartItem{CartID: cart.ID, ProductInfoID: info.ID}
		} else if err != nil {
			return err
		} else {
			requested = item.Quantity + req.Quantity
		}

		quantity, clamped := clampToStock(requested, info.Quantity)
		result = &models.CartItemResult{Created: created, Clamped: clamped}
		if clamped {
			result.Message = fmt.Sprintf("quantity limited to available stock: %d", info.Quantity)
		}

		if quantity < 1 {
			// Out of stock: nothing to stage.
			if !created {
				if err := tx.DeleteCartItem(item.ID); err != nil {
					return err
				}
			}
			result.Created = false
			return nil
		}

		item.Quantity = quantity
		if created {
			if err := tx.CreateCartItem(item); err != nil {
				return err
			}
		} else if err := tx.UpdateCartItemQuantity(item.ID, quantity); err != nil {
			return err
		}
		result.Item = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateItem replaces a cart item's quantity, clamped to stock. Items in
// other users' carts read as not found.
func (s *cartService) UpdateItem(userID, itemID uuid.UUID, quantity int) (*models.CartItemResult, error) {
	var result *models.CartItemResult

	err := s.repo.WithTransaction(func(tx repository.CartRepository) error {
		item, err := tx.GetCartItem(itemID, userID)
		if err != nil {
			return err
		}

		info, err := tx.GetProductInfoForUpdate(item.ProductInfoID)
		if err != nil {
			return err
		}

		newQuantity, clamped := clampToStock(quantity, info.Quantity)
		result = &models.CartItemResult{Clamped: clamped}
		if clamped {
			result.Message = fmt.Sprintf("quantity limited to available stock: %d", info.Quantity)
		}

		if newQuantity < 1 {
			if err := tx.DeleteCartItem(item.ID); err != nil {
				return err
			}
			return nil
		}

		if err := tx.UpdateCartItemQuantity(item.ID, newQuantity); err != nil {
			return err
		}
		item.Quantity = newQuantity
		result.Item = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem deletes one cart item. Removing an item that is absent or not
// the caller's surfaces not found rather than silently succeeding.
func (s *cartService) RemoveItem(userID, itemID uuid.UUID) error {
	item, err := s.repo.GetCartItem(itemID, userID)
	if err != nil {
		return err
	}
	return s.repo.DeleteCartItem(item.ID)
}

func (s *cartService) ClearCart(userID uuid.UUID) error {
	cart, err := s.repo.GetOrCreateCart(userID)
	if err != nil {
		return err
	}
	return s.repo.ClearCart(cart.ID)
}

// clampToStock limits a requested quantity to what the shop has on hand
func clampToStock(requested, available int) (int, bool) {
	if requested > available {
		return available, true
	}
	return requested, false
}
