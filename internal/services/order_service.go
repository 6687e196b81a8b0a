package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/cache"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// OrderService converts carts into immutable orders and serves order history
type OrderService interface {
	// ConfirmOrder atomically converts the user's cart into an order: stock is
	// re-checked under row locks inside one transaction, decremented, and the
	// cart cleared. Any shortfall aborts the whole conversion.
	ConfirmOrder(ctx context.Context, userID uuid.UUID, req models.ConfirmOrderRequest) (*models.OrderResponse, error)

	GetOrder(userID, orderID uuid.UUID) (*models.OrderResponse, error)
	ListOrders(userID uuid.UUID) ([]models.OrderResponse, error)
	UpdateOrderStatus(orderID uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	repo        repository.OrderRepository
	invalidator cache.Invalidator
	logger      *logrus.Entry
}

// NewOrderService creates a new order service
func NewOrderService(repo repository.OrderRepository, invalidator cache.Invalidator, logger *logrus.Logger) OrderService {
	return &orderService{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger.WithField("component", "order-service"),
	}
}

func (s *orderService) ConfirmOrder(ctx context.Context, userID uuid.UUID, req models.ConfirmOrderRequest) (*models.OrderResponse, error) {
	var order *models.Order
	var touched []uuid.UUID

	err := s.repo.WithTransaction(func(tx repository.OrderRepository) error {
		cart, err := tx.GetCartWithItems(req.CartID, userID)
		if err != nil {
			return err
		}
		if _, err := tx.GetContact(req.ContactID, userID); err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return models.ErrEmptyCart
		}

		order = &models.Order{
			UserID:    userID,
			ContactID: req.ContactID,
			Status:    models.OrderStatusNew,
		}
		if err := tx.CreateOrder(order); err != nil {
			return err
		}

		for _, cartItem := range cart.Items {
			// Re-read stock under a row lock; the pre-transaction snapshot
			// in cart.Items cannot be trusted under concurrent checkout.
			info, err := tx.GetProductInfoForUpdate(cartItem.ProductInfoID)
			if err != nil {
				return err
			}
			if info.Quantity < cartItem.Quantity {
				name := info.Name
				if info.Product != nil {
					name = info.Product.Name
				}
				return &models.InsufficientStockError{
					ProductName: name,
					Available:   info.Quantity,
					Requested:   cartItem.Quantity,
				}
			}

			item := models.OrderItem{
				OrderID:       order.ID,
				ProductInfoID: info.ID,
				Quantity:      cartItem.Quantity,
				UnitPrice:     info.Price,
			}
			if err := tx.CreateOrderItem(&item); err != nil {
				return err
			}
			order.Items = append(order.Items, item)
			if err := tx.DecrementStock(info.ID, cartItem.Quantity); err != nil {
				return err
			}
			touched = append(touched, info.ID)
		}

		// The cart row survives empty for reuse; only its items are consumed.
		return tx.ClearCartItems(cart.ID)
	})
	if err != nil {
		return nil, err
	}

	for _, id := range touched {
		s.invalidator.InvalidateProduct(ctx, id)
	}

	confirmed, err := s.repo.GetOrderByID(order.ID, userID)
	if err != nil {
		// The conversion already committed; serve the staged copy rather
		// than reporting a failure for an order that exists.
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("Failed to reload confirmed order")
		confirmed = order
	}
	s.logger.WithFields(logrus.Fields{
		"order_id": confirmed.ID,
		"user_id":  userID,
		"items":    len(confirmed.Items),
	}).Info("Order confirmed")

	return &models.OrderResponse{Order: confirmed, TotalPrice: confirmed.Total()}, nil
}

func (s *orderService) GetOrder(userID, orderID uuid.UUID) (*models.OrderResponse, error) {
	order, err := s.repo.GetOrderByID(orderID, userID)
	if err != nil {
		return nil, err
	}
	return &models.OrderResponse{Order: order, TotalPrice: order.Total()}, nil
}

func (s *orderService) ListOrders(userID uuid.UUID) ([]models.OrderResponse, error) {
	orders, err := s.repo.ListOrders(userID)
	if err != nil {
		return nil, err
	}
	responses := make([]models.OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, models.OrderResponse{
			Order:      &orders[i],
			TotalPrice: orders[i].Total(),
		})
	}
	return responses, nil
}

// UpdateOrderStatus advances an order along the linear lifecycle. The
// read-validate-write runs in one transaction with the order row locked,
// so concurrent updates validate against each other's committed state.
func (s *orderService) UpdateOrderStatus(orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	var order *models.Order
	err := s.repo.WithTransaction(func(tx repository.OrderRepository) error {
		var err error
		order, err = tx.GetOrderForStatusUpdate(orderID)
		if err != nil {
			return err
		}
		if err := models.ValidateOrderStatusTransition(order.Status, status); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(orderID, status); err != nil {
			return err
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
