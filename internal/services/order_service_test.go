package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// MockOrderRepository is a mock implementation of repository.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

var _ repository.OrderRepository = (*MockOrderRepository)(nil)

// WithTransaction executes the callback with the mock itself, simulating a
// transaction without a real database.
func (m *MockOrderRepository) WithTransaction(fn func(tx repository.OrderRepository) error) error {
	return fn(m)
}

func (m *MockOrderRepository) GetCartWithItems(cartID, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(cartID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockOrderRepository) GetContact(contactID, userID uuid.UUID) (*models.Contact, error) {
	args := m.Called(contactID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockOrderRepository) GetProductInfoForUpdate(id uuid.UUID) (*models.ProductInfo, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductInfo), args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(order *models.Order) error {
	args := m.Called(order)
	if args.Error(0) == nil {
		order.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItem(item *models.OrderItem) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockOrderRepository) DecrementStock(productInfoID uuid.UUID, quantity int) error {
	args := m.Called(productInfoID, quantity)
	return args.Error(0)
}

func (m *MockOrderRepository) ClearCartItems(cartID uuid.UUID) error {
	args := m.Called(cartID)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(orderID, userID uuid.UUID) (*models.Order, error) {
	args := m.Called(orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrderForStatusUpdate(orderID uuid.UUID) (*models.Order, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrders(userID uuid.UUID) ([]models.Order, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatus(orderID uuid.UUID, status models.OrderStatus) error {
	args := m.Called(orderID, status)
	return args.Error(0)
}

// recordingInvalidator captures invalidation calls for assertions
type recordingInvalidator struct {
	invalidated []uuid.UUID
}

func (r *recordingInvalidator) InvalidateProduct(_ context.Context, productInfoID uuid.UUID) {
	r.invalidated = append(r.invalidated, productInfoID)
}

// ===========================================
// Confirm Order Tests
// ===========================================

func TestConfirmOrder_Success(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cartID := uuid.New()
	contactID := uuid.New()
	infoA := uuid.New()
	infoB := uuid.New()

	mockRepo := new(MockOrderRepository)
	invalidator := &recordingInvalidator{}
	service := NewOrderService(mockRepo, invalidator, testLogger())

	cart := &models.Cart{
		ID:     cartID,
		UserID: userID,
		Items: []models.CartItem{
			{ProductInfoID: infoA, Quantity: 2},
			{ProductInfoID: infoB, Quantity: 1},
		},
	}

	mockRepo.On("GetCartWithItems", cartID, userID).Return(cart, nil)
	mockRepo.On("GetContact", contactID, userID).Return(&models.Contact{ID: contactID, UserID: userID}, nil)
	mockRepo.On("CreateOrder", mock.AnythingOfType("*models.Order")).Return(nil)
	mockRepo.On("GetProductInfoForUpdate", infoA).
		Return(&models.ProductInfo{ID: infoA, Quantity: 5, Price: 10.00}, nil)
	mockRepo.On("GetProductInfoForUpdate", infoB).
		Return(&models.ProductInfo{ID: infoB, Quantity: 1, Price: 99.99}, nil)
	mockRepo.On("CreateOrderItem", mock.AnythingOfType("*models.OrderItem")).Return(nil).Twice()
	mockRepo.On("DecrementStock", infoA, 2).Return(nil)
	mockRepo.On("DecrementStock", infoB, 1).Return(nil)
	mockRepo.On("ClearCartItems", cartID).Return(nil)
	mockRepo.On("GetOrderByID", mock.AnythingOfType("uuid.UUID"), userID).
		Return(&models.Order{
			UserID: userID,
			Status: models.OrderStatusNew,
			Items: []models.OrderItem{
				{ProductInfoID: infoA, Quantity: 2, UnitPrice: 10.00},
				{ProductInfoID: infoB, Quantity: 1, UnitPrice: 99.99},
			},
		}, nil)

	resp, err := service.ConfirmOrder(ctx, userID, models.ConfirmOrderRequest{CartID: cartID, ContactID: contactID})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, models.OrderStatusNew, resp.Order.Status)
	assert.InDelta(t, 119.99, resp.TotalPrice, 0.001)
	assert.ElementsMatch(t, []uuid.UUID{infoA, infoB}, invalidator.invalidated)
	mockRepo.AssertExpectations(t)
}

func TestConfirmOrder_SnapshotsUnitPrice(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cartID := uuid.New()
	contactID := uuid.New()
	infoID := uuid.New()

	mockRepo := new(MockOrderRepository)
	service := NewOrderService(mockRepo, &recordingInvalidator{}, testLogger())

	cart := &models.Cart{
		ID:     cartID,
		UserID: userID,
		Items:  []models.CartItem{{ProductInfoID: infoID, Quantity: 1}},
	}

	mockRepo.On("GetCartWithItems", cartID, userID).Return(cart, nil)
	mockRepo.On("GetContact", contactID, userID).Return(&models.Contact{ID: contactID}, nil)
	mockRepo.On("CreateOrder", mock.AnythingOfType("*models.Order")).Return(nil)
	mockRepo.On("GetProductInfoForUpdate", infoID).
		Return(&models.ProductInfo{ID: infoID, Quantity: 3, Price: 42.50}, nil)
	mockRepo.On("CreateOrderItem", mock.MatchedBy(func(item *models.OrderItem) bool {
		return item.UnitPrice == 42.50 && item.Quantity == 1
	})).Return(nil)
	mockRepo.On("DecrementStock", infoID, 1).Return(nil)
	mockRepo.On("ClearCartItems", cartID).Return(nil)
	mockRepo.On("GetOrderByID", mock.AnythingOfType("uuid.UUID"), userID).
		Return(&models.Order{UserID: userID, Status: models.OrderStatusNew}, nil)

	_, err := service.ConfirmOrder(ctx, userID, models.ConfirmOrderRequest{CartID: cartID, ContactID: contactID})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestConfirmOrder_ReloadFailureStillReturnsOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cartID := uuid.New()
	contactID := uuid.New()
	infoID := uuid.New()

	mockRepo := new(MockOrderRepository)
	service := NewOrderService(mockRepo, &recordingInvalidator{}, testLogger())

	cart := &models.Cart{
		ID:     cartID,
		UserID: userID,
		Items:  []models.CartItem{{ProductInfoID: infoID, Quantity: 2}},
	}

	mockRepo.On("GetCartWithItems", cartID, userID).Return(cart, nil)
	mockRepo.On("GetContact", contactID, userID).Return(&models.Contact{ID: contactID}, nil)
	mockRepo.On("CreateOrder", mock.AnythingOfType("*models.Order")).Return(nil)
	mockRepo.On("GetProductInfoForUpdate", infoID).
		Return(&models.ProductInfo{ID: infoID, Quantity: 5, Price: 15.00}, nil)
	mockRepo.On("CreateOrderItem", mock.AnythingOfType("*models.OrderItem")).Return(nil)
	mockRepo.On("DecrementStock", infoID, 2).Return(nil)
	mockRepo.On("ClearCartItems", cartID).Return(nil)
	// The transaction committed; a failed reload must not turn the
	// confirmed order into an error for the client.
	mockRepo.On("GetOrderByID", mock.AnythingOfType("uuid.UUID"), userID).
		Return(nil, errors.New("connection reset"))

	resp, err := service.ConfirmOrder(ctx, userID, models.ConfirmOrderRequest{CartID: cartID, ContactID: contactID})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, models.OrderStatusNew, resp.Order.Status)
	assert.Len(t, resp.Order.Items, 1)
	assert.InDelta(t, 30.00, resp.TotalPrice, 0.001)
	mockRepo.AssertExpectations(t)
}

func TestConfirmOrder_EmptyCart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cartID := uuid.New()
	contactID := uuid.New()

	mockRepo := new(MockOrderRepository)
	service := NewOrderService(mockRepo, &recordingInvalidator{}, testLogger())

	mockRepo.On("GetCartWithItems", cartID, userID).
		Return(&models.Cart{ID: cartID, UserID: userID}, nil)
	mockRepo.On("GetContact", contactID, userID).Return(&models.Contact{ID: contactID}, nil)

	resp, err := service.ConfirmOrder(ctx, userID, models.ConfirmOrderRequest{CartID: cartID, ContactID: contactID})

	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assert.Nil(t, resp)
	mockRepo.AssertNotCalled(t, "CreateOrder", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestConfirmOrder_InsufficientStockAbortsAll(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cartID := uuid.New()
	contactID := uuid.New()
	infoA := uuid.New()
	infoB := uuid.New()

	mockRepo := new(MockOrderRepository)
	invalidator := &recordingInvalidator{}
	service := NewOrderService(mockRepo, invalidator, testLogger())

	cart := &models.Cart{
		ID:     cartID,
		UserID: userID,
		Items: []models.CartItem{
			{ProductInfoID: infoA, Quantity: 2},
			{ProductInfoID: infoB, Quantity: 4},
		},
	}

	mockRepo.On("GetCartWithItems", cartID, userID).Return(cart, nil)
	mockRepo.On("GetContact", contactID, userID).Return(&models.Contact{ID: contactID}, nil)
	mockRepo.On("CreateOrder", mock.AnythingOfType("*models.Order")).Return(nil)
	mockRepo.On("GetProductInfoForUpdate", infoA).
		Return(&models.ProductInfo{ID: infoA, Quantity: 5, Price: 10.00}, nil)
	mockRepo.On("CreateOrderItem", mock.AnythingOfType("*models.OrderItem")).Return(nil)
	mockRepo.On("DecrementStock", infoA, 2).Return(nil)
	// Second line has only 1 left against the 4 requested
	mockRepo.On("GetProductInfoForUpdate", infoB).
		Return(&models.ProductInfo{ID: infoB, Quantity: 1, Product: &models.Product{Name: "Gadget"}}, nil)

	resp, err := service.ConfirmOrder(ctx, userID, models.ConfirmOrderRequest{CartID: cartID, ContactID: contactID})

	assert.Nil(t, resp)
	var stockErr *models.InsufficientStockError
	assert.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Gadget", stockErr.ProductName)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 4, stockErr.Requested)

	// Nothing leaks out of the aborted transaction
	assert.Empty(t, invalidator.invalidated)
	mockRepo.AssertNotCalled(t, "ClearCartItems", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestConfirmOrder_OtherUsersCartNotFound(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cartID := uuid.New()
	contactID := uuid.New()

	mockRepo := new(MockOrderRepository)
	service := NewOrderService(mockRepo, &recordingInvalidator{}, testLogger())

	mockRepo.On("GetCartWithItems", cartID, userID).Return(nil, models.ErrNotFound)

	resp, err := service.ConfirmOrder(ctx, userID, models.ConfirmOrderRequest{CartID: cartID, ContactID: contactID})

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, resp)
	mockRepo.AssertExpectations(t)
}

func TestConfirmOrder_OtherUsersContactNotFound(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cartID := uuid.New()
	contactID := uuid.New()

	mockRepo := new(MockOrderRepository)
	service := NewOrderService(mockRepo, &recordingInvalidator{}, testLogger())

	cart := &models.Cart{
		ID:     cartID,
		UserID: userID,
		Items:  []models.CartItem{{ProductInfoID: uuid.New(), Quantity: 1}},
	}
	mockRepo.On("GetCartWithItems", cartID, userID).Return(cart, nil)
	mockRepo.On("GetContact", contactID, userID).Return(nil, models.ErrNotFound)

	resp, err := service.ConfirmOrder(ctx, userID, models.ConfirmOrderRequest{CartID: cartID, ContactID: contactID})

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, resp)
	mockRepo.AssertNotCalled(t, "CreateOrder", mock.Anything)
	mockRepo.AssertExpectations(t)
}

// ===========================================
// Order Status Tests
// ===========================================

func TestUpdateOrderStatus_ValidTransition(t *testing.T) {
	orderID := uuid.New()

	mockRepo := new(MockOrderRepository)
	service := NewOrderService(mockRepo, &recordingInvalidator{}, testLogger())

	mockRepo.On("GetOrderForStatusUpdate", orderID).
		Return(&models.Order{ID: orderID, Status: models.OrderStatusNew}, nil)
	mockRepo.On("UpdateOrderStatus", orderID, models.OrderStatusProcessing).Return(nil)

	order, err := service.UpdateOrderStatus(orderID, models.OrderStatusProcessing)

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	mockRepo.AssertExpectations(t)
}

func TestUpdateOrderStatus_InvalidTransition(t *testing.T) {
	orderID := uuid.New()

	mockRepo := new(MockOrderRepository)
	service := NewOrderService(mockRepo, &recordingInvalidator{}, testLogger())

	mockRepo.On("GetOrderForStatusUpdate", orderID).
		Return(&models.Order{ID: orderID, Status: models.OrderStatusNew}, nil)

	order, err := service.UpdateOrderStatus(orderID, models.OrderStatusDelivered)

	assert.ErrorIs(t, err, models.ErrInvalidStatusTransition)
	assert.Nil(t, order)
	mockRepo.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// ===========================================
// Order History Tests
// ===========================================

func TestListOrders_ComputesTotals(t *testing.T) {
	userID := uuid.New()

	mockRepo := new(MockOrderRepository)
	service := NewOrderService(mockRepo, &recordingInvalidator{}, testLogger())

	orders := []models.Order{
		{UserID: userID, Items: []models.OrderItem{{Quantity: 2, UnitPrice: 25.00}}},
		{UserID: userID},
	}
	mockRepo.On("ListOrders", userID).Return(orders, nil)

	responses, err := service.ListOrders(userID)

	assert.NoError(t, err)
	assert.Len(t, responses, 2)
	assert.InDelta(t, 50.00, responses[0].TotalPrice, 0.001)
	assert.Equal(t, 0.0, responses[1].TotalPrice)
	mockRepo.AssertExpectations(t)
}

func TestGetOrder_NotFound(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	mockRepo := new(MockOrderRepository)
	service := NewOrderService(mockRepo, &recordingInvalidator{}, testLogger())

	mockRepo.On("GetOrderByID", orderID, userID).Return(nil, models.ErrNotFound)

	resp, err := service.GetOrder(userID, orderID)

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, resp)
	mockRepo.AssertExpectations(t)
}
