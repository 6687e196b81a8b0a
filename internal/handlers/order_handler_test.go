package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// MockOrderService is a mock implementation of services.OrderService
type MockOrderService struct {
	mock.Mock
}

var _ services.OrderService = (*MockOrderService)(nil)

func (m *MockOrderService) ConfirmOrder(ctx context.Context, userID uuid.UUID, req models.ConfirmOrderRequest) (*models.OrderResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetOrder(userID, orderID uuid.UUID) (*models.OrderResponse, error) {
	args := m.Called(userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderResponse), args.Error(1)
}

func (m *MockOrderService) ListOrders(userID uuid.UUID) ([]models.OrderResponse, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.OrderResponse), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	args := m.Called(orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

// setupTestRouter builds a router that injects the given user identity
func setupTestRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	return r
}

func TestConfirmOrderHandler_Created(t *testing.T) {
	userID := uuid.New()
	cartID := uuid.New()
	contactID := uuid.New()

	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService)

	router := setupTestRouter(userID)
	router.POST("/confirm-order", handler.ConfirmOrder)

	expected := &models.OrderResponse{
		Order:      &models.Order{ID: uuid.New(), UserID: userID, Status: models.OrderStatusNew},
		TotalPrice: 120.00,
	}
	mockService.On("ConfirmOrder", mock.Anything, userID,
		models.ConfirmOrderRequest{CartID: cartID, ContactID: contactID}).
		Return(expected, nil)

	body, _ := json.Marshal(gin.H{"cartId": cartID, "contactId": contactID})
	req := httptest.NewRequest(http.MethodPost, "/confirm-order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.OrderResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, expected.Order.ID, resp.Order.ID)
	assert.Equal(t, 120.00, resp.TotalPrice)
	mockService.AssertExpectations(t)
}

func TestConfirmOrderHandler_EmptyCart(t *testing.T) {
	userID := uuid.New()
	cartID := uuid.New()
	contactID := uuid.New()

	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService)

	router := setupTestRouter(userID)
	router.POST("/confirm-order", handler.ConfirmOrder)

	mockService.On("ConfirmOrder", mock.Anything, userID, mock.Anything).
		Return(nil, models.ErrEmptyCart)

	body, _ := json.Marshal(gin.H{"cartId": cartID, "contactId": contactID})
	req := httptest.NewRequest(http.MethodPost, "/confirm-order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "EMPTY_CART", resp.Error.Code)
	mockService.AssertExpectations(t)
}

func TestConfirmOrderHandler_InsufficientStock(t *testing.T) {
	userID := uuid.New()

	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService)

	router := setupTestRouter(userID)
	router.POST("/confirm-order", handler.ConfirmOrder)

	mockService.On("ConfirmOrder", mock.Anything, userID, mock.Anything).
		Return(nil, &models.InsufficientStockError{ProductName: "Gadget", Available: 1, Requested: 4})

	body, _ := json.Marshal(gin.H{"cartId": uuid.New(), "contactId": uuid.New()})
	req := httptest.NewRequest(http.MethodPost, "/confirm-order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "Gadget")
	mockService.AssertExpectations(t)
}

func TestConfirmOrderHandler_MissingFields(t *testing.T) {
	userID := uuid.New()

	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService)

	router := setupTestRouter(userID)
	router.POST("/confirm-order", handler.ConfirmOrder)

	req := httptest.NewRequest(http.MethodPost, "/confirm-order", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "ConfirmOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmOrderHandler_Unauthenticated(t *testing.T) {
	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New() // no identity middleware
	router.POST("/confirm-order", handler.ConfirmOrder)

	body, _ := json.Marshal(gin.H{"cartId": uuid.New(), "contactId": uuid.New()})
	req := httptest.NewRequest(http.MethodPost, "/confirm-order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetOrderHandler_NotFound(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService)

	router := setupTestRouter(userID)
	router.GET("/orders/:id", handler.GetOrder)

	mockService.On("GetOrder", userID, orderID).Return(nil, models.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}

func TestGetOrderHandler_BadID(t *testing.T) {
	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService)

	router := setupTestRouter(uuid.New())
	router.GET("/orders/:id", handler.GetOrder)

	req := httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatusHandler_InvalidTransition(t *testing.T) {
	orderID := uuid.New()

	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService)

	router := setupTestRouter(uuid.New())
	router.PATCH("/orders/:id/status", handler.UpdateOrderStatus)

	mockService.On("UpdateOrderStatus", orderID, models.OrderStatusDelivered).
		Return(nil, models.ValidateOrderStatusTransition(models.OrderStatusNew, models.OrderStatusDelivered))

	body, _ := json.Marshal(gin.H{"status": "DELIVERED"})
	req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)
	mockService.AssertExpectations(t)
}

func TestUpdateOrderStatusHandler_Success(t *testing.T) {
	orderID := uuid.New()

	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService)

	router := setupTestRouter(uuid.New())
	router.PATCH("/orders/:id/status", handler.UpdateOrderStatus)

	mockService.On("UpdateOrderStatus", orderID, models.OrderStatusProcessing).
		Return(&models.Order{ID: orderID, Status: models.OrderStatusProcessing}, nil)

	body, _ := json.Marshal(gin.H{"status": "PROCESSING"})
	req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	mockService.AssertExpectations(t)
}
