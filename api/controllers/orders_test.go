package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordersvc "github.com/minhvub/coffeeshop-backend/internal/orders"
	"github.com/minhvub/coffeeshop-backend/pkg/db/models"
	"github.com/minhvub/coffeeshop-backend/pkg/enums"
	pkgerrors "github.com/minhvub/coffeeshop-backend/pkg/errors"
)

type stubOrderService struct {
	created     *ordersvc.CreateOrderInput
	createErr   error
	cancelled   []uuid.UUID
	statusCalls []enums.OrderStatus
	filter      *ordersvc.FilterParams
}

func (s *stubOrderService) CreateOrder(_ context.Context, input ordersvc.CreateOrderInput) (*models.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &input
	return &models.Order{ID: uuid.New(), Status: enums.OrderPending, FinalTotal: decimal.NewFromInt(90000)}, nil
}

func (s *stubOrderService) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: id}, nil
}

func (s *stubOrderService) ListOrders(context.Context) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderService) FilterOrders(_ context.Context, params ordersvc.FilterParams) ([]models.Order, error) {
	s.filter = &params
	return nil, nil
}

func (s *stubOrderService) UpdateStatus(_ context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	s.statusCalls = append(s.statusCalls, status)
	return &models.Order{ID: id, Status: status}, nil
}

func (s *stubOrderService) CancelOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	s.cancelled = append(s.cancelled, id)
	return &models.Order{ID: id, Status: enums.OrderCancelled}, nil
}

func (s *stubOrderService) Stats(context.Context) (*ordersvc.RevenueStats, error) {
	return &ordersvc.RevenueStats{}, nil
}

var _ ordersvc.Service = (*stubOrderService)(nil)

func TestCreateOrder(t *testing.T) {
	stub := &stubOrderService{}
	productID := uuid.New()
	body := `{"customer_name": "Linh", "items": [{"product_id": "` + productID.String() + `", "quantity": 2}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	CreateOrder(stub, testControllerLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, stub.created)
	assert.Equal(t, "Linh", stub.created.CustomerName)
	require.Len(t, stub.created.Items, 1)
	assert.Equal(t, productID, stub.created.Items[0].ProductID)
}

func TestCreateOrderRejectsMalformedProductID(t *testing.T) {
	stub := &stubOrderService{}
	body := `{"items": [{"product_id": "espresso", "quantity": 1}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	CreateOrder(stub, testControllerLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.created)
}

func TestCreateOrderValidationErrorPassesThrough(t *testing.T) {
	stub := &stubOrderService{createErr: pkgerrors.New(pkgerrors.CodeValidation, "product unavailable")}
	body := `{"items": [{"product_id": "` + uuid.NewString() + `", "quantity": 1}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	CreateOrder(stub, testControllerLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilterOrdersQuery(t *testing.T) {
	stub := &stubOrderService{}
	req := httptest.NewRequest(http.MethodGet, "/orders/filter?status_ne=CANCELLED&keyword=minh", nil)
	rec := httptest.NewRecorder()
	FilterOrders(stub, testControllerLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.filter)
	require.NotNil(t, stub.filter.StatusNot)
	assert.Equal(t, enums.OrderCancelled, *stub.filter.StatusNot)
	assert.Equal(t, "minh", stub.filter.Keyword)
}

func TestFilterOrdersRejectsUnknownStatus(t *testing.T) {
	stub := &stubOrderService{}
	req := httptest.NewRequest(http.MethodGet, "/orders/filter?status=SHIPPED", nil)
	rec := httptest.NewRecorder()
	FilterOrders(stub, testControllerLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.filter)
}

func TestUpdateOrderStatus(t *testing.T) {
	stub := &stubOrderService{}
	id := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/orders/"+id.String()+"/status", strings.NewReader(`{"status": "CONFIRMED"}`))
	req = withURLParam(req, "orderId", id.String())
	rec := httptest.NewRecorder()
	UpdateOrderStatus(stub, testControllerLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.statusCalls, 1)
	assert.Equal(t, enums.OrderConfirmed, stub.statusCalls[0])
}

func TestCancelOrderKeepsRecord(t *testing.T) {
	stub := &stubOrderService{}
	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/orders/"+id.String(), nil)
	req = withURLParam(req, "orderId", id.String())
	rec := httptest.NewRecorder()
	CancelOrder(stub, testControllerLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.cancelled, 1)

	var envelope struct {
		Data models.Order `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.Equal(t, enums.OrderCancelled, envelope.Data.Status)
}
