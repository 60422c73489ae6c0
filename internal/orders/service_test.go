package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/minhvub/coffeeshop-backend/internal/promotions"
	"github.com/minhvub/coffeeshop-backend/pkg/db/models"
	"github.com/minhvub/coffeeshop-backend/pkg/enums"
	pkgerrors "github.com/minhvub/coffeeshop-backend/pkg/errors"
	"github.com/minhvub/coffeeshop-backend/pkg/logger"
)

type stubOrderStore struct {
	byID map[uuid.UUID]*models.Order
}

func newStubOrderStore() *stubOrderStore {
	return &stubOrderStore{byID: map[uuid.UUID]*models.Order{}}
}

func (s *stubOrderStore) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	s.byID[order.ID] = order
	return order, nil
}

func (s *stubOrderStore) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *order
	return &clone, nil
}

func (s *stubOrderStore) List(context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, order := range s.byID {
		out = append(out, *order)
	}
	return out, nil
}

func (s *stubOrderStore) Filter(context.Context, FilterParams) ([]models.Order, error) {
	return s.List(context.Background())
}

func (s *stubOrderStore) UpdateStatus(_ context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	order, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	order.Status = status
	clone := *order
	return &clone, nil
}

func (s *stubOrderStore) Stats(context.Context) (*RevenueStats, error) {
	return &RevenueStats{}, nil
}

type stubOrderCatalog struct {
	products map[string]models.Product
}

func (s *stubOrderCatalog) FindByIDs(_ context.Context, ids []string) (map[string]models.Product, error) {
	out := map[string]models.Product{}
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			out[id] = product
		}
	}
	return out, nil
}

type stubQuoter struct {
	result promotions.QuoteResult
	input  promotions.QuoteInput
}

func (s *stubQuoter) QuoteCart(_ context.Context, input promotions.QuoteInput) (*promotions.QuoteResult, error) {
	s.input = input
	result := s.result
	if result.FinalTotal.IsZero() && result.TotalDiscount.IsZero() {
		result.FinalTotal = input.Subtotal
	}
	return &result, nil
}

type capturingPublisher struct {
	published []OrderCreatedPayload
	err       error
}

func (p *capturingPublisher) PublishOrderCreated(_ context.Context, payload OrderCreatedPayload) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

func newOrderService(t *testing.T, store *stubOrderStore, catalog *stubOrderCatalog, quoter *stubQuoter, publisher EventPublisher) Service {
	t.Helper()
	if catalog == nil {
		catalog = &stubOrderCatalog{products: map[string]models.Product{}}
	}
	if quoter == nil {
		quoter = &stubQuoter{}
	}
	svc, err := NewService(store, catalog, quoter, publisher, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func TestCreateOrderComputesTotalsAndPublishes(t *testing.T) {
	latteID := uuid.New()

	store := newStubOrderStore()
	catalog := &stubOrderCatalog{products: map[string]models.Product{
		latteID.String(): {
			ID: latteID, Name: "latte", Category: "coffee",
			Price: decimal.NewFromInt(45000), IsAvailable: true,
		},
	}}
	quoter := &stubQuoter{result: promotions.QuoteResult{
		TotalDiscount: decimal.NewFromInt(9000),
		FinalTotal:    decimal.NewFromInt(81000),
	}}
	publisher := &capturingPublisher{}
	svc := newOrderService(t, store, catalog, quoter, publisher)

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerName: "Linh",
		Items:        []OrderItemInput{{ProductID: latteID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.True(t, created.Subtotal.Equal(decimal.NewFromInt(90000)))
	assert.True(t, created.TotalDiscount.Equal(decimal.NewFromInt(9000)))
	assert.True(t, created.FinalTotal.Equal(decimal.NewFromInt(81000)))
	assert.Equal(t, enums.OrderPending, created.Status)
	require.Len(t, created.Items, 1)
	assert.Equal(t, "latte", created.Items[0].Name)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, created.ID, publisher.published[0].OrderID)

	// the quoter saw the computed subtotal
	assert.True(t, quoter.input.Subtotal.Equal(decimal.NewFromInt(90000)))
}

func TestCreateOrderPublishFailureDoesNotFailOrder(t *testing.T) {
	latteID := uuid.New()

	store := newStubOrderStore()
	catalog := &stubOrderCatalog{products: map[string]models.Product{
		latteID.String(): {
			ID: latteID, Name: "latte", Category: "coffee",
			Price: decimal.NewFromInt(45000), IsAvailable: true,
		},
	}}
	publisher := &capturingPublisher{err: assert.AnError}
	svc := newOrderService(t, store, catalog, nil, publisher)

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Items: []OrderItemInput{{ProductID: latteID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Len(t, store.byID, 1)
	assert.NotNil(t, created)
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newOrderService(t, newStubOrderStore(), nil, nil, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		Items: []OrderItemInput{{ProductID: uuid.New(), Quantity: 0}},
	})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	// unknown product
	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		Items: []OrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateStatusRejectsTerminalTransition(t *testing.T) {
	store := newStubOrderStore()
	order := &models.Order{ID: uuid.New(), Status: enums.OrderCancelled}
	store.byID[order.ID] = order
	svc := newOrderService(t, store, nil, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderConfirmed)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCancelOrder(t *testing.T) {
	store := newStubOrderStore()
	order := &models.Order{ID: uuid.New(), Status: enums.OrderPending}
	store.byID[order.ID] = order
	svc := newOrderService(t, store, nil, nil, nil)

	cancelled, err := svc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderCancelled, cancelled.Status)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc := newOrderService(t, newStubOrderStore(), nil, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), enums.OrderConfirmed)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
