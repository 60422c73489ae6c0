package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhvub/coffeeshop-backend/internal/promotions"
	"github.com/minhvub/coffeeshop-backend/pkg/db/models"
	"github.com/minhvub/coffeeshop-backend/pkg/enums"
	pkgerrors "github.com/minhvub/coffeeshop-backend/pkg/errors"
	"github.com/minhvub/coffeeshop-backend/pkg/logger"
)

// Service exposes order management operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	FilterOrders(ctx context.Context, params FilterParams) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Stats(ctx context.Context) (*RevenueStats, error)
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput holds the validated payload to place an order.
type CreateOrderInput struct {
	CustomerName string
	Items        []OrderItemInput
}

type orderStore interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	Filter(ctx context.Context, params FilterParams) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	Stats(ctx context.Context) (*RevenueStats, error)
}

type productCatalog interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
}

type cartQuoter interface {
	QuoteCart(ctx context.Context, input promotions.QuoteInput) (*promotions.QuoteResult, error)
}

type service struct {
	repo      orderStore
	catalog   productCatalog
	quoter    cartQuoter
	publisher EventPublisher
	logg      *logger.Logger
}

// NewService wires the order service.
func NewService(repo orderStore, catalog productCatalog, quoter cartQuoter, publisher EventPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if quoter == nil {
		return nil, fmt.Errorf("cart quoter required")
	}
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		catalog:   catalog,
		quoter:    quoter,
		publisher: publisher,
		logg:      logg,
	}, nil
}

// CreateOrder prices the cart against the catalog, applies active
// promotions, persists the order, and announces it on the event topic.
// A publish failure does not fail the order.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	ids := make([]string, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.ProductID.String())
	}
	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order products")
	}

	subtotal := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(input.Items))
	cartItems := make([]promotions.CartItem, 0, len(input.Items))
	for _, item := range input.Items {
		product, ok := products[item.ProductID.String()]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unknown product %s", item.ProductID))
		}
		if !product.IsAvailable {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s is not available", item.ProductID))
		}

		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		orderItems = append(orderItems, models.OrderItem{
			ID:        uuid.New(),
			ProductID: item.ProductID,
			Name:      product.Name,
			Category:  product.Category,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		})
		cartItems = append(cartItems, promotions.CartItem{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
		})
	}

	quote, err := s.quoter.QuoteCart(ctx, promotions.QuoteInput{
		Items:    cartItems,
		Subtotal: subtotal,
	})
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:            uuid.New(),
		CustomerName:  input.CustomerName,
		Status:        enums.OrderPending,
		Subtotal:      subtotal,
		TotalDiscount: quote.TotalDiscount,
		FinalTotal:    quote.FinalTotal,
		Items:         orderItems,
	}
	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	logCtx := s.logg.WithOrderID(ctx, created.ID.String())
	if err := s.publisher.PublishOrderCreated(ctx, OrderCreatedPayload{
		OrderID:      created.ID,
		CustomerName: created.CustomerName,
		Status:       created.Status.String(),
		FinalTotal:   created.FinalTotal,
		CreatedAt:    created.CreatedAt,
	}); err != nil {
		s.logg.Error(logCtx, "order event publish failed", err)
	}

	s.logg.Info(logCtx, "order created")
	return created, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return rows, nil
}

func (s *service) FilterOrders(ctx context.Context, params FilterParams) ([]models.Order, error) {
	rows, err := s.repo.Filter(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "filter orders")
	}
	return rows, nil
}

// UpdateStatus moves the order to the requested status. Terminal orders
// cannot transition further.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if current.Status.IsTerminal() && current.Status != status {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("order is already %s", current.Status))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, mapLookupError(err)
	}
	s.logg.Info(s.logg.WithOrderID(ctx, id.String()), "order status updated")
	return updated, nil
}

// CancelOrder marks the order as cancelled rather than deleting it.
func (s *service) CancelOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.UpdateStatus(ctx, id, enums.OrderCancelled)
}

func (s *service) Stats(ctx context.Context) (*RevenueStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order stats")
	}
	return stats, nil
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
}
