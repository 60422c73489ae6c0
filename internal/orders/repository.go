package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhvub/coffeeshop-backend/internal/repo"
	"github.com/minhvub/coffeeshop-backend/pkg/db/models"
	"github.com/minhvub/coffeeshop-backend/pkg/enums"
)

// FilterParams narrows order listings.
type FilterParams struct {
	Status    *enums.OrderStatus
	StatusNot *enums.OrderStatus
	Keyword   string
}

// DailyRevenue is one day of delivered-order revenue.
type DailyRevenue struct {
	Day          string          `json:"day"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Count        int64           `json:"count"`
}

// StatusCount is the number of orders currently in one status.
type StatusCount struct {
	Status enums.OrderStatus `json:"status"`
	Count  int64             `json:"count"`
}

// RevenueStats groups daily revenue with the status breakdown.
type RevenueStats struct {
	Daily  []DailyRevenue `json:"daily"`
	Status []StatusCount  `json:"status"`
}

// Repository persists orders and their items.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// Create inserts an order row along with its items.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads the order with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("Items").
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.DB(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// Filter returns orders matching the params, newest first. The keyword
// matches the customer name case-insensitively.
func (r *Repository) Filter(ctx context.Context, params FilterParams) ([]models.Order, error) {
	qb := r.DB(ctx).Preload("Items")
	if params.Status != nil {
		qb = qb.Where("status = ?", *params.Status)
	}
	if params.StatusNot != nil {
		qb = qb.Where("status <> ?", *params.StatusNot)
	}
	if keyword := strings.TrimSpace(params.Keyword); keyword != "" {
		qb = qb.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(keyword)+"%")
	}

	var rows []models.Order
	err := qb.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// Update saves the order row.
func (r *Repository) Update(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB(ctx).Omit("Items").Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus sets the order status and returns the refreshed record.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	result := r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// Stats aggregates delivered-order revenue per day plus the order count
// per status.
func (r *Repository) Stats(ctx context.Context) (*RevenueStats, error) {
	var daily []DailyRevenue
	err := r.DB(ctx).
		Model(&models.Order{}).
		Select("DATE(created_at) AS day, SUM(final_total) AS total_revenue, COUNT(*) AS count").
		Where("status = ?", enums.OrderDelivered).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&daily).
		Error
	if err != nil {
		return nil, err
	}

	var statuses []StatusCount
	err = r.DB(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statuses).
		Error
	if err != nil {
		return nil, err
	}

	return &RevenueStats{Daily: daily, Status: statuses}, nil
}
