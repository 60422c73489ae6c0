package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhvub/coffeeshop-backend/pkg/enums"
)

// Order is a placed cart with its applied discounts frozen in.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CustomerName  string            `gorm:"column:customer_name"`
	Status        enums.OrderStatus `gorm:"column:status;not null;index"`
	Subtotal      decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TotalDiscount decimal.Decimal   `gorm:"column:total_discount;type:numeric(12,2);not null"`
	FinalTotal    decimal.Decimal   `gorm:"column:final_total;type:numeric(12,2);not null"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
