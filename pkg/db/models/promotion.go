package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/minhvub/coffeeshop-backend/pkg/enums"
)

// Promotion is a discount rule scoped to the whole order, specific
// products, a category, or a fixed product combo.
type Promotion struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name          string               `gorm:"column:name;not null"`
	Description   string               `gorm:"column:description"`
	Scope         enums.PromotionScope `gorm:"column:scope;not null"`
	Type          enums.PromotionType  `gorm:"column:type;not null"`
	Value         decimal.Decimal      `gorm:"column:value;type:numeric(12,2);not null"`
	MinOrderTotal *decimal.Decimal     `gorm:"column:min_order_total;type:numeric(12,2)"`
	ProductIDs    pq.StringArray       `gorm:"column:product_ids;type:text[]"`
	Categories    pq.StringArray       `gorm:"column:categories;type:text[]"`
	ComboItems    []PromotionComboItem `gorm:"foreignKey:PromotionID;constraint:OnDelete:CASCADE"`
	IsActive      bool                 `gorm:"column:is_active;not null;default:true"`
	StartDate     time.Time            `gorm:"column:start_date;not null"`
	EndDate       time.Time            `gorm:"column:end_date;not null"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ActiveAt reports whether the promotion applies at the given instant.
// The date window is inclusive on both ends.
func (p Promotion) ActiveAt(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if now.Before(p.StartDate) {
		return false
	}
	if now.After(p.EndDate) {
		return false
	}
	return true
}
