package models

import "github.com/google/uuid"

// PromotionComboItem is one required product line of a combo promotion.
type PromotionComboItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	PromotionID uuid.UUID `gorm:"column:promotion_id;type:uuid;not null;index"`
	ProductID   string    `gorm:"column:product_id;not null"`
	RequiredQty int       `gorm:"column:required_qty;not null;default:1"`
}
