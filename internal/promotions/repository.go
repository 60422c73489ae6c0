package promotions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvub/coffeeshop-backend/internal/repo"
	"github.com/minhvub/coffeeshop-backend/pkg/db/models"
	"github.com/minhvub/coffeeshop-backend/pkg/enums"
)

// ListFilters narrows promotion listings.
type ListFilters struct {
	IsActive *bool
	Scope    *enums.PromotionScope
	Type     *enums.PromotionType
}

// Repository persists promotions and their combo items.
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

// FindByID loads the promotion with its combo items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var promo models.Promotion
	err := r.DB(ctx).
		Preload("ComboItems").
		First(&promo, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// List returns promotions matching the filters, newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Promotion, error) {
	qb := r.DB(ctx).Preload("ComboItems")
	if filters.IsActive != nil {
		qb = qb.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Scope != nil {
		qb = qb.Where("scope = ?", *filters.Scope)
	}
	if filters.Type != nil {
		qb = qb.Where("type = ?", *filters.Type)
	}

	var rows []models.Promotion
	err := qb.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// FindActive returns promotions whose active window contains now,
// most recently started first.
func (r *Repository) FindActive(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	var rows []models.Promotion
	err := r.DB(ctx).
		Preload("ComboItems").
		Where("is_active = ?", true).
		Where("start_date <= ?", now).
		Where("end_date >= ?", now).
		Order("start_date DESC").
		Find(&rows).
		Error
	return rows, err
}

// FindByScope returns every promotion of the given scope except excludeID.
// The validator does target membership checks on the loaded rows.
func (r *Repository) FindByScope(ctx context.Context, scope enums.PromotionScope, excludeID uuid.UUID) ([]models.Promotion, error) {
	qb := r.DB(ctx).
		Preload("ComboItems").
		Where("scope = ?", scope)
	if excludeID != uuid.Nil {
		qb = qb.Where("id <> ?", excludeID)
	}

	var rows []models.Promotion
	err := qb.Find(&rows).Error
	return rows, err
}

// CreatePromotion inserts a promotion row along with its combo items.
func (r *Repository) CreatePromotion(ctx context.Context, promo *models.Promotion) (*models.Promotion, error) {
	if err := r.DB(ctx).Create(promo).Error; err != nil {
		return nil, err
	}
	return promo, nil
}

// UpdatePromotion saves the promotion row and replaces its combo items.
func (r *Repository) UpdatePromotion(ctx context.Context, promo *models.Promotion) (*models.Promotion, error) {
	tx := r.DB(ctx)
	if err := tx.Omit("ComboItems").Save(promo).Error; err != nil {
		return nil, err
	}
	if err := r.ReplaceComboItems(ctx, promo.ID, promo.ComboItems); err != nil {
		return nil, err
	}
	return promo, nil
}

// ReplaceComboItems replaces all combo items for the promotion.
func (r *Repository) ReplaceComboItems(ctx context.Context, promotionID uuid.UUID, items []models.PromotionComboItem) error {
	tx := r.DB(ctx)
	if err := tx.Where("promotion_id = ?", promotionID).Delete(&models.PromotionComboItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].PromotionID = promotionID
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return tx.Create(&items).Error
}

// DeletePromotion removes a promotion and its combo items.
func (r *Repository) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	tx := r.DB(ctx)
	if err := tx.Where("promotion_id = ?", id).Delete(&models.PromotionComboItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Promotion{}).Error
}
