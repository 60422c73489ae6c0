package promotions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhvub/coffeeshop-backend/pkg/db/models"
	"github.com/minhvub/coffeeshop-backend/pkg/enums"
	pkgerrors "github.com/minhvub/coffeeshop-backend/pkg/errors"
	"github.com/minhvub/coffeeshop-backend/pkg/logger"
	"github.com/minhvub/coffeeshop-backend/pkg/metrics"
)

// Service exposes promotion management and cart quoting.
type Service interface {
	CreatePromotion(ctx context.Context, input CreateInput) (*models.Promotion, error)
	UpdatePromotion(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Promotion, error)
	DeletePromotion(ctx context.Context, id uuid.UUID) error
	GetPromotion(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	ListPromotions(ctx context.Context, filters ListFilters) ([]models.Promotion, error)
	ListActivePromotions(ctx context.Context) ([]models.Promotion, error)
	QuoteCart(ctx context.Context, input QuoteInput) (*QuoteResult, error)
}

// CreateInput holds the validated payload to create a promotion.
type CreateInput struct {
	Name          string
	Description   string
	Type          enums.PromotionType
	Scope         enums.PromotionScope
	Value         decimal.Decimal
	MinOrderTotal *decimal.Decimal
	StartDate     time.Time
	EndDate       time.Time
	IsActive      *bool
	ProductIDs    []string
	Categories    []string
	ComboItems    []ComboItemInput
}

// UpdateInput holds optional mutation values for a promotion.
type UpdateInput struct {
	Name          *string
	Description   *string
	Type          *enums.PromotionType
	Scope         *enums.PromotionScope
	Value         *decimal.Decimal
	MinOrderTotal *decimal.Decimal
	StartDate     *time.Time
	EndDate       *time.Time
	IsActive      *bool
	ProductIDs    *[]string
	Categories    *[]string
	ComboItems    *[]ComboItemInput
}

// QuoteInput is a cart plus its caller-supplied pre-discount subtotal.
type QuoteInput struct {
	Items    []CartItem
	Subtotal decimal.Decimal
}

// promotionStore is the persistence surface the service needs.
type promotionStore interface {
	conflictStore
	FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	List(ctx context.Context, filters ListFilters) ([]models.Promotion, error)
	FindActive(ctx context.Context, now time.Time) ([]models.Promotion, error)
	CreatePromotion(ctx context.Context, promo *models.Promotion) (*models.Promotion, error)
	UpdatePromotion(ctx context.Context, promo *models.Promotion) (*models.Promotion, error)
	DeletePromotion(ctx context.Context, id uuid.UUID) error
}

// productCatalog resolves product data referenced by carts.
type productCatalog interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
}

type service struct {
	repo      promotionStore
	validator *Validator
	catalog   productCatalog
	cache     ActiveCache
	metrics   *metrics.PromotionMetrics
	logg      *logger.Logger
}

// NewService wires the promotion service.
func NewService(repo promotionStore, catalog productCatalog, cache ActiveCache, promMetrics *metrics.PromotionMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promotion repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if cache == nil {
		cache = NewNoopCache()
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		validator: NewValidator(repo),
		catalog:   catalog,
		cache:     cache,
		metrics:   promMetrics,
		logg:      logg,
	}, nil
}

// CreatePromotion validates the payload, checks target uniqueness, and persists.
func (s *service) CreatePromotion(ctx context.Context, input CreateInput) (*models.Promotion, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	conflicts := s.validator.Validate(ctx, ValidationInput{
		Scope:      input.Scope,
		ProductIDs: input.ProductIDs,
		Categories: input.Categories,
		ComboItems: input.ComboItems,
	})
	if len(conflicts) > 0 {
		s.metrics.IncValidation("conflict")
		s.metrics.AddConflicts(len(conflicts))
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "promotion validation failed").
			WithDetails(conflicts)
	}
	s.metrics.IncValidation("ok")

	promo := &models.Promotion{
		ID:            uuid.New(),
		Name:          input.Name,
		Description:   input.Description,
		Scope:         input.Scope,
		Type:          input.Type,
		Value:         input.Value,
		MinOrderTotal: input.MinOrderTotal,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		IsActive:      true,
	}
	if input.IsActive != nil {
		promo.IsActive = *input.IsActive
	}

	// Only the payload matching the scope is persisted.
	switch input.Scope {
	case enums.ScopeProduct:
		promo.ProductIDs = pq.StringArray(input.ProductIDs)
	case enums.ScopeCategory:
		promo.Categories = pq.StringArray(input.Categories)
	case enums.ScopeCombo:
		promo.ComboItems = comboModels(promo.ID, input.ComboItems)
	}

	created, err := s.repo.CreatePromotion(ctx, promo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create promotion")
	}

	s.cache.Invalidate(ctx)
	s.logg.Info(s.logg.WithPromotionID(ctx, created.ID.String()), "promotion created")
	return created, nil
}

// UpdatePromotion merges partial fields onto the stored record. A scope
// change resets all three target payloads before applying the one that
// matches the new scope.
func (s *service) UpdatePromotion(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Promotion, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "promotion")
	}

	scopeToValidate := promo.Scope
	if input.Scope != nil {
		if !input.Scope.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid scope %q", *input.Scope))
		}
		scopeToValidate = *input.Scope
	}
	if input.Type != nil && !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid type %q", *input.Type))
	}

	productIDsToValidate := []string(promo.ProductIDs)
	if input.ProductIDs != nil {
		productIDsToValidate = *input.ProductIDs
	}
	categoriesToValidate := []string(promo.Categories)
	if input.Categories != nil {
		categoriesToValidate = *input.Categories
	}
	comboItemsToValidate := comboInputs(promo.ComboItems)
	if input.ComboItems != nil {
		comboItemsToValidate = *input.ComboItems
		if err := validateComboItems(comboItemsToValidate); err != nil {
			return nil, err
		}
	}

	conflicts := s.validator.Validate(ctx, ValidationInput{
		Scope:      scopeToValidate,
		ProductIDs: productIDsToValidate,
		Categories: categoriesToValidate,
		ComboItems: comboItemsToValidate,
		ExcludeID:  id,
	})
	if len(conflicts) > 0 {
		s.metrics.IncValidation("conflict")
		s.metrics.AddConflicts(len(conflicts))
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "promotion validation failed").
			WithDetails(conflicts)
	}
	s.metrics.IncValidation("ok")

	if input.Name != nil {
		promo.Name = *input.Name
	}
	if input.Description != nil {
		promo.Description = *input.Description
	}
	if input.Type != nil {
		promo.Type = *input.Type
	}
	if input.Value != nil {
		promo.Value = *input.Value
	}
	if input.MinOrderTotal != nil {
		promo.MinOrderTotal = input.MinOrderTotal
	}
	if input.StartDate != nil {
		promo.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		promo.EndDate = *input.EndDate
	}
	if input.IsActive != nil {
		promo.IsActive = *input.IsActive
	}

	if input.Scope != nil {
		promo.Scope = *input.Scope
		promo.ProductIDs = nil
		promo.Categories = nil
		promo.ComboItems = nil
	}

	if input.ProductIDs != nil && promo.Scope == enums.ScopeProduct {
		promo.ProductIDs = pq.StringArray(*input.ProductIDs)
	}
	if input.Categories != nil && promo.Scope == enums.ScopeCategory {
		promo.Categories = pq.StringArray(*input.Categories)
	}
	if input.ComboItems != nil && promo.Scope == enums.ScopeCombo {
		promo.ComboItems = comboModels(promo.ID, *input.ComboItems)
	}

	updated, err := s.repo.UpdatePromotion(ctx, promo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update promotion")
	}

	s.cache.Invalidate(ctx)
	s.logg.Info(s.logg.WithPromotionID(ctx, id.String()), "promotion updated")
	return updated, nil
}

// DeletePromotion removes the promotion.
func (s *service) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapLookupError(err, "promotion")
	}
	if err := s.repo.DeletePromotion(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete promotion")
	}
	s.cache.Invalidate(ctx)
	s.logg.Info(s.logg.WithPromotionID(ctx, id.String()), "promotion deleted")
	return nil
}

// GetPromotion loads a single promotion.
func (s *service) GetPromotion(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "promotion")
	}
	return promo, nil
}

// ListPromotions returns promotions filtered by activity, scope, and type.
func (s *service) ListPromotions(ctx context.Context, filters ListFilters) ([]models.Promotion, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list promotions")
	}
	return rows, nil
}

// ListActivePromotions returns promotions whose window contains now,
// served from cache when possible.
func (s *service) ListActivePromotions(ctx context.Context) ([]models.Promotion, error) {
	now := time.Now().UTC()
	if cached, ok := s.cache.Get(ctx); ok {
		s.metrics.IncCacheLookup("hit")
		// Cached rows can outlive their window inside the TTL.
		active := make([]models.Promotion, 0, len(cached))
		for _, promo := range cached {
			if promo.ActiveAt(now) {
				active = append(active, promo)
			}
		}
		return active, nil
	}
	s.metrics.IncCacheLookup("miss")

	rows, err := s.repo.FindActive(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list active promotions")
	}
	s.cache.Set(ctx, rows)
	return rows, nil
}

// QuoteCart evaluates all active promotions against the cart.
func (s *service) QuoteCart(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	started := time.Now()

	active, err := s.ListActivePromotions(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(input.Items))
	seen := make(map[string]struct{}, len(input.Items))
	for _, item := range input.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart products")
	}

	result := Calculate(input.Items, input.Subtotal, active, products)

	scopeByID := make(map[uuid.UUID]enums.PromotionScope, len(active))
	for _, promo := range active {
		scopeByID[promo.ID] = promo.Scope
	}
	for _, applied := range result.ApplicablePromotions {
		s.metrics.IncDiscountApplied(scopeByID[applied.PromotionID].String())
	}
	s.metrics.ObserveQuoteDuration(time.Since(started))

	return &result, nil
}

func validateCreateInput(input CreateInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid type %q", input.Type))
	}
	if !input.Scope.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid scope %q", input.Scope))
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start_date and end_date are required")
	}

	switch input.Scope {
	case enums.ScopeProduct:
		if len(input.ProductIDs) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "product_ids is required for PRODUCT scope")
		}
	case enums.ScopeCategory:
		if len(input.Categories) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "categories is required for CATEGORY scope")
		}
	case enums.ScopeCombo:
		if len(input.ComboItems) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "combo_items is required for COMBO scope")
		}
		if err := validateComboItems(input.ComboItems); err != nil {
			return err
		}
	}
	return nil
}

// validateComboItems rejects combo payloads that reference a product twice.
func validateComboItems(items []ComboItemInput) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("duplicate combo product %q", item.ProductID))
		}
		seen[item.ProductID] = struct{}{}
	}
	return nil
}

func comboModels(promotionID uuid.UUID, items []ComboItemInput) []models.PromotionComboItem {
	rows := make([]models.PromotionComboItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.PromotionComboItem{
			ID:          uuid.New(),
			PromotionID: promotionID,
			ProductID:   item.ProductID,
			RequiredQty: item.RequiredQty,
		})
	}
	return rows
}

func comboInputs(items []models.PromotionComboItem) []ComboItemInput {
	inputs := make([]ComboItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, ComboItemInput{
			ProductID:   item.ProductID,
			RequiredQty: item.RequiredQty,
		})
	}
	return inputs
}

func mapLookupError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+entity)
}
