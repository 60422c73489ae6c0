package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhvub/coffeeshop-backend/api/responses"
	"github.com/minhvub/coffeeshop-backend/api/validators"
	promotionsvc "github.com/minhvub/coffeeshop-backend/internal/promotions"
	"github.com/minhvub/coffeeshop-backend/pkg/enums"
	pkgerrors "github.com/minhvub/coffeeshop-backend/pkg/errors"
	"github.com/minhvub/coffeeshop-backend/pkg/logger"
)

type comboItemRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	RequiredQty int    `json:"required_qty" validate:"required,min=1"`
}

type createPromotionRequest struct {
	Name          string             `json:"name" validate:"required"`
	Description   string             `json:"description,omitempty"`
	Type          string             `json:"type" validate:"required"`
	Scope         string             `json:"scope" validate:"required"`
	Value         decimal.Decimal    `json:"value"`
	MinOrderTotal *decimal.Decimal   `json:"min_order_total,omitempty"`
	StartDate     time.Time          `json:"start_date" validate:"required"`
	EndDate       time.Time          `json:"end_date" validate:"required"`
	IsActive      *bool              `json:"is_active,omitempty"`
	ProductIDs    []string           `json:"product_ids,omitempty"`
	Categories    []string           `json:"categories,omitempty"`
	ComboItems    []comboItemRequest `json:"combo_items,omitempty" validate:"omitempty,dive"`
}

func (p createPromotionRequest) toCreateInput() (promotionsvc.CreateInput, error) {
	promoType, err := enums.ParsePromotionType(strings.TrimSpace(p.Type))
	if err != nil {
		return promotionsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
	}
	scope, err := enums.ParsePromotionScope(strings.TrimSpace(p.Scope))
	if err != nil {
		return promotionsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scope")
	}

	return promotionsvc.CreateInput{
		Name:          strings.TrimSpace(p.Name),
		Description:   strings.TrimSpace(p.Description),
		Type:          promoType,
		Scope:         scope,
		Value:         p.Value,
		MinOrderTotal: p.MinOrderTotal,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		IsActive:      p.IsActive,
		ProductIDs:    p.ProductIDs,
		Categories:    p.Categories,
		ComboItems:    toComboInputs(p.ComboItems),
	}, nil
}

type updatePromotionRequest struct {
	Name          *string             `json:"name,omitempty"`
	Description   *string             `json:"description,omitempty"`
	Type          *string             `json:"type,omitempty"`
	Scope         *string             `json:"scope,omitempty"`
	Value         *decimal.Decimal    `json:"value,omitempty"`
	MinOrderTotal *decimal.Decimal    `json:"min_order_total,omitempty"`
	StartDate     *time.Time          `json:"start_date,omitempty"`
	EndDate       *time.Time          `json:"end_date,omitempty"`
	IsActive      *bool               `json:"is_active,omitempty"`
	ProductIDs    *[]string           `json:"product_ids,omitempty"`
	Categories    *[]string           `json:"categories,omitempty"`
	ComboItems    *[]comboItemRequest `json:"combo_items,omitempty" validate:"omitempty,dive"`
}

func (p updatePromotionRequest) toUpdateInput() (promotionsvc.UpdateInput, error) {
	input := promotionsvc.UpdateInput{
		Name:          p.Name,
		Description:   p.Description,
		Value:         p.Value,
		MinOrderTotal: p.MinOrderTotal,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		IsActive:      p.IsActive,
		ProductIDs:    p.ProductIDs,
		Categories:    p.Categories,
	}

	if p.Type != nil {
		promoType, err := enums.ParsePromotionType(strings.TrimSpace(*p.Type))
		if err != nil {
			return promotionsvc.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
		}
		input.Type = &promoType
	}
	if p.Scope != nil {
		scope, err := enums.ParsePromotionScope(strings.TrimSpace(*p.Scope))
		if err != nil {
			return promotionsvc.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scope")
		}
		input.Scope = &scope
	}
	if p.ComboItems != nil {
		items := toComboInputs(*p.ComboItems)
		input.ComboItems = &items
	}

	return input, nil
}

func toComboInputs(items []comboItemRequest) []promotionsvc.ComboItemInput {
	out := make([]promotionsvc.ComboItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, promotionsvc.ComboItemInput{
			ProductID:   strings.TrimSpace(item.ProductID),
			RequiredQty: item.RequiredQty,
		})
	}
	return out
}

func CreatePromotion(svc promotionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotion service unavailable"))
			return
		}

		var payload createPromotionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := svc.CreatePromotion(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, promo)
	}
}

func UpdatePromotion(svc promotionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotion service unavailable"))
			return
		}

		id, err := parseIDParam(r, "promotionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePromotionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := svc.UpdatePromotion(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, promo)
	}
}

func DeletePromotion(svc promotionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotion service unavailable"))
			return
		}

		id, err := parseIDParam(r, "promotionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeletePromotion(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetPromotion(svc promotionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotion service unavailable"))
			return
		}

		id, err := parseIDParam(r, "promotionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := svc.GetPromotion(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, promo)
	}
}

func ListPromotions(svc promotionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotion service unavailable"))
			return
		}

		filters, err := promotionFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promos, err := svc.ListPromotions(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, promos)
	}
}

func ListActivePromotions(svc promotionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotion service unavailable"))
			return
		}

		promos, err := svc.ListActivePromotions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, promos)
	}
}

func promotionFiltersFromQuery(r *http.Request) (promotionsvc.ListFilters, error) {
	var filters promotionsvc.ListFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("is_active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "is_active must be a boolean")
		}
		filters.IsActive = &active
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("scope")); raw != "" {
		scope, err := enums.ParsePromotionScope(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scope")
		}
		filters.Scope = &scope
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		promoType, err := enums.ParsePromotionType(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
		}
		filters.Type = &promoType
	}

	return filters, nil
}

func parseIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}
