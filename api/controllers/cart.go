package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/minhvub/coffeeshop-backend/api/responses"
	"github.com/minhvub/coffeeshop-backend/api/validators"
	promotionsvc "github.com/minhvub/coffeeshop-backend/internal/promotions"
	pkgerrors "github.com/minhvub/coffeeshop-backend/pkg/errors"
	"github.com/minhvub/coffeeshop-backend/pkg/logger"
)

type cartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type cartQuoteRequest struct {
	Items    []cartItemRequest `json:"items" validate:"required,min=1,dive"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

// CartQuote prices a cart against the currently active promotions.
func CartQuote(svc promotionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotion service unavailable"))
			return
		}

		var payload cartQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.Subtotal.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must not be negative"))
			return
		}

		items := make([]promotionsvc.CartItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, promotionsvc.CartItem{
				ProductID: strings.TrimSpace(item.ProductID),
				Quantity:  item.Quantity,
			})
		}

		quote, err := svc.QuoteCart(r.Context(), promotionsvc.QuoteInput{
			Items:    items,
			Subtotal: payload.Subtotal,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}
