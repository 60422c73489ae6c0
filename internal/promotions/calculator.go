package promotions

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhvub/coffeeshop-backend/pkg/db/models"
	"github.com/minhvub/coffeeshop-backend/pkg/enums"
)

// CartItem is one line of a cart being quoted.
type CartItem struct {
	ProductID string
	Quantity  int
}

// AppliedPromotion reports one promotion that contributed a discount.
type AppliedPromotion struct {
	PromotionID    uuid.UUID       `json:"promotion_id"`
	Name           string          `json:"name"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// QuoteResult is the discount breakdown for a cart.
type QuoteResult struct {
	ApplicablePromotions []AppliedPromotion `json:"applicable_promotions"`
	TotalDiscount        decimal.Decimal    `json:"total_discount"`
	FinalTotal           decimal.Decimal    `json:"final_total"`
}

var oneHundred = decimal.NewFromInt(100)

// Calculate evaluates every promotion independently against the cart and
// stacks all qualifying discounts additively. The subtotal is trusted as
// supplied; it is never recomputed from the catalog. Products missing
// from the catalog map contribute zero to any sum they would have been
// part of.
func Calculate(cart []CartItem, subtotal decimal.Decimal, promotions []models.Promotion, products map[string]models.Product) QuoteResult {
	itemCounts := make(map[string]int, len(cart))
	for _, item := range cart {
		itemCounts[item.ProductID] += item.Quantity
	}

	applicable := make([]AppliedPromotion, 0)
	totalDiscount := decimal.Zero

	for _, promo := range promotions {
		var discount decimal.Decimal
		applies := false

		switch promo.Scope {
		case enums.ScopeOrder:
			floor := decimal.Zero
			if promo.MinOrderTotal != nil {
				floor = *promo.MinOrderTotal
			}
			if subtotal.GreaterThanOrEqual(floor) {
				applies = true
				discount = scalarDiscount(promo, subtotal)
			}

		case enums.ScopeCategory:
			basis := decimal.Zero
			matched := false
			for _, item := range cart {
				product, ok := products[item.ProductID]
				if !ok || !containsString(promo.Categories, product.Category) {
					continue
				}
				matched = true
				basis = basis.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
			if matched {
				applies = true
				discount = scalarDiscount(promo, basis)
			}

		case enums.ScopeProduct:
			basis := decimal.Zero
			matched := false
			for _, item := range cart {
				if !containsString(promo.ProductIDs, item.ProductID) {
					continue
				}
				matched = true
				if product, ok := products[item.ProductID]; ok {
					basis = basis.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
				}
			}
			if matched {
				applies = true
				discount = scalarDiscount(promo, basis)
			}

		case enums.ScopeCombo:
			met := len(promo.ComboItems) > 0
			for _, comboItem := range promo.ComboItems {
				if itemCounts[comboItem.ProductID] < comboItem.RequiredQty {
					met = false
					break
				}
			}
			if met {
				applies = true
				discount = comboDiscount(promo, products)
			}
		}

		if applies && discount.GreaterThan(decimal.Zero) {
			applicable = append(applicable, AppliedPromotion{
				PromotionID:    promo.ID,
				Name:           promo.Name,
				DiscountAmount: discount,
			})
			totalDiscount = totalDiscount.Add(discount)
		}
	}

	finalTotal := subtotal.Sub(totalDiscount)
	if finalTotal.IsNegative() {
		finalTotal = decimal.Zero
	}

	return QuoteResult{
		ApplicablePromotions: applicable,
		TotalDiscount:        totalDiscount,
		FinalTotal:           finalTotal,
	}
}

// scalarDiscount applies PERCENT or FIXED_AMOUNT to the given basis.
// FIXED_PRICE_COMBO is meaningless outside combo scope and yields zero.
func scalarDiscount(promo models.Promotion, basis decimal.Decimal) decimal.Decimal {
	switch promo.Type {
	case enums.TypePercent:
		return basis.Mul(promo.Value).Div(oneHundred)
	case enums.TypeFixedAmount:
		return promo.Value
	default:
		return decimal.Zero
	}
}

func comboDiscount(promo models.Promotion, products map[string]models.Product) decimal.Decimal {
	originalPrice := decimal.Zero
	for _, comboItem := range promo.ComboItems {
		product, ok := products[comboItem.ProductID]
		if !ok {
			continue
		}
		originalPrice = originalPrice.Add(product.Price.Mul(decimal.NewFromInt(int64(comboItem.RequiredQty))))
	}

	switch promo.Type {
	case enums.TypeFixedPriceCombo:
		discount := originalPrice.Sub(promo.Value)
		if discount.IsNegative() {
			return decimal.Zero
		}
		return discount
	case enums.TypePercent:
		return originalPrice.Mul(promo.Value).Div(oneHundred)
	case enums.TypeFixedAmount:
		return promo.Value
	default:
		return decimal.Zero
	}
}
