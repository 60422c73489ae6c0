package promotions

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/minhvub/coffeeshop-backend/pkg/db/models"
	"github.com/minhvub/coffeeshop-backend/pkg/enums"
)

// ComboItemInput is one required product line of a candidate combo.
type ComboItemInput struct {
	ProductID   string
	RequiredQty int
}

// ValidationInput is the candidate target data checked for overlap.
type ValidationInput struct {
	Scope      enums.PromotionScope
	ProductIDs []string
	Categories []string
	ComboItems []ComboItemInput
	ExcludeID  uuid.UUID
}

// conflictStore is the read surface the validator needs.
type conflictStore interface {
	FindByScope(ctx context.Context, scope enums.PromotionScope, excludeID uuid.UUID) ([]models.Promotion, error)
}

// Validator detects promotions whose targets overlap an existing one.
type Validator struct {
	store conflictStore
}

// NewValidator builds a validator over the given store.
func NewValidator(store conflictStore) *Validator {
	return &Validator{store: store}
}

// Validate returns human-readable conflict descriptions. An empty slice
// means the candidate may be persisted. Store failures are reported as
// conflict entries rather than returned as errors, so a non-empty result
// always means "reject the write".
func (v *Validator) Validate(ctx context.Context, input ValidationInput) []string {
	var conflicts []string

	switch input.Scope {
	case enums.ScopeProduct:
		if len(input.ProductIDs) == 0 {
			return nil
		}
		existing, err := v.store.FindByScope(ctx, enums.ScopeProduct, input.ExcludeID)
		if err != nil {
			return []string{fmt.Sprintf("validation check failed: %v", err)}
		}
		for _, productID := range input.ProductIDs {
			for _, promo := range existing {
				if containsString(promo.ProductIDs, productID) {
					conflicts = append(conflicts, fmt.Sprintf(
						"product %s already has a promotion (ID: %s)", productID, promo.ID))
					break
				}
			}
		}

	case enums.ScopeCategory:
		if len(input.Categories) == 0 {
			return nil
		}
		existing, err := v.store.FindByScope(ctx, enums.ScopeCategory, input.ExcludeID)
		if err != nil {
			return []string{fmt.Sprintf("validation check failed: %v", err)}
		}
		for _, category := range input.Categories {
			for _, promo := range existing {
				if containsString(promo.Categories, category) {
					conflicts = append(conflicts, fmt.Sprintf(
						"category %q already has a promotion (ID: %s)", category, promo.ID))
					break
				}
			}
		}

	case enums.ScopeCombo:
		if len(input.ComboItems) == 0 {
			return nil
		}
		existing, err := v.store.FindByScope(ctx, enums.ScopeCombo, input.ExcludeID)
		if err != nil {
			return []string{fmt.Sprintf("validation check failed: %v", err)}
		}
		candidate := canonicalCombo(input.ComboItems)
		for _, promo := range existing {
			if sameComboSignature(candidate, canonicalStoredCombo(promo.ComboItems)) {
				conflicts = append(conflicts, fmt.Sprintf(
					"an identical combo already exists in another promotion (ID: %s)", promo.ID))
				break
			}
		}
	}

	return conflicts
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// canonicalCombo sorts combo lines lexicographically by product id so
// signature comparison is order-independent.
func canonicalCombo(items []ComboItemInput) []ComboItemInput {
	sorted := make([]ComboItemInput, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductID < sorted[j].ProductID
	})
	return sorted
}

func canonicalStoredCombo(items []models.PromotionComboItem) []ComboItemInput {
	converted := make([]ComboItemInput, 0, len(items))
	for _, item := range items {
		converted = append(converted, ComboItemInput{
			ProductID:   item.ProductID,
			RequiredQty: item.RequiredQty,
		})
	}
	return canonicalCombo(converted)
}

// sameComboSignature compares two canonicalized combos as multisets.
func sameComboSignature(a, b []ComboItemInput) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ProductID != b[i].ProductID || a[i].RequiredQty != b[i].RequiredQty {
			return false
		}
	}
	return true
}
