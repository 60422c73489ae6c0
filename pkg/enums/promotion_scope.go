package enums

import "fmt"

// PromotionScope identifies which part of a cart a promotion targets.
type PromotionScope string

const (
	ScopeOrder    PromotionScope = "ORDER"
	ScopeProduct  PromotionScope = "PRODUCT"
	ScopeCategory PromotionScope = "CATEGORY"
	ScopeCombo    PromotionScope = "COMBO"
)

var promotionScopes = map[PromotionScope]struct{}{
	ScopeOrder:    {},
	ScopeProduct:  {},
	ScopeCategory: {},
	ScopeCombo:    {},
}

func (s PromotionScope) String() string { return string(s) }

func (s PromotionScope) IsValid() bool {
	_, ok := promotionScopes[s]
	return ok
}

func ParsePromotionScope(raw string) (PromotionScope, error) {
	s := PromotionScope(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid promotion scope %q", raw)
	}
	return s, nil
}
