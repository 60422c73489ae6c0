package enums

import "fmt"

// PromotionType is how a promotion's value is applied to a price.
type PromotionType string

const (
	TypePercent         PromotionType = "PERCENT"
	TypeFixedAmount     PromotionType = "FIXED_AMOUNT"
	TypeFixedPriceCombo PromotionType = "FIXED_PRICE_COMBO"
)

var promotionTypes = map[PromotionType]struct{}{
	TypePercent:         {},
	TypeFixedAmount:     {},
	TypeFixedPriceCombo: {},
}

func (t PromotionType) String() string { return string(t) }

func (t PromotionType) IsValid() bool {
	_, ok := promotionTypes[t]
	return ok
}

func ParsePromotionType(raw string) (PromotionType, error) {
	t := PromotionType(raw)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid promotion type %q", raw)
	}
	return t, nil
}
