package pricing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RoundingUnit is the step final prices are rounded to
type RoundingUnit int

const (
	RoundToOne  RoundingUnit = 1
	RoundToFive RoundingUnit = 5
	RoundToTen  RoundingUnit = 10
)

// ParseRoundingUnit accepts 1, 5 or 10. Zero defaults to 1.
func ParseRoundingUnit(n int) (RoundingUnit, error) {
	switch n {
	case 0, 1:
		return RoundToOne, nil
	case 5:
		return RoundToFive, nil
	case 10:
		return RoundToTen, nil
	}
	return 0, fmt.Errorf("invalid rounding unit %d: expected 1, 5 or 10", n)
}

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// Round rounds x to the nearest multiple of unit, half up on the quotient
func Round(x float64, unit RoundingUnit) float64 {
	if unit <= 0 {
		unit = RoundToOne
	}
	u := decimal.NewFromInt(int64(unit))
	q := decimal.NewFromFloat(x).Div(u).Add(half).Floor()
	return q.Mul(u).InexactFloat64()
}

func markupFactor(percent float64) decimal.Decimal {
	return decimal.NewFromInt(1).Add(decimal.NewFromFloat(percent).Div(hundred))
}

// ComposeMarkup applies the local, product and master markup layers to a base price
func ComposeMarkup(base, local, product, master float64) float64 {
	v := decimal.NewFromFloat(base).
		Mul(markupFactor(local)).
		Mul(markupFactor(product)).
		Mul(markupFactor(master))
	return v.InexactFloat64()
}

// baseFromFinal undoes the product and master layers of a published price
func baseFromFinal(final, product, master float64) float64 {
	if product <= -100 || master <= -100 {
		return final
	}
	v := decimal.NewFromFloat(final).
		Div(markupFactor(product)).
		Div(markupFactor(master))
	return v.InexactFloat64()
}

// FinalPrice composes all markup layers and rounds to the unit
func FinalPrice(base, local, product, master float64, unit RoundingUnit) float64 {
	return Round(ComposeMarkup(base, local, product, master), unit)
}

// ProductMarkups holds markups scoped per format/material and optionally per variant
type ProductMarkups map[string]float64

// MarkupScope returns the key for a product markup. An empty variant gives the coarse
// format/material scope.
func MarkupScope(formatID, materialID, variant string) string {
	if variant == "" {
		return formatID + keySep + materialID
	}
	return formatID + keySep + materialID + keySep + variant
}

// canonicalVariant sorts a variant key given by a client. Empty stays empty for the coarse scope.
func canonicalVariant(variant string) string {
	if variant == "" {
		return ""
	}
	return VariantKey(strings.Split(variant, variantSep))
}

// UnmarshalJSON decodes the scope map and sorts the variant part of each scope
func (m *ProductMarkups) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ProductMarkups, len(raw))
	for scope, v := range raw {
		parts := strings.SplitN(scope, keySep, 3)
		if len(parts) == 3 {
			scope = MarkupScope(parts[0], parts[1], canonicalVariant(parts[2]))
		}
		out[scope] = v
	}
	*m = out
	return nil
}

// For returns the markup for a context, the variant scope wins over the coarse scope
func (m ProductMarkups) For(ctx Context) float64 {
	if v, ok := m[MarkupScope(ctx.FormatID, ctx.MaterialID, ctx.Variant())]; ok {
		return v
	}
	return m[MarkupScope(ctx.FormatID, ctx.MaterialID, "")]
}

func (m ProductMarkups) clone() ProductMarkups {
	out := make(ProductMarkups, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
