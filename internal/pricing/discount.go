package pricing

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/criteria"
	"github.com/tuanvumaihuynh/lfs/internal/model"
)

// DiscountIsValid reports whether d applies to the cart in ctx. A discount
// bound to products needs at least one of them in the cart.
func DiscountIsValid(d model.Discount, ctx criteria.Context) bool {
	if !d.Active {
		return false
	}
	if len(d.ProductIDs) > 0 && (ctx.Cart == nil || !ctx.Cart.ContainsAny(d.ProductIDs)) {
		return false
	}
	return criteria.IsValid(d.Criteria, ctx)
}

// DiscountPrice returns the positive amount d takes off the cart.
func DiscountPrice(d model.Discount, cart model.Cart) Price {
	cartPrice := CartPrice(cart)
	percent := d.Value.Div(hundred)

	gross := decimal.Zero
	if len(d.ProductIDs) > 0 {
		for _, item := range cart.Items {
			if item.Amount <= 0 || !slices.Contains(d.ProductIDs, item.ProductID) {
				continue
			}
			if d.Type == model.ValueTypeAbsolute {
				gross = gross.Add(d.Value)
			} else {
				gross = gross.Add(ItemPrice(item).Gross.Mul(percent))
			}
		}
	} else if d.Type == model.ValueTypeAbsolute {
		gross = d.Value
	} else {
		gross = cartPrice.Gross.Mul(percent)
	}

	var tax decimal.Decimal
	switch {
	case d.TaxID != nil:
		tax = TaxFromGross(gross, d.TaxRate)
	case d.Type == model.ValueTypePercentage:
		tax = cartPrice.Tax.Mul(percent)
	default:
		tax = decimal.Zero
	}

	return NewPrice(gross, tax)
}

// AppliedDiscount is a valid discount with its computed price.
type AppliedDiscount struct {
	Discount model.Discount `json:"discount"`
	Price    Price          `json:"price"`
}

// ApplicableDiscounts returns the valid discounts of the cart with prices.
func ApplicableDiscounts(discounts []model.Discount, ctx criteria.Context) []AppliedDiscount {
	if ctx.Cart == nil {
		return nil
	}
	applied := make([]AppliedDiscount, 0, len(discounts))
	for _, d := range discounts {
		if !DiscountIsValid(d, ctx) {
			continue
		}
		applied = append(applied, AppliedDiscount{Discount: d, Price: DiscountPrice(d, *ctx.Cart)})
	}
	return applied
}
