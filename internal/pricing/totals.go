package pricing

import "github.com/shopspring/decimal"

// Totals is the full price breakdown of a checkout.
type Totals struct {
	Cart      Price           `json:"cart"`
	Shipping  Price           `json:"shipping"`
	Payment   Price           `json:"payment"`
	Reduction Reduction       `json:"reduction"`
	Price     decimal.Decimal `json:"price"`
	Tax       decimal.Decimal `json:"tax"`
}

// OrderTotals adds cart, shipping and payment and takes the reduction off.
// Price and tax never drop below zero.
func OrderTotals(cart, shipping, payment Price, reduction Reduction) Totals {
	sum := cart.Add(shipping).Add(payment).Sub(reduction.Total())

	return Totals{
		Cart:      cart,
		Shipping:  shipping,
		Payment:   payment,
		Reduction: reduction,
		Price:     decimal.Max(sum.Gross, decimal.Zero),
		Tax:       decimal.Max(sum.Tax, decimal.Zero),
	}
}
