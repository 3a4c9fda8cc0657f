package catalog

import (
	"github.com/shopspring/decimal"
)

type PriceFilter struct {
	Min      decimal.Decimal `json:"min"`
	Max      decimal.Decimal `json:"max"`
	Quantity int             `json:"quantity"`
}

// snapStep rounds a raw step onto the fixed bucket sizes of the shop.
func snapStep(step int64) int64 {
	switch {
	case step < 3:
		return 3
	case step < 6:
		return 5
	case step < 11:
		return 10
	case step < 51:
		return 50
	case step < 101:
		return 100
	case step < 501:
		return 500
	case step < 1001:
		return 1000
	case step < 5001:
		return 500
	case step < 10001:
		return 1000
	default:
		return step
	}
}

// PriceFilters splits the given product prices into price ranges. Ranges
// without products are dropped and their lower bound moves on to the next
// range.
func PriceFilters(prices []decimal.Decimal) []PriceFilter {
	if len(prices) == 0 {
		return []PriceFilter{}
	}

	pmin, pmax := prices[0], prices[0]
	for _, p := range prices[1:] {
		pmin = decimal.Min(pmin, p)
		pmax = decimal.Max(pmax, p)
	}

	var step int64
	if pmin.Equal(pmax) {
		step = pmax.IntPart()
	} else {
		step = pmax.Sub(pmin).Div(decimal.NewFromInt(3)).IntPart()
	}
	step = snapStep(step)

	upper := pmax.Ceil().IntPart()
	filters := []PriceFilter{}
	lower := int64(1)
	for i := int64(0); i < upper; i += step {
		from, to := decimal.NewFromInt(i), decimal.NewFromInt(i+step)

		quantity := 0
		for _, p := range prices {
			if p.GreaterThan(from) && p.LessThanOrEqual(to) {
				quantity++
			}
		}
		if quantity == 0 {
			continue
		}

		filters = append(filters, PriceFilter{
			Min:      decimal.NewFromInt(lower),
			Max:      to,
			Quantity: quantity,
		})
		lower = i + step + 1
	}
	return filters
}
