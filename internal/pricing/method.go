package pricing

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/criteria"
	"github.com/tuanvumaihuynh/lfs/internal/model"
)

func priceCriteria(p model.MethodPrice) []model.Criterion { return p.Criteria }

// activePrices returns the active additional prices ordered by priority.
func activePrices(prices []model.MethodPrice) []model.MethodPrice {
	active := make([]model.MethodPrice, 0, len(prices))
	for _, p := range prices {
		if p.Active {
			active = append(active, p)
		}
	}
	slices.SortStableFunc(active, func(a, b model.MethodPrice) int { return a.Priority - b.Priority })
	return active
}

func methodCosts(defaultPrice, taxRate decimal.Decimal, prices []model.MethodPrice, ctx criteria.Context) Price {
	gross := defaultPrice
	if p, ok := criteria.FirstValid(activePrices(prices), priceCriteria, ctx); ok {
		gross = p.Price
	}
	return FromGross(gross, taxRate)
}

// ShippingCosts returns the costs of m for ctx. A nil method costs nothing.
func ShippingCosts(m *model.ShippingMethod, ctx criteria.Context) Price {
	if m == nil {
		return Price{}
	}
	return methodCosts(m.Price, m.TaxRate, m.Prices, ctx)
}

// PaymentCosts returns the costs of m for ctx. A nil method costs nothing.
func PaymentCosts(m *model.PaymentMethod, ctx criteria.Context) Price {
	if m == nil {
		return Price{}
	}
	return methodCosts(m.Price, m.TaxRate, m.Prices, ctx)
}

// ValidShippingMethods returns the active methods whose criteria hold,
// ordered by priority.
func ValidShippingMethods(methods []model.ShippingMethod, ctx criteria.Context) []model.ShippingMethod {
	sorted := slices.Clone(methods)
	slices.SortStableFunc(sorted, func(a, b model.ShippingMethod) int { return a.Priority - b.Priority })

	valid := make([]model.ShippingMethod, 0, len(sorted))
	for _, m := range sorted {
		if m.Active && criteria.IsValid(m.Criteria, ctx) {
			valid = append(valid, m)
		}
	}
	return valid
}

// ValidPaymentMethods returns the active methods whose criteria hold,
// ordered by priority.
func ValidPaymentMethods(methods []model.PaymentMethod, ctx criteria.Context) []model.PaymentMethod {
	sorted := slices.Clone(methods)
	slices.SortStableFunc(sorted, func(a, b model.PaymentMethod) int { return a.Priority - b.Priority })

	valid := make([]model.PaymentMethod, 0, len(sorted))
	for _, m := range sorted {
		if m.Active && criteria.IsValid(m.Criteria, ctx) {
			valid = append(valid, m)
		}
	}
	return valid
}

// SelectShippingMethod returns the method with selectedID when it is valid,
// otherwise the first valid method.
func SelectShippingMethod(valid []model.ShippingMethod, selectedID *uuid.UUID) *model.ShippingMethod {
	return selectMethod(valid, selectedID, func(m model.ShippingMethod) uuid.UUID { return m.ID })
}

// SelectPaymentMethod returns the method with selectedID when it is valid,
// otherwise the first valid method.
func SelectPaymentMethod(valid []model.PaymentMethod, selectedID *uuid.UUID) *model.PaymentMethod {
	return selectMethod(valid, selectedID, func(m model.PaymentMethod) uuid.UUID { return m.ID })
}

func selectMethod[T any](valid []T, selectedID *uuid.UUID, idOf func(T) uuid.UUID) *T {
	if len(valid) == 0 {
		return nil
	}
	if selectedID != nil {
		for i := range valid {
			if idOf(valid[i]) == *selectedID {
				return &valid[i]
			}
		}
	}
	return &valid[0]
}
