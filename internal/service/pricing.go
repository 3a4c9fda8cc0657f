package service

import (
	"context"
	"fmt"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/pricing"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
)

// pricingLoader gathers everything a cart evaluation needs besides the cart.
type pricingLoader struct {
	methodRepo   repository.MethodRepository
	discountRepo repository.DiscountRepository
}

func (l pricingLoader) load(ctx context.Context) (pricing.Methods, []model.Discount, error) {
	shipping, err := l.methodRepo.ListShippingMethods(ctx)
	if err != nil {
		return pricing.Methods{}, nil, fmt.Errorf("method repository list shipping methods: %w", err)
	}

	payment, err := l.methodRepo.ListPaymentMethods(ctx)
	if err != nil {
		return pricing.Methods{}, nil, fmt.Errorf("method repository list payment methods: %w", err)
	}

	discounts, err := l.discountRepo.ListDiscounts(ctx, true)
	if err != nil {
		return pricing.Methods{}, nil, fmt.Errorf("discount repository list discounts: %w", err)
	}

	return pricing.Methods{Shipping: shipping, Payment: payment}, discounts, nil
}
