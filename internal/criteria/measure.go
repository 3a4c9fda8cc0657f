package criteria

import (
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/model"
)

var two = decimal.NewFromInt(2)

func cartItems(ctx Context) []model.CartItem {
	if ctx.Cart == nil {
		return nil
	}
	return ctx.Cart.Items
}

func cartPrice(ctx Context) decimal.Decimal {
	if ctx.Product != nil {
		return ctx.Product.EffectivePrice()
	}
	total := decimal.Zero
	for _, item := range cartItems(ctx) {
		total = total.Add(item.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Amount))))
	}
	return total
}

func sumOf(ctx Context, field func(model.Product) decimal.Decimal) decimal.Decimal {
	if ctx.Product != nil {
		return field(*ctx.Product)
	}
	total := decimal.Zero
	for _, item := range cartItems(ctx) {
		total = total.Add(field(item.Product).Mul(decimal.NewFromInt(int64(item.Amount))))
	}
	return total
}

func maxOf(ctx Context, field func(model.Product) decimal.Decimal) decimal.Decimal {
	if ctx.Product != nil {
		return field(*ctx.Product)
	}
	highest := decimal.Zero
	for _, item := range cartItems(ctx) {
		highest = decimal.Max(highest, field(item.Product))
	}
	return highest
}

func weight(ctx Context) decimal.Decimal {
	return sumOf(ctx, func(p model.Product) decimal.Decimal { return p.Weight })
}

func height(ctx Context) decimal.Decimal {
	return sumOf(ctx, func(p model.Product) decimal.Decimal { return p.Height })
}

func length(ctx Context) decimal.Decimal {
	return maxOf(ctx, func(p model.Product) decimal.Decimal { return p.Length })
}

func width(ctx Context) decimal.Decimal {
	return maxOf(ctx, func(p model.Product) decimal.Decimal { return p.Width })
}

// combinedLengthAndGirth is 2*width + 2*height + length, with the stacked
// height of all cart items.
func combinedLengthAndGirth(ctx Context) decimal.Decimal {
	return two.Mul(width(ctx)).Add(two.Mul(height(ctx))).Add(length(ctx))
}
