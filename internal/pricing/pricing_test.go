package pricing_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/lfs/internal/criteria"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/pricing"
	"github.com/tuanvumaihuynh/lfs/pkg/ptr"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

var (
	productA = model.Product{ID: uuid.New(), Name: "A", Price: d("119"), TaxRate: d("19"), Active: true, Weight: d("1")}
	productB = model.Product{ID: uuid.New(), Name: "B", Price: d("50"), Active: true, Weight: d("2")}
)

// cart with 2 x A (238, tax 38) and 1 x B (50, no tax)
func testCart() model.Cart {
	return model.Cart{Items: []model.CartItem{
		{ProductID: productA.ID, Product: productA, Amount: 2},
		{ProductID: productB.ID, Product: productB, Amount: 1},
		{ProductID: uuid.New(), Product: model.Product{Price: d("999")}, Amount: 0},
	}}
}

func TestTaxFromGross(t *testing.T) {
	assertDecimal(t, "19", pricing.TaxFromGross(d("119"), d("19")))
	assertDecimal(t, "0", pricing.TaxFromGross(d("119"), d("0")))
	assertDecimal(t, "7", pricing.TaxFromGross(d("107"), d("7")))
}

func TestCartPrice(t *testing.T) {
	p := pricing.CartPrice(testCart())

	assertDecimal(t, "288", p.Gross)
	assertDecimal(t, "38", p.Tax)
	assertDecimal(t, "250", p.Net)
}

func TestDiscountPrice(t *testing.T) {
	cart := testCart()

	tests := []struct {
		name      string
		discount  model.Discount
		wantGross string
		wantTax   string
	}{
		{
			name:      "absolute without tax",
			discount:  model.Discount{Type: model.ValueTypeAbsolute, Value: d("10")},
			wantGross: "10",
			wantTax:   "0",
		},
		{
			name:      "percentage without tax takes cart tax share",
			discount:  model.Discount{Type: model.ValueTypePercentage, Value: d("10")},
			wantGross: "28.8",
			wantTax:   "3.8",
		},
		{
			name:      "absolute with tax",
			discount:  model.Discount{Type: model.ValueTypeAbsolute, Value: d("11.9"), TaxID: ptr.New(uuid.New()), TaxRate: d("19")},
			wantGross: "11.9",
			wantTax:   "1.9",
		},
		{
			name:      "absolute per matching line",
			discount:  model.Discount{Type: model.ValueTypeAbsolute, Value: d("5"), ProductIDs: []uuid.UUID{productA.ID}},
			wantGross: "5",
			wantTax:   "0",
		},
		{
			name:      "percentage of matching lines",
			discount:  model.Discount{Type: model.ValueTypePercentage, Value: d("10"), ProductIDs: []uuid.UUID{productA.ID, productB.ID}},
			wantGross: "28.8",
			wantTax:   "3.8",
		},
		{
			name:      "percentage of single matching line",
			discount:  model.Discount{Type: model.ValueTypePercentage, Value: d("50"), ProductIDs: []uuid.UUID{productB.ID}},
			wantGross: "25",
			wantTax:   "19",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := pricing.DiscountPrice(tc.discount, cart)
			assertDecimal(t, tc.wantGross, p.Gross)
			assertDecimal(t, tc.wantTax, p.Tax)
		})
	}
}

func TestDiscountIsValid(t *testing.T) {
	cart := testCart()
	ctx := criteria.Context{Cart: &cart}

	assert.True(t, pricing.DiscountIsValid(model.Discount{Active: true}, ctx))
	assert.False(t, pricing.DiscountIsValid(model.Discount{Active: false}, ctx))
	assert.False(t, pricing.DiscountIsValid(model.Discount{Active: true, ProductIDs: []uuid.UUID{uuid.New()}}, ctx))
	assert.True(t, pricing.DiscountIsValid(model.Discount{Active: true, ProductIDs: []uuid.UUID{productB.ID}}, ctx))
	assert.False(t, pricing.DiscountIsValid(model.Discount{Active: true, Criteria: []model.Criterion{
		{Kind: model.CriterionKindCartPrice, Operator: model.OperatorGreaterThan, Value: d("500")},
	}}, ctx))

	applied := pricing.ApplicableDiscounts([]model.Discount{
		{Name: "ok", Active: true, Type: model.ValueTypeAbsolute, Value: d("1")},
		{Name: "off", Active: false, Type: model.ValueTypeAbsolute, Value: d("1")},
	}, ctx)
	require.Len(t, applied, 1)
	assert.Equal(t, "ok", applied[0].Discount.Name)
}

func TestVoucherIsEffective(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	day := func(offset int) *time.Time {
		v := time.Date(2026, 3, 10+offset, 0, 0, 0, 0, time.UTC)
		return &v
	}
	base := model.Voucher{Active: true, Limit: 1, EffectiveFrom: d("0")}

	tests := []struct {
		name string
		mod  func(v *model.Voucher)
		cart string
		ok   bool
		msg  model.VoucherMessage
	}{
		{"effective", func(v *model.Voucher) {}, "10", true, model.VoucherMessageOK},
		{"inactive", func(v *model.Voucher) { v.Active = false }, "10", false, model.VoucherMessageNotActive},
		{"starts tomorrow", func(v *model.Voucher) { v.StartDate = day(1) }, "10", false, model.VoucherMessageExpired},
		{"starts today", func(v *model.Voucher) { v.StartDate = day(0) }, "10", true, model.VoucherMessageOK},
		{"ended yesterday", func(v *model.Voucher) { v.EndDate = day(-1) }, "10", false, model.VoucherMessageExpired},
		{"ends today", func(v *model.Voucher) { v.EndDate = day(0) }, "10", true, model.VoucherMessageOK},
		{"used up", func(v *model.Voucher) { v.UsedAmount = 1 }, "10", false, model.VoucherMessageAlreadyUsed},
		{"unlimited", func(v *model.Voucher) { v.Limit = 0; v.UsedAmount = 99 }, "10", true, model.VoucherMessageOK},
		{"below minimum", func(v *model.Voucher) { v.EffectiveFrom = d("20") }, "19.99", false, model.VoucherMessageBelowMinimum},
		{"at minimum", func(v *model.Voucher) { v.EffectiveFrom = d("20") }, "20", true, model.VoucherMessageOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := base
			tc.mod(&v)

			ok, msg := pricing.VoucherIsEffective(v, d(tc.cart), now)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.msg, msg)
		})
	}
}

func TestVoucherPrice(t *testing.T) {
	cart := pricing.CartPrice(testCart())

	abs := pricing.VoucherPrice(model.Voucher{Kind: model.ValueTypeAbsolute, Value: d("10")}, cart)
	assertDecimal(t, "10", abs.Gross)
	assertDecimal(t, "0", abs.Tax)

	taxed := pricing.VoucherPrice(model.Voucher{Kind: model.ValueTypeAbsolute, Value: d("23.8"), TaxID: ptr.New(uuid.New()), TaxRate: d("19")}, cart)
	assertDecimal(t, "3.8", taxed.Tax)
	assertDecimal(t, "20", taxed.Net)

	pct := pricing.VoucherPrice(model.Voucher{Kind: model.ValueTypePercentage, Value: d("10")}, cart)
	assertDecimal(t, "28.8", pct.Gross)
	assertDecimal(t, "3.8", pct.Tax)

	now := time.Now()
	used := pricing.MarkVoucherUsed(model.Voucher{UsedAmount: 1}, now)
	assert.Equal(t, 2, used.UsedAmount)
	require.NotNil(t, used.LastUsedDate)
	assert.Equal(t, now, *used.LastUsedDate)
}

func applied(name string, gross string, sumsUp bool) pricing.AppliedDiscount {
	return pricing.AppliedDiscount{
		Discount: model.Discount{Name: name, SumsUp: sumsUp},
		Price:    pricing.NewPrice(d(gross), decimal.Zero),
	}
}

func names(ds []pricing.AppliedDiscount) []string {
	out := make([]string, 0, len(ds))
	for _, a := range ds {
		out = append(out, a.Discount.Name)
	}
	return out
}

func TestChooseReduction(t *testing.T) {
	discounts := []pricing.AppliedDiscount{
		applied("sum-5", "5", true),
		applied("single-12", "12", false),
		applied("sum-10", "10", true),
		applied("single-20", "20", false),
	}
	voucher := &model.Voucher{Number: "ABCDE"}

	t.Run("Should pick the most valuable discount candidate", func(t *testing.T) {
		r := pricing.ChooseReduction(discounts, nil, pricing.Price{})
		assert.False(t, r.UsesVoucher())
		assert.Equal(t, []string{"single-20"}, names(r.Discounts))
		assertDecimal(t, "20", r.Total().Gross)
	})

	t.Run("Should prefer summed discounts on equal value", func(t *testing.T) {
		tied := []pricing.AppliedDiscount{
			applied("single-15", "15", false),
			applied("sum-5", "5", true),
			applied("sum-10", "10", true),
		}
		r := pricing.ChooseReduction(tied, nil, pricing.Price{})
		assert.Equal(t, []string{"sum-5", "sum-10"}, names(r.Discounts))
		assertDecimal(t, "15", r.Total().Gross)
	})

	t.Run("Should use voucher when worth more", func(t *testing.T) {
		r := pricing.ChooseReduction(discounts, voucher, pricing.NewPrice(d("25"), d("1")))
		assert.True(t, r.UsesVoucher())
		assert.Empty(t, r.Discounts)
		assertDecimal(t, "25", r.Total().Gross)
		assertDecimal(t, "1", r.Total().Tax)
	})

	t.Run("Should keep discounts on tie with voucher", func(t *testing.T) {
		r := pricing.ChooseReduction(discounts, voucher, pricing.NewPrice(d("20"), decimal.Zero))
		assert.False(t, r.UsesVoucher())
		assertDecimal(t, "20", r.Total().Gross)
	})

	t.Run("Should use voucher without discounts", func(t *testing.T) {
		r := pricing.ChooseReduction(nil, voucher, pricing.NewPrice(d("3"), decimal.Zero))
		assert.True(t, r.UsesVoucher())
	})

	t.Run("Should return empty reduction", func(t *testing.T) {
		r := pricing.ChooseReduction(nil, nil, pricing.Price{})
		assert.True(t, r.Total().IsZero())
	})
}

func TestOrderTotals(t *testing.T) {
	cart := pricing.NewPrice(d("238"), d("38"))
	shipping := pricing.FromGross(d("5.95"), d("19"))
	payment := pricing.Price{}

	t.Run("Should sum costs and subtract reduction", func(t *testing.T) {
		reduction := pricing.Reduction{Discounts: []pricing.AppliedDiscount{applied("x", "10", true)}}
		totals := pricing.OrderTotals(cart, shipping, payment, reduction)

		assertDecimal(t, "233.95", totals.Price)
		assertDecimal(t, "38.95", totals.Tax)
	})

	t.Run("Should clamp at zero", func(t *testing.T) {
		reduction := pricing.Reduction{Voucher: &model.Voucher{}, VoucherPrice: pricing.NewPrice(d("500"), d("80"))}
		totals := pricing.OrderTotals(cart, shipping, payment, reduction)

		assertDecimal(t, "0", totals.Price)
		assertDecimal(t, "0", totals.Tax)
	})
}

func TestShippingCosts(t *testing.T) {
	cart := testCart()
	ctx := criteria.Context{Cart: &cart}

	method := &model.ShippingMethod{
		Price:   d("5.95"),
		TaxRate: d("19"),
		Prices: []model.MethodPrice{
			{Price: d("1"), Priority: 0, Active: false},
			{Price: d("0"), Priority: 2, Active: true, Criteria: []model.Criterion{
				{Kind: model.CriterionKindCartPrice, Operator: model.OperatorGreaterThanEqual, Value: d("100")},
			}},
			{Price: d("3"), Priority: 1, Active: true, Criteria: []model.Criterion{
				{Kind: model.CriterionKindWeight, Operator: model.OperatorGreaterThan, Value: d("50")},
			}},
		},
	}

	t.Run("Should use first valid additional price", func(t *testing.T) {
		assert.True(t, pricing.ShippingCosts(method, ctx).IsZero())
	})

	t.Run("Should fall back to default price", func(t *testing.T) {
		costs := pricing.ShippingCosts(method, criteria.Context{Cart: &model.Cart{}})
		assertDecimal(t, "5.95", costs.Gross)
		assertDecimal(t, "0.95", costs.Tax)
	})

	t.Run("Should cost nothing without method", func(t *testing.T) {
		assert.True(t, pricing.ShippingCosts(nil, ctx).IsZero())
		assert.True(t, pricing.PaymentCosts(nil, ctx).IsZero())
	})
}

func TestSelectMethods(t *testing.T) {
	cart := testCart()
	ctx := criteria.Context{Cart: &cart, Country: "DE"}

	standard := model.ShippingMethod{ID: uuid.New(), Name: "standard", Active: true, Priority: 2}
	express := model.ShippingMethod{ID: uuid.New(), Name: "express", Active: true, Priority: 1, Criteria: []model.Criterion{
		{Kind: model.CriterionKindCountry, Operator: model.OperatorIsSelected, Refs: []string{"AT"}},
	}}
	pickup := model.ShippingMethod{ID: uuid.New(), Name: "pickup", Active: true, Priority: 3}
	inactive := model.ShippingMethod{ID: uuid.New(), Name: "inactive", Active: false, Priority: 0}

	valid := pricing.ValidShippingMethods([]model.ShippingMethod{pickup, express, inactive, standard}, ctx)
	require.Len(t, valid, 2)
	assert.Equal(t, "standard", valid[0].Name)
	assert.Equal(t, "pickup", valid[1].Name)

	assert.Equal(t, "standard", pricing.SelectShippingMethod(valid, nil).Name)
	assert.Equal(t, "pickup", pricing.SelectShippingMethod(valid, &pickup.ID).Name)
	assert.Equal(t, "standard", pricing.SelectShippingMethod(valid, &express.ID).Name)
	assert.Nil(t, pricing.SelectShippingMethod(nil, &pickup.ID))

	cod := model.PaymentMethod{ID: uuid.New(), Name: "cod", Active: true}
	assert.Equal(t, "cod", pricing.SelectPaymentMethod(pricing.ValidPaymentMethods([]model.PaymentMethod{cod}, ctx), nil).Name)
}
