package pricing

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/criteria"
	"github.com/tuanvumaihuynh/lfs/internal/model"
)

// Methods holds all configured shipping and payment methods.
type Methods struct {
	Shipping []model.ShippingMethod
	Payment  []model.PaymentMethod
}

var _ criteria.MethodResolver = Methods{}

func (m Methods) ShippingMethod(id uuid.UUID) (model.ShippingMethod, bool) {
	for _, sm := range m.Shipping {
		if sm.ID == id {
			return sm, true
		}
	}
	return model.ShippingMethod{}, false
}

func (m Methods) PaymentMethod(id uuid.UUID) (model.PaymentMethod, bool) {
	for _, pm := range m.Payment {
		if pm.ID == id {
			return pm, true
		}
	}
	return model.PaymentMethod{}, false
}

type CartInput struct {
	Cart      model.Cart
	Methods   Methods
	Discounts []model.Discount
	// Voucher is the voucher entered by the customer, if any.
	Voucher *model.Voucher
	Now     time.Time
}

// Evaluation is everything a cart costs right now.
type Evaluation struct {
	Totals
	ShippingMethods []model.ShippingMethod `json:"shipping_methods"`
	ShippingMethod  *model.ShippingMethod  `json:"shipping_method,omitempty"`
	PaymentMethods  []model.PaymentMethod  `json:"payment_methods"`
	PaymentMethod   *model.PaymentMethod   `json:"payment_method,omitempty"`
	VoucherMessage  model.VoucherMessage   `json:"voucher_message,omitempty"`
}

// EvaluateCart resolves methods, costs and reductions of a cart. The
// shipping method is resolved first so payment criteria see it.
func EvaluateCart(in CartInput) Evaluation {
	cart := in.Cart
	ctx := criteria.Context{
		Cart:                     &cart,
		Country:                  cart.Country,
		SelectedShippingMethodID: cart.SelectedShippingMethodID,
		SelectedPaymentMethodID:  cart.SelectedPaymentMethodID,
		Methods:                  in.Methods,
	}

	ev := Evaluation{}

	ev.ShippingMethods = ValidShippingMethods(in.Methods.Shipping, ctx)
	ev.ShippingMethod = SelectShippingMethod(ev.ShippingMethods, cart.SelectedShippingMethodID)
	ctx.SelectedShippingMethodID = nil
	if ev.ShippingMethod != nil {
		ctx.SelectedShippingMethodID = &ev.ShippingMethod.ID
	}

	ev.PaymentMethods = ValidPaymentMethods(in.Methods.Payment, ctx)
	ev.PaymentMethod = SelectPaymentMethod(ev.PaymentMethods, cart.SelectedPaymentMethodID)
	ctx.SelectedPaymentMethodID = nil
	if ev.PaymentMethod != nil {
		ctx.SelectedPaymentMethodID = &ev.PaymentMethod.ID
	}

	cartPrice := CartPrice(cart)
	shipping := ShippingCosts(ev.ShippingMethod, ctx)
	payment := PaymentCosts(ev.PaymentMethod, ctx)
	discounts := ApplicableDiscounts(in.Discounts, ctx)

	var (
		voucher      *model.Voucher
		voucherPrice Price
	)
	if in.Voucher != nil {
		ok, msg := VoucherIsEffective(*in.Voucher, cartPrice.Gross, in.Now)
		ev.VoucherMessage = msg
		if ok {
			voucher = in.Voucher
			voucherPrice = VoucherPrice(*in.Voucher, cartPrice)
		}
	}

	ev.Totals = OrderTotals(cartPrice, shipping, payment, ChooseReduction(discounts, voucher, voucherPrice))
	return ev
}
