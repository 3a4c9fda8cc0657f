package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/model"
)

// VoucherIsEffective checks whether v can be redeemed for a cart with the
// given gross price at now.
func VoucherIsEffective(v model.Voucher, cartGross decimal.Decimal, now time.Time) (bool, model.VoucherMessage) {
	if !v.Active {
		return false, model.VoucherMessageNotActive
	}

	today := truncateDay(now)
	if v.StartDate != nil && truncateDay(*v.StartDate).After(today) {
		return false, model.VoucherMessageExpired
	}
	if v.EndDate != nil && truncateDay(*v.EndDate).Before(today) {
		return false, model.VoucherMessageExpired
	}

	if v.Limit > 0 && v.UsedAmount >= v.Limit {
		return false, model.VoucherMessageAlreadyUsed
	}

	if cartGross.LessThan(v.EffectiveFrom) {
		return false, model.VoucherMessageBelowMinimum
	}

	return true, model.VoucherMessageOK
}

// VoucherPrice returns the positive amount v takes off a cart.
func VoucherPrice(v model.Voucher, cart Price) Price {
	if v.Kind == model.ValueTypePercentage {
		percent := v.Value.Div(hundred)
		return NewPrice(cart.Gross.Mul(percent), cart.Tax.Mul(percent))
	}

	tax := decimal.Zero
	if v.TaxID != nil {
		tax = TaxFromGross(v.Value, v.TaxRate)
	}
	return NewPrice(v.Value, tax)
}

// MarkVoucherUsed records one more use of v at now.
func MarkVoucherUsed(v model.Voucher, now time.Time) model.Voucher {
	v.UsedAmount++
	v.LastUsedDate = &now
	return v
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
