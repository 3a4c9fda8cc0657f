package pricing

import (
	"github.com/tuanvumaihuynh/lfs/internal/model"
)

// Reduction is what comes off an order: either a set of discounts or a
// voucher, never both.
type Reduction struct {
	Discounts    []AppliedDiscount `json:"discounts"`
	Voucher      *model.Voucher    `json:"voucher,omitempty"`
	VoucherPrice Price             `json:"voucher_price"`
}

func (r Reduction) Total() Price {
	if r.Voucher != nil {
		return r.VoucherPrice
	}
	total := Price{}
	for _, d := range r.Discounts {
		total = total.Add(d.Price)
	}
	return total
}

func (r Reduction) UsesVoucher() bool {
	return r.Voucher != nil
}

// BestDiscounts picks the discount combination with the highest gross value.
// All discounts that sum up are combined into one candidate; every other
// discount stands alone. On equal value the summed candidate wins, then
// the earlier standalone discount.
func BestDiscounts(discounts []AppliedDiscount) []AppliedDiscount {
	var summed []AppliedDiscount
	var singles [][]AppliedDiscount
	for _, d := range discounts {
		if d.Discount.SumsUp {
			summed = append(summed, d)
		} else {
			singles = append(singles, []AppliedDiscount{d})
		}
	}

	candidates := make([][]AppliedDiscount, 0, len(singles)+1)
	if len(summed) > 0 {
		candidates = append(candidates, summed)
	}
	candidates = append(candidates, singles...)

	var best []AppliedDiscount
	bestTotal := Price{}
	for _, c := range candidates {
		total := Reduction{Discounts: c}.Total()
		if best == nil || total.Gross.GreaterThan(bestTotal.Gross) {
			best, bestTotal = c, total
		}
	}
	return best
}

// ChooseReduction applies the best discount combination or the voucher,
// whichever takes more off the order. Discounts win a tie. A nil voucher
// means no effective voucher was entered.
func ChooseReduction(discounts []AppliedDiscount, voucher *model.Voucher, voucherPrice Price) Reduction {
	best := BestDiscounts(discounts)
	discountTotal := Reduction{Discounts: best}.Total()

	if voucher != nil && voucherPrice.Gross.GreaterThan(discountTotal.Gross) {
		return Reduction{Voucher: voucher, VoucherPrice: voucherPrice}
	}
	return Reduction{Discounts: best}
}
