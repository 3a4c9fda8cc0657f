package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Price is a gross amount split into net and tax.
type Price struct {
	Gross decimal.Decimal `json:"gross"`
	Net   decimal.Decimal `json:"net"`
	Tax   decimal.Decimal `json:"tax"`
}

// NewPrice builds a price from gross and tax.
func NewPrice(gross, tax decimal.Decimal) Price {
	return Price{Gross: gross, Net: gross.Sub(tax), Tax: tax}
}

// FromGross splits gross by a tax rate given in percent.
func FromGross(gross, rate decimal.Decimal) Price {
	return NewPrice(gross, TaxFromGross(gross, rate))
}

// TaxFromGross returns the tax included in gross: gross * rate / (100 + rate).
func TaxFromGross(gross, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return gross.Mul(rate).Div(hundred.Add(rate))
}

func (p Price) Add(o Price) Price {
	return Price{Gross: p.Gross.Add(o.Gross), Net: p.Net.Add(o.Net), Tax: p.Tax.Add(o.Tax)}
}

func (p Price) Sub(o Price) Price {
	return Price{Gross: p.Gross.Sub(o.Gross), Net: p.Net.Sub(o.Net), Tax: p.Tax.Sub(o.Tax)}
}

func (p Price) Mul(n int) Price {
	f := decimal.NewFromInt(int64(n))
	return Price{Gross: p.Gross.Mul(f), Net: p.Net.Mul(f), Tax: p.Tax.Mul(f)}
}

func (p Price) Neg() Price {
	return Price{Gross: p.Gross.Neg(), Net: p.Net.Neg(), Tax: p.Tax.Neg()}
}

func (p Price) IsZero() bool {
	return p.Gross.IsZero() && p.Tax.IsZero()
}

// Round rounds every part to the given number of decimal places.
func (p Price) Round(places int32) Price {
	return Price{Gross: p.Gross.Round(places), Net: p.Net.Round(places), Tax: p.Tax.Round(places)}
}

// Percent returns value percent of p.
func (p Price) Percent(value decimal.Decimal) Price {
	f := value.Div(hundred)
	return Price{Gross: p.Gross.Mul(f), Net: p.Net.Mul(f), Tax: p.Tax.Mul(f)}
}

// ProductPrice is the price of a single unit.
func ProductPrice(p model.Product) Price {
	return FromGross(p.EffectivePrice(), p.TaxRate)
}

// ItemPrice is the price of a cart line.
func ItemPrice(item model.CartItem) Price {
	return ProductPrice(item.Product).Mul(item.Amount)
}

// CartPrice sums all cart lines.
func CartPrice(cart model.Cart) Price {
	total := Price{}
	for _, item := range cart.Items {
		if item.Amount <= 0 {
			continue
		}
		total = total.Add(ItemPrice(item))
	}
	return total
}
