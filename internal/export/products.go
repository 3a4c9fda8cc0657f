package export

import (
	"slices"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/model"
)

// Products resolves the products of an export. Products with variants are
// replaced by the variants picked by option; other products are taken as
// they are.
func Products(products []model.Product, variants map[uuid.UUID][]model.Product, option model.VariantsOption) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if !p.HasVariants() {
			out = append(out, p)
			continue
		}
		out = append(out, pickVariants(variants[p.ID], option)...)
	}
	return out
}

func pickVariants(variants []model.Product, option model.VariantsOption) []model.Product {
	if len(variants) == 0 {
		return nil
	}

	sorted := slices.Clone(variants)
	slices.SortStableFunc(sorted, func(a, b model.Product) int { return a.VariantPosition - b.VariantPosition })

	switch option {
	case model.VariantsOptionAll:
		return sorted
	case model.VariantsOptionCheapest:
		return []model.Product{slices.MinFunc(sorted, byPrice)}
	case model.VariantsOptionExpensive:
		return []model.Product{slices.MaxFunc(sorted, byPrice)}
	case model.VariantsOptionNone:
		return nil
	default:
		return sorted[:1]
	}
}

func byPrice(a, b model.Product) int {
	return a.EffectivePrice().Cmp(b.EffectivePrice())
}
