package inventory

import "github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"

// MatchVariant resolves an order line to one of the product's variants.
// It returns a reference into the given slice (the caller mutates stock
// through it) or nil when nothing matches.
//
// Matching is exact string equality, attempted rule by rule across the
// whole list to tolerate the historical label-field renames:
//
//  1. line label vs variant label
//  2. line label vs variant legacy size label
//  3. line legacy size label vs variant label
//
// The first rule that matches anywhere wins, so a variant whose primary
// label equals the line label is always preferred over one that only
// matches through a legacy field. Empty strings never match.
func MatchVariant(variants domain.VariantList, line domain.OrderLine) *domain.Variant {
	if line.Variant != "" {
		for i := range variants {
			if variants[i].Label != "" && variants[i].Label == line.Variant {
				return &variants[i]
			}
		}
		for i := range variants {
			if variants[i].Size != "" && variants[i].Size == line.Variant {
				return &variants[i]
			}
		}
	}
	if line.Size != "" {
		for i := range variants {
			if variants[i].Label != "" && variants[i].Label == line.Size {
				return &variants[i]
			}
		}
	}
	return nil
}
