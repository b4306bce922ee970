package feed

import "platepick/models"

// applyFilters returns, in input order, the candidates that are not in seen
// and pass the rating and price filters. seen is never mutated here; the
// session commits ids only after a page is accepted, so a failed fetch never
// loses track of what was already shown.
func applyFilters(candidates []models.Restaurant, seen map[string]struct{}, filters models.SearchFilters) []models.Restaurant {
	kept := make([]models.Restaurant, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		if filters.MinRating != nil && c.Rating < *filters.MinRating {
			continue
		}
		if len(filters.PriceLevels) > 0 && !tierAllowed(c.PriceTier, filters.PriceLevels) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// tierAllowed requires a known tier when price filtering is on; unknown-price
// restaurants are excluded rather than guessed at.
func tierAllowed(tier string, allowed []string) bool {
	if tier == "" {
		return false
	}
	for _, a := range allowed {
		if a == tier {
			return true
		}
	}
	return false
}
