package models

// SearchFilters are the caller-selected feed constraints. Changing them on a
// live session takes effect on the next refresh, never mid-fetch.
type SearchFilters struct {
	// RadiusMeters limits the search radius; 0 means the configured default.
	RadiusMeters int `json:"radiusMeters,omitempty"`
	// MinRating keeps only restaurants rated at or above it; nil means unset.
	MinRating *float64 `json:"minRating,omitempty"`
	// PriceLevels keeps only restaurants whose price tier ($..$$$$) is
	// listed; empty means no price filtering.
	PriceLevels []string `json:"priceLevels,omitempty"`
}
