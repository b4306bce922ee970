package feed

import (
	"platepick/geo"
	"platepick/models"
	"platepick/services/places"
)

// priceTierFromLevel maps Google's 0..4 price_level onto $..$$$$ tiers.
// Level 0 (free) and out-of-range values have no tier.
func priceTierFromLevel(level *int) string {
	if level == nil {
		return ""
	}
	switch *level {
	case 1:
		return "$"
	case 2:
		return "$$"
	case 3:
		return "$$$"
	case 4:
		return "$$$$"
	default:
		return ""
	}
}

// normalizeRecord maps a raw place record into the canonical Restaurant,
// attaching the distance from origin computed once, here. It returns
// ErrMalformedRecord when the record lacks an id, name, or coordinate.
func normalizeRecord(raw places.PlaceRecord, origin models.Coordinate) (models.Restaurant, error) {
	if raw.ID == "" || raw.Name == "" || raw.Latitude == nil || raw.Longitude == nil {
		return models.Restaurant{}, ErrMalformedRecord
	}

	coord := models.Coordinate{Latitude: *raw.Latitude, Longitude: *raw.Longitude}

	imageURL := raw.ImageURL
	if imageURL == "" {
		imageURL = models.PlaceholderImageURL
	}
	rating := raw.Rating
	if rating < 0 {
		rating = 0
	}
	categories := raw.Categories
	if categories == nil {
		categories = []models.Category{}
	}

	return models.Restaurant{
		ID:         raw.ID,
		Name:       raw.Name,
		ImageURL:   imageURL,
		Rating:     rating,
		PriceTier:  priceTierFromLevel(raw.PriceLevel),
		Categories: categories,
		Address:    raw.Address,
		Coordinate: coord,
		Phone:      raw.Phone,
		DistanceKm: geo.DistanceKm(origin, coord),
		IsOpenNow:  raw.OpenNow,
		Website:    raw.Website,
	}, nil
}
