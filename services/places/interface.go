package places

import (
	"context"

	"platepick/models"
)

// PlaceRecord is a provider-agnostic raw search result. Coordinates are
// pointers because an upstream record may lack them entirely; the feed
// normalizer rejects such records.
type PlaceRecord struct {
	ID         string
	Name       string
	ImageURL   string
	Rating     float64
	PriceLevel *int
	Categories []models.Category
	Address    models.Address
	Latitude   *float64
	Longitude  *float64
	Phone      string
	OpenNow    *bool
	Website    string
}

// Page is one page of search results. NextToken is nil when the provider has
// no further pages.
type Page struct {
	Records   []PlaceRecord
	NextToken *string
}

// Client searches for restaurants around an origin. Implementations must
// treat an upstream "no results" status as an empty page, not an error, and
// must absorb provider-specific pagination quirks (such as a settling delay
// before a continuation token becomes usable).
type Client interface {
	Search(ctx context.Context, origin models.Coordinate, radiusMeters, pageSize int, pageToken *string) (*Page, error)
}
