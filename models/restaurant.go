package models

// PlaceholderImageURL is served when the upstream source has no photo for a place.
const PlaceholderImageURL = "https://static.platepick.app/placeholder-restaurant.png"

// Coordinate is a latitude/longitude pair in degrees. Immutable once obtained.
type Coordinate struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Category is one alias/title classification pair attached to a restaurant.
type Category struct {
	Alias string `bson:"alias" json:"alias"`
	Title string `bson:"title" json:"title"`
}

// Address holds structured address parts; city/state/postalCode may be empty
// when the upstream source only provides a single formatted line.
type Address struct {
	Line1      string `bson:"line1" json:"line1"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
}

// Restaurant is the canonical card entity delivered by the feed. ID is the
// upstream place id and is stable across pages; the feed guarantees an ID is
// never delivered twice within one session.
type Restaurant struct {
	ID         string     `bson:"id" json:"id"`
	Name       string     `bson:"name" json:"name"`
	ImageURL   string     `bson:"imageUrl" json:"imageUrl"`
	Rating     float64    `bson:"rating" json:"rating"`
	PriceTier  string     `bson:"priceTier,omitempty" json:"priceTier,omitempty"`
	Categories []Category `bson:"categories" json:"categories"`
	Address    Address    `bson:"address" json:"address"`
	Coordinate Coordinate `bson:"coordinate" json:"coordinate"`
	Phone      string     `bson:"phone,omitempty" json:"phone,omitempty"`
	// DistanceKm is computed relative to the querying location at fetch
	// time and is not recomputed afterwards.
	DistanceKm float64 `bson:"distanceKm" json:"distanceKm"`
	IsOpenNow  *bool   `bson:"isOpenNow,omitempty" json:"isOpenNow,omitempty"`
	Website    string  `bson:"website,omitempty" json:"website,omitempty"`
}
