package feed

import (
	"testing"

	"platepick/models"

	"github.com/stretchr/testify/assert"
)

func card(id string, rating float64, tier string) models.Restaurant {
	return models.Restaurant{ID: id, Name: "r-" + id, Rating: rating, PriceTier: tier}
}

func ratingPtr(v float64) *float64 {
	return &v
}

func TestApplyFiltersDedup(t *testing.T) {
	seen := map[string]struct{}{"a": {}}
	candidates := []models.Restaurant{card("a", 4, "$"), card("b", 4, "$"), card("c", 4, "$")}

	kept := applyFilters(candidates, seen, models.SearchFilters{})

	assert.Len(t, kept, 2)
	assert.Equal(t, "b", kept[0].ID)
	assert.Equal(t, "c", kept[1].ID)
	// seen is never mutated by the engine.
	assert.Len(t, seen, 1)
}

func TestApplyFiltersMinRating(t *testing.T) {
	candidates := []models.Restaurant{card("a", 3.9, ""), card("b", 4.5, ""), card("c", 4.6, "")}

	kept := applyFilters(candidates, map[string]struct{}{}, models.SearchFilters{MinRating: ratingPtr(4.5)})

	assert.Len(t, kept, 2)
	assert.Equal(t, "b", kept[0].ID)
	assert.Equal(t, "c", kept[1].ID)
}

func TestApplyFiltersPriceLevels(t *testing.T) {
	candidates := []models.Restaurant{
		card("a", 4, "$"),
		card("b", 4, "$$$"),
		card("c", 4, ""), // unknown tier is excluded under price filtering
		card("d", 4, "$$"),
	}

	kept := applyFilters(candidates, map[string]struct{}{}, models.SearchFilters{PriceLevels: []string{"$", "$$"}})

	assert.Len(t, kept, 2)
	assert.Equal(t, "a", kept[0].ID)
	assert.Equal(t, "d", kept[1].ID)
}

func TestApplyFiltersPreservesOrder(t *testing.T) {
	candidates := []models.Restaurant{card("z", 5, ""), card("a", 5, ""), card("m", 5, "")}

	kept := applyFilters(candidates, map[string]struct{}{}, models.SearchFilters{})

	assert.Equal(t, []string{"z", "a", "m"}, []string{kept[0].ID, kept[1].ID, kept[2].ID})
}

// Applying the engine twice with the same seen set against its own output
// yields nothing once the output's ids are committed.
func TestApplyFiltersIdempotent(t *testing.T) {
	candidates := []models.Restaurant{card("a", 4, "$"), card("b", 4.8, "$$")}
	filters := models.SearchFilters{MinRating: ratingPtr(4.0)}
	seen := map[string]struct{}{}

	first := applyFilters(candidates, seen, filters)
	for _, r := range first {
		seen[r.ID] = struct{}{}
	}

	second := applyFilters(first, seen, filters)
	assert.Empty(t, second)
}
