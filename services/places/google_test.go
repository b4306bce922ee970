package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"platepick/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var googleTestOrigin = models.Coordinate{Latitude: 40.7128, Longitude: -74.0060}

func newStubbedClient(t *testing.T, handler http.HandlerFunc) (*GoogleClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewGoogleClient("test-key", zap.NewNop())
	c.baseURL = srv.URL
	c.settleDelay = 0
	return c, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, body interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestGoogleClientSearchMapsResults(t *testing.T) {
	var query url.Values
	c, _ := newStubbedClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(t, w, map[string]interface{}{
			"status":          "OK",
			"next_page_token": "tok-2",
			"results": []map[string]interface{}{
				{
					"place_id": "p1",
					"name":     "Luigi's",
					"vicinity": "12 Mott St",
					"geometry": map[string]interface{}{
						"location": map[string]interface{}{"lat": 40.7150, "lng": -74.0010},
					},
					"rating":        4.4,
					"price_level":   2,
					"types":         []string{"italian_restaurant", "point_of_interest", "food"},
					"opening_hours": map[string]interface{}{"open_now": true},
					"photos":        []map[string]interface{}{{"photo_reference": "ref-1"}},
				},
			},
		})
	})

	page, err := c.Search(context.Background(), googleTestOrigin, 4000, 20, nil)
	require.NoError(t, err)

	assert.Equal(t, "test-key", query.Get("key"))
	assert.Equal(t, "restaurant", query.Get("type"))
	assert.Equal(t, "4000", query.Get("radius"))
	assert.Contains(t, query.Get("location"), "40.712800")

	require.Len(t, page.Records, 1)
	rec := page.Records[0]
	assert.Equal(t, "p1", rec.ID)
	assert.Equal(t, "Luigi's", rec.Name)
	assert.Equal(t, "12 Mott St", rec.Address.Line1)
	require.NotNil(t, rec.Latitude)
	assert.InDelta(t, 40.7150, *rec.Latitude, 1e-9)
	assert.Equal(t, 4.4, rec.Rating)
	require.NotNil(t, rec.PriceLevel)
	assert.Equal(t, 2, *rec.PriceLevel)
	require.NotNil(t, rec.OpenNow)
	assert.True(t, *rec.OpenNow)
	assert.Contains(t, rec.ImageURL, "photo_reference=ref-1")

	// Generic types are dropped; the rest become title-cased categories.
	require.Len(t, rec.Categories, 1)
	assert.Equal(t, "italian_restaurant", rec.Categories[0].Alias)
	assert.Equal(t, "Italian Restaurant", rec.Categories[0].Title)

	require.NotNil(t, page.NextToken)
	assert.Equal(t, "tok-2", *page.NextToken)
}

func TestGoogleClientTokenRequestCarriesOnlyToken(t *testing.T) {
	var query url.Values
	c, _ := newStubbedClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(t, w, map[string]interface{}{"status": "OK", "results": []interface{}{}})
	})

	token := "tok-1"
	_, err := c.Search(context.Background(), googleTestOrigin, 4000, 20, &token)
	require.NoError(t, err)

	assert.Equal(t, "tok-1", query.Get("pagetoken"))
	assert.Empty(t, query.Get("location"))
	assert.Empty(t, query.Get("radius"))
	assert.Empty(t, query.Get("type"))
}

func TestGoogleClientZeroResultsIsEmptyPage(t *testing.T) {
	c, _ := newStubbedClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{"status": "ZERO_RESULTS"})
	})

	page, err := c.Search(context.Background(), googleTestOrigin, 4000, 20, nil)
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.Nil(t, page.NextToken)
}

func TestGoogleClientNonOKStatusIsUpstreamError(t *testing.T) {
	c, _ := newStubbedClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{
			"status":        "REQUEST_DENIED",
			"error_message": "key invalid",
		})
	})

	_, err := c.Search(context.Background(), googleTestOrigin, 4000, 20, nil)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "REQUEST_DENIED", upstream.Status)
}

func TestGoogleClientHTTPErrorIsUpstreamError(t *testing.T) {
	c, _ := newStubbedClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Search(context.Background(), googleTestOrigin, 4000, 20, nil)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "HTTP_502", upstream.Status)
}

func TestGoogleClientMissingAPIKey(t *testing.T) {
	c := NewGoogleClient("", zap.NewNop())

	_, err := c.Search(context.Background(), googleTestOrigin, 4000, 20, nil)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "NO_API_KEY", upstream.Status)
}

func TestGoogleClientTruncatesToPageSize(t *testing.T) {
	results := make([]map[string]interface{}, 5)
	for i := range results {
		results[i] = map[string]interface{}{
			"place_id": string(rune('a' + i)),
			"name":     "r",
			"geometry": map[string]interface{}{
				"location": map[string]interface{}{"lat": 40.0, "lng": -73.0},
			},
		}
	}
	c, _ := newStubbedClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{"status": "OK", "results": results})
	})

	page, err := c.Search(context.Background(), googleTestOrigin, 4000, 3, nil)
	require.NoError(t, err)
	assert.Len(t, page.Records, 3)
}

func TestGoogleClientSettleAbortsOnCancelledContext(t *testing.T) {
	c := NewGoogleClient("test-key", zap.NewNop())
	c.settleDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	token := "tok-1"
	_, err := c.Search(ctx, googleTestOrigin, 4000, 20, &token)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "CANCELLED", upstream.Status)
}

func TestTitleFromAlias(t *testing.T) {
	assert.Equal(t, "Italian Restaurant", titleFromAlias("italian_restaurant"))
	assert.Equal(t, "Cafe", titleFromAlias("cafe"))
	assert.Equal(t, "Meal Takeaway", titleFromAlias("meal_takeaway"))
}
