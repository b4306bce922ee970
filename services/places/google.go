package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"platepick/models"

	"go.uber.org/zap"
)

const (
	nearbySearchURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	photoURL        = "https://maps.googleapis.com/maps/api/place/photo"

	// Google issues next_page_token before it is actually usable; requests
	// made too early fail with INVALID_REQUEST. The documented workaround is
	// to wait about two seconds before following the token.
	tokenSettleDelay = 2 * time.Second

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// googleSearchResponse mirrors the Places nearby-search JSON body.
type googleSearchResponse struct {
	Status        string         `json:"status"`
	ErrorMessage  string         `json:"error_message"`
	NextPageToken string         `json:"next_page_token"`
	Results       []googleResult `json:"results"`
}

type googleResult struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
	Geometry struct {
		Location struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating       float64  `json:"rating"`
	PriceLevel   *int     `json:"price_level"`
	Types        []string `json:"types"`
	OpeningHours *struct {
		OpenNow *bool `json:"open_now"`
	} `json:"opening_hours"`
	Photos []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
	FormattedPhoneNumber string `json:"formatted_phone_number"`
	Website              string `json:"website"`
}

// GoogleClient implements Client against the Google Places nearby-search API.
type GoogleClient struct {
	apiKey      string
	baseURL     string
	settleDelay time.Duration
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewGoogleClient creates a nearby-search client.
func NewGoogleClient(apiKey string, logger *zap.Logger) *GoogleClient {
	return &GoogleClient{
		apiKey:      apiKey,
		baseURL:     nearbySearchURL,
		settleDelay: tokenSettleDelay,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

// Search fetches one page of restaurants around origin. ZERO_RESULTS maps to
// an empty page; any other non-OK status becomes an UpstreamError.
func (c *GoogleClient) Search(ctx context.Context, origin models.Coordinate, radiusMeters, pageSize int, pageToken *string) (*Page, error) {
	if c.apiKey == "" {
		return nil, &UpstreamError{Status: "NO_API_KEY"}
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	if pageToken != nil {
		// A continuation request carries only the token; Google rejects
		// requests that re-send location parameters alongside it.
		params.Set("pagetoken", *pageToken)
		if err := c.settle(ctx); err != nil {
			return nil, err
		}
	} else {
		params.Set("location", fmt.Sprintf("%.6f,%.6f", origin.Latitude, origin.Longitude))
		params.Set("radius", fmt.Sprintf("%d", radiusMeters))
		params.Set("type", "restaurant")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &UpstreamError{Status: "REQUEST_BUILD_FAILED", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Status: "NETWORK_ERROR", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: fmt.Sprintf("HTTP_%d", resp.StatusCode)}
	}

	var body googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &UpstreamError{Status: "MALFORMED_RESPONSE", Err: err}
	}

	switch body.Status {
	case statusOK:
	case statusZeroResults:
		return &Page{}, nil
	default:
		return nil, &UpstreamError{Status: body.Status, Err: fmt.Errorf("%s", body.ErrorMessage)}
	}

	records := make([]PlaceRecord, 0, len(body.Results))
	for _, r := range body.Results {
		records = append(records, c.toRecord(r))
	}
	if pageSize > 0 && len(records) > pageSize {
		records = records[:pageSize]
	}

	page := &Page{Records: records}
	if body.NextPageToken != "" {
		token := body.NextPageToken
		page.NextToken = &token
	}

	c.logger.Debug("places: fetched page",
		zap.Int("records", len(page.Records)),
		zap.Bool("hasNextToken", page.NextToken != nil))
	return page, nil
}

// settle waits out the token settling delay, aborting early on context cancellation.
func (c *GoogleClient) settle(ctx context.Context) error {
	timer := time.NewTimer(c.settleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &UpstreamError{Status: "CANCELLED", Err: ctx.Err()}
	case <-timer.C:
		return nil
	}
}

func (c *GoogleClient) toRecord(r googleResult) PlaceRecord {
	rec := PlaceRecord{
		ID:         r.PlaceID,
		Name:       r.Name,
		Rating:     r.Rating,
		PriceLevel: r.PriceLevel,
		Address:    models.Address{Line1: r.Vicinity},
		Latitude:   r.Geometry.Location.Lat,
		Longitude:  r.Geometry.Location.Lng,
		Phone:      r.FormattedPhoneNumber,
		Website:    r.Website,
	}
	if r.OpeningHours != nil {
		rec.OpenNow = r.OpeningHours.OpenNow
	}
	if len(r.Photos) > 0 && r.Photos[0].PhotoReference != "" {
		rec.ImageURL = fmt.Sprintf("%s?maxwidth=800&photo_reference=%s&key=%s",
			photoURL, r.Photos[0].PhotoReference, c.apiKey)
	}
	for _, t := range r.Types {
		if skipTypes[t] {
			continue
		}
		rec.Categories = append(rec.Categories, models.Category{
			Alias: t,
			Title: titleFromAlias(t),
		})
	}
	return rec
}

// skipTypes are Google types too generic to show as a category chip.
var skipTypes = map[string]bool{
	"point_of_interest": true,
	"establishment":     true,
	"food":              true,
}

func titleFromAlias(alias string) string {
	words := strings.Split(alias, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
