package feed

import (
	"context"
	"sync"
	"time"

	"platepick/models"
	"platepick/services/location"
	"platepick/services/places"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State names the lifecycle phase of a feed session.
type State string

const (
	StateIdle              State = "idle"
	StateLocatingFailed    State = "locating_failed"
	StateFetchingFirstPage State = "fetching_first_page"
	StateReady             State = "ready"
	StateExhausted         State = "exhausted"
	StateFetchError        State = "fetch_error"
)

// User-facing messages surfaced in snapshots.
const (
	msgFinding         = "finding restaurants"
	msgNoResultsNearby = "no restaurants found nearby"
	msgFilteredOut     = "nothing matched your filters"
	msgUpstream        = "we couldn't load restaurants right now"
	msgLocating        = "we couldn't determine your location"
	msgPermission      = "location access is needed to find restaurants near you"
)

// Session is one user's restaurant feed: an ordered, deduplicated, paginated
// buffer of cards with a cursor, lazily refilled from the places client.
//
// All page fetches within a session are serialized by the fetchInFlight
// guard; an Advance or Refresh arriving while a fetch is running is a silent
// no-op. When the deck runs out completely (no continuation token, every
// candidate shown) the session clears its seen set and refetches from the
// first page, so the feed recirculates instead of dead-ending. That
// reset-and-loop behavior is a product decision, not a fallback.
type Session struct {
	mu sync.Mutex

	id     string
	userID string

	placesClient places.Client
	locator      location.Provider
	logger       *zap.Logger

	pageSize      int
	defaultRadius int

	filters        models.SearchFilters
	pendingFilters *models.SearchFilters

	origin        *models.Coordinate
	buffer        []models.Restaurant
	cursor        int
	seen          map[string]struct{}
	nextToken     *string
	fetchInFlight bool
	closed        bool

	state      State
	message    string
	lastActive time.Time
}

// NewSession creates an idle session; call Refresh to locate and load it.
func NewSession(userID string, client places.Client, locator location.Provider, filters models.SearchFilters, pageSize, defaultRadiusM int, logger *zap.Logger) *Session {
	return &Session{
		id:            uuid.New().String(),
		userID:        userID,
		placesClient:  client,
		locator:       locator,
		logger:        logger,
		pageSize:      pageSize,
		defaultRadius: defaultRadiusM,
		filters:       filters,
		seen:          make(map[string]struct{}),
		state:         StateIdle,
		lastActive:    time.Now(),
	}
}

// ID returns the session's identifier.
func (s *Session) ID() string {
	return s.id
}

// LastActive reports when the session last served an operation.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close tears the session down. A fetch still in flight will find the closed
// flag when it resolves and discard its response without touching state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Current returns the card under the cursor, if any.
func (s *Session) Current() (models.Restaurant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= 0 && s.cursor < len(s.buffer) {
		return s.buffer[s.cursor], true
	}
	return models.Restaurant{}, false
}

// Snapshot projects the session for the client.
func (s *Session) Snapshot() models.FeedSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := models.FeedSnapshot{
		SessionID: s.id,
		State:     string(s.state),
		Message:   s.message,
		Cursor:    s.cursor,
		BufferLen: len(s.buffer),
		Loading:   s.fetchInFlight,
	}
	if s.cursor >= 0 && s.cursor < len(s.buffer) {
		current := s.buffer[s.cursor]
		snap.Current = &current
	}
	return snap
}

// StageFilters records new filters to take effect on the next Refresh. A live
// fetch cycle never sees them.
func (s *Session) StageFilters(filters models.SearchFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := filters
	s.pendingFilters = &f
	s.touch()
}

// Refresh clears all feed state, applies any staged filters, asks the
// location provider for a coordinate, and loads the first page cycle. On
// location failure the session lands in LocatingFailed until the next
// Refresh. A Refresh arriving while a fetch is in flight is ignored.
func (s *Session) Refresh(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.fetchInFlight {
		s.mu.Unlock()
		return
	}
	if s.pendingFilters != nil {
		s.filters = *s.pendingFilters
		s.pendingFilters = nil
	}
	s.buffer = nil
	s.cursor = 0
	s.seen = make(map[string]struct{})
	s.nextToken = nil
	s.origin = nil
	s.state = StateFetchingFirstPage
	s.message = msgFinding
	s.fetchInFlight = true
	s.touch()
	s.mu.Unlock()

	coord, locErr := s.locate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fetchInFlight = false
	if locErr != nil {
		s.state = StateLocatingFailed
		if locErr == location.ErrPermissionDenied {
			s.message = msgPermission
		} else {
			s.message = msgLocating
		}
		s.logger.Warn("feed: locating failed",
			zap.String("session", s.id), zap.Error(locErr))
		return
	}
	s.origin = &coord

	s.fetchInFlight = true
	appended, sawRaw, err := s.fetchCycleLocked(ctx, nil)
	s.fetchInFlight = false
	if s.closed {
		return
	}
	s.resolveCycleLocked(appended, sawRaw, err, false)
}

// Advance moves the cursor to the next card, fetching further pages as
// needed. Outside Ready/Exhausted/FetchError it is a no-op, as is a call that
// races an in-flight fetch.
func (s *Session) Advance(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.fetchInFlight {
		return
	}
	switch s.state {
	case StateIdle, StateLocatingFailed, StateFetchingFirstPage:
		return
	}
	s.touch()

	// Fast path: another card is already buffered.
	if s.cursor+1 < len(s.buffer) {
		s.cursor++
		s.state = StateReady
		s.message = ""
		return
	}

	// Buffer consumed. Follow the continuation token while one exists.
	if s.nextToken != nil {
		s.fetchInFlight = true
		appended, sawRaw, err := s.fetchCycleLocked(ctx, s.nextToken)
		s.fetchInFlight = false
		if s.closed {
			return
		}
		if err != nil {
			s.state = StateFetchError
			s.message = msgUpstream
			s.logger.Warn("feed: page fetch failed",
				zap.String("session", s.id), zap.Error(err))
			return
		}
		if appended > 0 {
			s.cursor++
			s.state = StateReady
			s.message = ""
			return
		}
		// Token chain ended without a single new card.
		s.state = StateExhausted
		if sawRaw {
			s.message = msgFilteredOut
		} else {
			s.message = msgNoResultsNearby
		}
		return
	}

	// No continuation token. An empty buffer means there was never anything
	// to show; stay exhausted. A non-empty one means the full cycle has been
	// consumed: clear the seen set and refetch from the first page so
	// already-shown cards recirculate.
	if len(s.buffer) == 0 || s.origin == nil {
		return
	}
	s.buffer = nil
	s.cursor = 0
	s.seen = make(map[string]struct{})
	s.state = StateFetchingFirstPage
	s.message = msgFinding

	s.fetchInFlight = true
	appended, sawRaw, err := s.fetchCycleLocked(ctx, nil)
	s.fetchInFlight = false
	if s.closed {
		return
	}
	s.resolveCycleLocked(appended, sawRaw, err, true)
}

// locate asks the provider for permission and a coordinate.
func (s *Session) locate(ctx context.Context) (models.Coordinate, error) {
	if err := s.locator.RequestPermission(ctx); err != nil {
		return models.Coordinate{}, err
	}
	return s.locator.CurrentCoordinate(ctx)
}

// fetchCycleLocked fetches pages starting from token until at least one
// unseen, filter-passing card lands in the buffer or the provider runs out of
// pages. It must be called with mu held and fetchInFlight set; the lock is
// released around each network call. The cycle has no artificial page cap:
// it terminates when the provider stops returning continuation tokens.
//
// Pages are committed one at a time, so a failure leaves every previously
// accepted page intact and the failing page unapplied. sawRaw reports whether
// any page in the cycle carried raw records, which distinguishes "nothing
// nearby" from "nothing matched your filters".
func (s *Session) fetchCycleLocked(ctx context.Context, token *string) (appended int, sawRaw bool, err error) {
	for {
		origin := *s.origin
		filters := s.filters
		radius := filters.RadiusMeters
		if radius <= 0 {
			radius = s.defaultRadius
		}
		pageSize := s.pageSize

		s.mu.Unlock()
		page, fetchErr := s.placesClient.Search(ctx, origin, radius, pageSize, token)
		s.mu.Lock()

		if s.closed {
			return appended, sawRaw, errSessionClosed
		}
		if fetchErr != nil {
			return appended, sawRaw, fetchErr
		}

		if len(page.Records) > 0 {
			sawRaw = true
		}

		candidates := make([]models.Restaurant, 0, len(page.Records))
		for _, raw := range page.Records {
			r, normErr := normalizeRecord(raw, origin)
			if normErr != nil {
				s.logger.Debug("feed: dropping malformed record",
					zap.String("session", s.id), zap.String("placeID", raw.ID))
				continue
			}
			candidates = append(candidates, r)
		}

		kept := applyFilters(candidates, s.seen, filters)
		for _, r := range kept {
			s.buffer = append(s.buffer, r)
			s.seen[r.ID] = struct{}{}
		}
		s.nextToken = page.NextToken
		appended += len(kept)

		if appended > 0 || page.NextToken == nil {
			return appended, sawRaw, nil
		}
		token = page.NextToken
	}
}

// resolveCycleLocked translates a completed first-page cycle into a state.
// recycled marks the full-cycle reset path, where an empty outcome should not
// regress the message below what the user already saw.
func (s *Session) resolveCycleLocked(appended int, sawRaw bool, err error, recycled bool) {
	if err != nil {
		s.state = StateFetchError
		s.message = msgUpstream
		s.logger.Warn("feed: first page cycle failed",
			zap.String("session", s.id), zap.Bool("recycled", recycled), zap.Error(err))
		return
	}
	if appended > 0 {
		s.state = StateReady
		s.message = ""
		return
	}
	s.state = StateExhausted
	if sawRaw {
		s.message = msgFilteredOut
	} else {
		s.message = msgNoResultsNearby
	}
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}
