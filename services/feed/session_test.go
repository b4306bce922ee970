package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"platepick/models"
	"platepick/services/location"
	"platepick/services/places"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedClient plays back a scripted sequence of pages and can block a
// chosen call to exercise the in-flight guard.
type scriptedClient struct {
	mu     sync.Mutex
	fn     func(call int, token *string) (*places.Page, error)
	calls  int
	tokens []*string

	blockOn int
	entered chan struct{}
	release chan struct{}
}

func (c *scriptedClient) Search(ctx context.Context, origin models.Coordinate, radiusMeters, pageSize int, token *string) (*places.Page, error) {
	c.mu.Lock()
	call := c.calls
	c.calls++
	c.tokens = append(c.tokens, token)
	fn := c.fn
	blocked := c.entered != nil && call == c.blockOn
	entered, release := c.entered, c.release
	c.mu.Unlock()

	if blocked {
		entered <- struct{}{}
		<-release
	}
	return fn(call, token)
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func ratedRecord(id string, rating float64) places.PlaceRecord {
	r := rawRecord(id)
	r.Rating = rating
	return r
}

func pageWith(next string, records ...places.PlaceRecord) *places.Page {
	page := &places.Page{Records: records}
	if next != "" {
		token := next
		page.NextToken = &token
	}
	return page
}

func newTestSession(client places.Client, filters models.SearchFilters) *Session {
	return NewSession("user-1", client, location.Fixed{Coordinate: testOrigin}, filters, 20, 4000, zap.NewNop())
}

func currentID(t *testing.T, s *Session) string {
	t.Helper()
	r, ok := s.Current()
	require.True(t, ok, "expected a current card")
	return r.ID
}

func TestSessionFirstPageAndFullCycleReset(t *testing.T) {
	client := &scriptedClient{
		fn: func(call int, token *string) (*places.Page, error) {
			require.Nil(t, token, "every call in this script is a first page")
			return pageWith("", rawRecord("A"), rawRecord("B"), rawRecord("C")), nil
		},
	}
	s := newTestSession(client, models.SearchFilters{})
	ctx := context.Background()

	s.Refresh(ctx)
	assert.Equal(t, StateReady, snapState(s.Snapshot()))
	assert.Equal(t, "A", currentID(t, s))

	s.Advance(ctx)
	assert.Equal(t, "B", currentID(t, s))
	s.Advance(ctx)
	assert.Equal(t, "C", currentID(t, s))

	// Buffer consumed, no continuation token: the deck resets and refetches,
	// recirculating already-shown cards.
	s.Advance(ctx)
	assert.Equal(t, "A", currentID(t, s))
	assert.Equal(t, StateReady, snapState(s.Snapshot()))
	assert.Equal(t, 2, client.callCount())
}

func TestSessionNeverRepeatsWithinCycle(t *testing.T) {
	client := &scriptedClient{
		fn: func(call int, token *string) (*places.Page, error) {
			switch call {
			case 0:
				return pageWith("T1", rawRecord("A"), rawRecord("B")), nil
			default:
				// B repeats across the page boundary; dedup must drop it.
				return pageWith("", rawRecord("B"), rawRecord("C")), nil
			}
		},
	}
	s := newTestSession(client, models.SearchFilters{})
	ctx := context.Background()

	s.Refresh(ctx)
	delivered := []string{currentID(t, s)}
	for i := 0; i < 2; i++ {
		s.Advance(ctx)
		delivered = append(delivered, currentID(t, s))
	}

	assert.Equal(t, []string{"A", "B", "C"}, delivered)
}

func TestSessionSkipsEmptyPagesUntilTokenEnds(t *testing.T) {
	client := &scriptedClient{
		fn: func(call int, token *string) (*places.Page, error) {
			switch call {
			case 0:
				return pageWith("T1"), nil
			case 1:
				return pageWith("T2"), nil
			default:
				return pageWith(""), nil
			}
		},
	}
	s := newTestSession(client, models.SearchFilters{})

	s.Refresh(context.Background())

	snap := s.Snapshot()
	assert.Equal(t, StateExhausted, snapState(snap))
	assert.Equal(t, msgNoResultsNearby, snap.Message)
	assert.Nil(t, snap.Current)
	// Terminated by the provider's token chain ending, not by looping forever.
	assert.Equal(t, 3, client.callCount())
}

func TestSessionDistinguishesFilteredOutFromNoResults(t *testing.T) {
	client := &scriptedClient{
		fn: func(call int, token *string) (*places.Page, error) {
			return pageWith("", ratedRecord("A", 3.9)), nil
		},
	}
	s := newTestSession(client, models.SearchFilters{MinRating: ratingPtr(4.5)})

	s.Refresh(context.Background())

	snap := s.Snapshot()
	assert.Equal(t, StateExhausted, snapState(snap))
	assert.Equal(t, msgFilteredOut, snap.Message)
	assert.Nil(t, snap.Current)
}

func TestSessionFetchesAcrossPagesUntilQualifyingRecord(t *testing.T) {
	client := &scriptedClient{
		fn: func(call int, token *string) (*places.Page, error) {
			switch call {
			case 0:
				return pageWith("T1", ratedRecord("low", 3.9)), nil
			default:
				return pageWith("", ratedRecord("high", 4.7)), nil
			}
		},
	}
	s := newTestSession(client, models.SearchFilters{MinRating: ratingPtr(4.5)})

	s.Refresh(context.Background())

	assert.Equal(t, StateReady, snapState(s.Snapshot()))
	assert.Equal(t, "high", currentID(t, s))
	assert.Equal(t, 2, client.callCount())
}

func TestSessionFetchErrorLeavesCommittedStateIntact(t *testing.T) {
	client := &scriptedClient{
		fn: func(call int, token *string) (*places.Page, error) {
			switch call {
			case 0:
				return pageWith("T1", rawRecord("A"), rawRecord("B"), rawRecord("C")), nil
			case 1:
				return nil, &places.UpstreamError{Status: "OVER_QUERY_LIMIT"}
			default:
				return pageWith("", rawRecord("D")), nil
			}
		},
	}
	s := newTestSession(client, models.SearchFilters{})
	ctx := context.Background()

	s.Refresh(ctx)
	s.Advance(ctx)
	s.Advance(ctx)
	assert.Equal(t, "C", currentID(t, s))

	// Next advance hits the failing page.
	s.Advance(ctx)
	snap := s.Snapshot()
	assert.Equal(t, StateFetchError, snapState(snap))
	assert.Equal(t, msgUpstream, snap.Message)
	assert.Equal(t, "C", currentID(t, s), "failed fetch must not move the cursor")
	assert.Equal(t, 3, snap.BufferLen, "failed fetch must not mutate the buffer")

	// The stored token survives the failure, so a retry succeeds.
	s.Advance(ctx)
	assert.Equal(t, StateReady, snapState(s.Snapshot()))
	assert.Equal(t, "D", currentID(t, s))
}

type deniedLocator struct{}

func (deniedLocator) RequestPermission(ctx context.Context) error {
	return location.ErrPermissionDenied
}

func (deniedLocator) CurrentCoordinate(ctx context.Context) (models.Coordinate, error) {
	return models.Coordinate{}, location.ErrPermissionDenied
}

func TestSessionLocatingFailed(t *testing.T) {
	client := &scriptedClient{
		fn: func(call int, token *string) (*places.Page, error) {
			return nil, errors.New("must not be called")
		},
	}
	s := NewSession("user-1", client, deniedLocator{}, models.SearchFilters{}, 20, 4000, zap.NewNop())
	ctx := context.Background()

	s.Refresh(ctx)
	snap := s.Snapshot()
	assert.Equal(t, StateLocatingFailed, snapState(snap))
	assert.Equal(t, msgPermission, snap.Message)
	assert.Zero(t, client.callCount())

	// Advance is invalid while locating has failed.
	s.Advance(ctx)
	assert.Equal(t, StateLocatingFailed, snapState(s.Snapshot()))
}

func TestSessionConcurrentAdvanceIsNoOp(t *testing.T) {
	client := &scriptedClient{
		blockOn: 1,
		entered: make(chan struct{}),
		release: make(chan struct{}),
		fn: func(call int, token *string) (*places.Page, error) {
			switch call {
			case 0:
				return pageWith("T1", rawRecord("A")), nil
			default:
				return pageWith("", rawRecord("B")), nil
			}
		},
	}
	s := newTestSession(client, models.SearchFilters{})
	ctx := context.Background()

	s.Refresh(ctx)
	assert.Equal(t, "A", currentID(t, s))

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Advance(ctx) // blocks inside the page fetch
	}()
	<-client.entered

	// Racing advance while the fetch is in flight: silently ignored.
	s.Advance(ctx)
	assert.Equal(t, 2, client.callCount(), "the racing advance must not issue a fetch")
	assert.Equal(t, "A", currentID(t, s), "the racing advance must not move the cursor")

	close(client.release)
	<-done
	assert.Equal(t, "B", currentID(t, s))
	assert.Equal(t, 2, client.callCount())
}

func TestSessionCloseDiscardsInFlightResponse(t *testing.T) {
	client := &scriptedClient{
		blockOn: 1,
		entered: make(chan struct{}),
		release: make(chan struct{}),
		fn: func(call int, token *string) (*places.Page, error) {
			switch call {
			case 0:
				return pageWith("T1", rawRecord("A")), nil
			default:
				return pageWith("", rawRecord("B")), nil
			}
		},
	}
	s := newTestSession(client, models.SearchFilters{})
	ctx := context.Background()

	s.Refresh(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Advance(ctx)
	}()
	<-client.entered
	s.Close()
	close(client.release)
	<-done

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.BufferLen, "in-flight response must be discarded after close")
	assert.Equal(t, 0, snap.Cursor)
	assert.Equal(t, StateReady, snapState(snap))
}

func TestSessionStagedFiltersApplyOnRefreshOnly(t *testing.T) {
	client := &scriptedClient{
		fn: func(call int, token *string) (*places.Page, error) {
			return pageWith("", ratedRecord("A", 5.0), ratedRecord("B", 3.0)), nil
		},
	}
	s := newTestSession(client, models.SearchFilters{})
	ctx := context.Background()

	s.Refresh(ctx)
	assert.Equal(t, "A", currentID(t, s))

	s.StageFilters(models.SearchFilters{MinRating: ratingPtr(4.5)})

	// Already-buffered cards keep flowing under the old filters.
	s.Advance(ctx)
	assert.Equal(t, "B", currentID(t, s))

	// The staged filters bite on refresh.
	s.Refresh(ctx)
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.BufferLen)
	assert.Equal(t, "A", currentID(t, s))
}

func TestSessionRefreshResetsSeenIDs(t *testing.T) {
	client := &scriptedClient{
		fn: func(call int, token *string) (*places.Page, error) {
			return pageWith("", rawRecord("A")), nil
		},
	}
	s := newTestSession(client, models.SearchFilters{})
	ctx := context.Background()

	s.Refresh(ctx)
	assert.Equal(t, "A", currentID(t, s))
	s.Refresh(ctx)
	assert.Equal(t, "A", currentID(t, s), "refresh clears the seen set")
}

func TestSessionLastActiveAdvances(t *testing.T) {
	client := &scriptedClient{
		fn: func(call int, token *string) (*places.Page, error) {
			return pageWith("", rawRecord("A"), rawRecord("B")), nil
		},
	}
	s := newTestSession(client, models.SearchFilters{})
	ctx := context.Background()

	s.Refresh(ctx)
	before := s.LastActive()
	time.Sleep(5 * time.Millisecond)
	s.Advance(ctx)
	assert.True(t, s.LastActive().After(before))
}

// snapState lets assertions compare against State constants without spelling
// strings in every test.
func snapState(snap models.FeedSnapshot) State {
	return State(snap.State)
}
