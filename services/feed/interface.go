package feed

import (
	"context"
	"time"

	"platepick/models"
	"platepick/services/location"
)

// Service manages one feed session per user and exposes the session
// operations the HTTP layer needs.
type Service interface {
	// StartSession creates (or replaces) the user's session, locates it via
	// the given provider, loads the first page cycle, and returns a snapshot.
	StartSession(ctx context.Context, userID string, locator location.Provider, filters models.SearchFilters) (models.FeedSnapshot, error)

	// Current returns the user's snapshot; for users with no live session it
	// falls back to the cached snapshot before giving up with ErrNoSession.
	Current(ctx context.Context, userID string) (models.FeedSnapshot, error)

	// Advance moves the feed forward one card; a call racing an in-flight
	// fetch returns the unchanged snapshot.
	Advance(ctx context.Context, userID string) (models.FeedSnapshot, error)

	// Refresh resets the session, applying any staged filters.
	Refresh(ctx context.Context, userID string) (models.FeedSnapshot, error)

	// StageFilters records filters to apply on the next refresh.
	StageFilters(ctx context.Context, userID string, filters models.SearchFilters) error

	// CloseSession tears down the user's session, if any.
	CloseSession(ctx context.Context, userID string)

	// ReapIdle closes sessions idle for longer than maxIdle and reports how
	// many were evicted.
	ReapIdle(maxIdle time.Duration) int
}
