package feed

import (
	"context"
	"sync"
	"time"

	"platepick/models"
	"platepick/services/location"
	"platepick/services/places"

	"go.uber.org/zap"
)

// DefaultFeedService holds one live session per user in memory and mirrors
// each snapshot into the cache. Sessions are owned exclusively by their user;
// there is no cross-session sharing of buffers or seen sets.
type DefaultFeedService struct {
	Places         places.Client
	Cache          SnapshotCache
	Logger         *zap.Logger
	PageSize       int
	DefaultRadiusM int

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewDefaultFeedService(client places.Client, cache SnapshotCache, pageSize, defaultRadiusM int, logger *zap.Logger) *DefaultFeedService {
	return &DefaultFeedService{
		Places:         client,
		Cache:          cache,
		Logger:         logger,
		PageSize:       pageSize,
		DefaultRadiusM: defaultRadiusM,
		sessions:       make(map[string]*Session),
	}
}

func (s *DefaultFeedService) StartSession(ctx context.Context, userID string, locator location.Provider, filters models.SearchFilters) (models.FeedSnapshot, error) {
	sess := NewSession(userID, s.Places, locator, filters, s.PageSize, s.DefaultRadiusM, s.Logger)

	s.mu.Lock()
	if old, ok := s.sessions[userID]; ok {
		old.Close()
	}
	s.sessions[userID] = sess
	s.mu.Unlock()

	sess.Refresh(ctx)
	return s.snapshot(ctx, userID, sess), nil
}

func (s *DefaultFeedService) Current(ctx context.Context, userID string) (models.FeedSnapshot, error) {
	sess := s.session(userID)
	if sess == nil {
		if cached, err := s.Cache.Get(ctx, userID); err == nil && cached != nil {
			return *cached, nil
		}
		return models.FeedSnapshot{}, ErrNoSession
	}
	return sess.Snapshot(), nil
}

func (s *DefaultFeedService) Advance(ctx context.Context, userID string) (models.FeedSnapshot, error) {
	sess := s.session(userID)
	if sess == nil {
		return models.FeedSnapshot{}, ErrNoSession
	}
	sess.Advance(ctx)
	return s.snapshot(ctx, userID, sess), nil
}

func (s *DefaultFeedService) Refresh(ctx context.Context, userID string) (models.FeedSnapshot, error) {
	sess := s.session(userID)
	if sess == nil {
		return models.FeedSnapshot{}, ErrNoSession
	}
	sess.Refresh(ctx)
	return s.snapshot(ctx, userID, sess), nil
}

func (s *DefaultFeedService) StageFilters(ctx context.Context, userID string, filters models.SearchFilters) error {
	sess := s.session(userID)
	if sess == nil {
		return ErrNoSession
	}
	sess.StageFilters(filters)
	return nil
}

func (s *DefaultFeedService) CloseSession(ctx context.Context, userID string) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
	}
	s.mu.Unlock()
	if ok {
		sess.Close()
		if err := s.Cache.Delete(ctx, userID); err != nil {
			s.Logger.Warn("feed: failed to drop cached snapshot",
				zap.String("userID", userID), zap.Error(err))
		}
	}
}

func (s *DefaultFeedService) ReapIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	var stale []*Session
	for userID, sess := range s.sessions {
		if sess.LastActive().Before(cutoff) {
			stale = append(stale, sess)
			delete(s.sessions, userID)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
	}
	if len(stale) > 0 {
		s.Logger.Info("feed: reaped idle sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

func (s *DefaultFeedService) session(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID]
}

// snapshot projects the session and mirrors it into the cache; cache write
// failures are logged, never surfaced.
func (s *DefaultFeedService) snapshot(ctx context.Context, userID string, sess *Session) models.FeedSnapshot {
	snap := sess.Snapshot()
	if err := s.Cache.Set(ctx, userID, snap); err != nil {
		s.Logger.Warn("feed: failed to cache snapshot",
			zap.String("userID", userID), zap.Error(err))
	}
	return snap
}
