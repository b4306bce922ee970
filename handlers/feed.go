package handlers

import (
	"errors"
	"net/http"

	"platepick/middleware"
	"platepick/models"
	"platepick/services/feed"
	"platepick/services/location"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FeedHandler serves the swipe feed endpoints.
type FeedHandler struct {
	Svc    feed.Service
	Logger *zap.Logger
}

func NewFeedHandler(svc feed.Service, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{Svc: svc, Logger: logger}
}

// startSessionRequest optionally carries the device's own position; without
// one the server falls back to IP geolocation.
type startSessionRequest struct {
	Coordinate *models.Coordinate   `json:"coordinate,omitempty"`
	Filters    models.SearchFilters `json:"filters"`
}

// StartSession creates or replaces the caller's feed session.
func (h *FeedHandler) StartSession(c *gin.Context) {
	logger := getLogger(c)
	userID := c.GetString("userID")

	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid feed session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	var locator location.Provider
	if req.Coordinate != nil {
		locator = location.Fixed{Coordinate: *req.Coordinate}
	} else {
		locator = location.NewIPProvider(middleware.GetClientIP(c), h.Logger)
	}

	snap, err := h.Svc.StartSession(c.Request.Context(), userID, locator, req.Filters)
	if err != nil {
		logger.Error("Failed to start feed session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start feed"})
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// Current returns the caller's feed snapshot.
func (h *FeedHandler) Current(c *gin.Context) {
	userID := c.GetString("userID")
	snap, err := h.Svc.Current(c.Request.Context(), userID)
	if err != nil {
		h.respondFeedError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Advance moves the feed forward one card.
func (h *FeedHandler) Advance(c *gin.Context) {
	userID := c.GetString("userID")
	snap, err := h.Svc.Advance(c.Request.Context(), userID)
	if err != nil {
		h.respondFeedError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Refresh resets the caller's session, applying staged filters.
func (h *FeedHandler) Refresh(c *gin.Context) {
	userID := c.GetString("userID")
	snap, err := h.Svc.Refresh(c.Request.Context(), userID)
	if err != nil {
		h.respondFeedError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// StageFilters stores filters to apply on the next refresh.
func (h *FeedHandler) StageFilters(c *gin.Context) {
	logger := getLogger(c)
	userID := c.GetString("userID")

	var filters models.SearchFilters
	if err := c.ShouldBindJSON(&filters); err != nil {
		logger.Error("Invalid filters", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Svc.StageFilters(c.Request.Context(), userID, filters); err != nil {
		h.respondFeedError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staged": filters})
}

func (h *FeedHandler) respondFeedError(c *gin.Context, err error) {
	if errors.Is(err, feed.ErrNoSession) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active feed session; start one first"})
		return
	}
	getLogger(c).Error("Feed operation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Feed unavailable, please try again"})
}
