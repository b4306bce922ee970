package handlers

import (
	"net/http"

	favoritesRepo "platepick/database/repository/favorites"
	"platepick/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FavoritesHandler serves the saved-restaurants endpoints.
type FavoritesHandler struct {
	Repo favoritesRepo.FavoritesRepository
}

func NewFavoritesHandler(repo favoritesRepo.FavoritesRepository) *FavoritesHandler {
	return &FavoritesHandler{Repo: repo}
}

// AddFavorite saves the full card the client swiped right on.
func (h *FavoritesHandler) AddFavorite(c *gin.Context) {
	logger := getLogger(c)
	userID := c.GetString("userID")

	var rest models.Restaurant
	if err := c.ShouldBindJSON(&rest); err != nil {
		logger.Error("Invalid favorite payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if rest.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Restaurant id is required"})
		return
	}

	if err := h.Repo.Add(c.Request.Context(), userID, rest); err != nil {
		logger.Error("Failed to save favorite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save favorite"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "saved", "id": rest.ID})
}

// ListFavorites returns all saved cards.
func (h *FavoritesHandler) ListFavorites(c *gin.Context) {
	logger := getLogger(c)
	userID := c.GetString("userID")

	favorites, err := h.Repo.List(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to load favorites", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load favorites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// RemoveFavorite deletes one saved card.
func (h *FavoritesHandler) RemoveFavorite(c *gin.Context) {
	logger := getLogger(c)
	userID := c.GetString("userID")
	restaurantID := c.Param("id")

	if err := h.Repo.Remove(c.Request.Context(), userID, restaurantID); err != nil {
		logger.Error("Failed to remove favorite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed", "id": restaurantID})
}
