package handlers

import (
	userRepo "platepick/database/repository/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups every route handler plus the repositories the
// middleware needs, so route registration takes a single argument.
type HandlerBundle struct {
	UserRepo userRepo.UserRepository

	// User endpoints.
	RegisterUserHandler        gin.HandlerFunc
	AuthenticateUserHandler    gin.HandlerFunc
	GetProfileHandler          gin.HandlerFunc
	UpdateProfileHandler       gin.HandlerFunc
	DeleteUserHandler          gin.HandlerFunc
	RevokeUserAuthTokenHandler gin.HandlerFunc

	// Feed endpoints.
	StartFeedSession  gin.HandlerFunc
	FeedCurrent       gin.HandlerFunc
	FeedAdvance       gin.HandlerFunc
	FeedRefresh       gin.HandlerFunc
	StageFeedFilters  gin.HandlerFunc

	// Favorites endpoints.
	AddFavorite    gin.HandlerFunc
	ListFavorites  gin.HandlerFunc
	RemoveFavorite gin.HandlerFunc
}
