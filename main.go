// File: platepick/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"platepick/config"
	"platepick/cron"
	"platepick/database"
	favoritesRepoPkg "platepick/database/repository/favorites"
	userRepoPkg "platepick/database/repository/user"
	"platepick/handlers"
	"platepick/middleware"
	"platepick/routes"
	"platepick/services/feed"
	"platepick/services/places"
	"platepick/services/user"
	"platepick/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	favoritesRepo := favoritesRepoPkg.NewRedisFavoritesRepo(utils.GetCacheClient())

	// services.
	userService := &user.DefaultUserService{
		Repo: userRepo,
	}
	handlers.SetUserService(userService)

	placesClient := places.NewGoogleClient(config.AppConfig.GoogleAPIKey, logger)
	sessionTTL := time.Duration(config.AppConfig.FeedSessionTTLMin) * time.Minute
	snapshotCache := feed.NewRedisSnapshotCache(utils.GetCacheClient(), sessionTTL)
	feedService := feed.NewDefaultFeedService(
		placesClient,
		snapshotCache,
		config.AppConfig.FeedPageSize,
		config.AppConfig.FeedDefaultRadiusM,
		logger,
	)

	feedHandler := handlers.NewFeedHandler(feedService, logger)
	favoritesHandler := handlers.NewFavoritesHandler(favoritesRepo)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		UserRepo: userRepo,

		// User endpoints.
		RegisterUserHandler:        handlers.RegisterUserHandler,
		AuthenticateUserHandler:    handlers.AuthenticateUserHandler,
		GetProfileHandler:          handlers.GetProfileHandler,
		UpdateProfileHandler:       handlers.UpdateProfileHandler,
		DeleteUserHandler:          handlers.DeleteUserHandler,
		RevokeUserAuthTokenHandler: handlers.RevokeUserAuthTokenHandler,

		// Feed endpoints.
		StartFeedSession: feedHandler.StartSession,
		FeedCurrent:      feedHandler.Current,
		FeedAdvance:      feedHandler.Advance,
		FeedRefresh:      feedHandler.Refresh,
		StageFeedFilters: feedHandler.StageFilters,

		// Favorites endpoints.
		AddFavorite:    favoritesHandler.AddFavorite,
		ListFavorites:  favoritesHandler.ListFavorites,
		RemoveFavorite: favoritesHandler.RemoveFavorite,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Reap idle feed sessions in the background.
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	go cron.StartSessionReaper(reaperCtx, feedService, sessionTTL, 5*time.Minute)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
