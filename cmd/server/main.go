package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/blogcafe/blogcafe/blog/application"
	"github.com/blogcafe/blogcafe/blog/persistence"
	"github.com/blogcafe/blogcafe/internal/middleware"
	"github.com/blogcafe/blogcafe/internal/rest"
	"github.com/blogcafe/blogcafe/internal/telemetry"
	"github.com/blogcafe/blogcafe/shared/config"
	"github.com/blogcafe/blogcafe/shared/db/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "blogcafe.toml", "Path to TOML configuration file")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Warn().Err(err).Msg("Failed to load .env")
		}
	}

	log.Logger = log.Output(zerolog.NewConsoleWriter())
	if *verbose {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	telemetry.InitializeTelemetry("blogcafe", cfg.Telemetry.Enabled)

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.Storage.Path})
	if err := database.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	postRepo := persistence.NewPostRepository(database.DB())
	commentRepo := persistence.NewCommentRepository(database.DB())
	favoriteRepo := persistence.NewFavoriteRepository(database.DB())

	postService := application.NewPostService(postRepo)
	commentService := application.NewCommentService(commentRepo, postRepo)
	favoriteService := application.NewFavoriteService(favoriteRepo, postRepo)

	sweeper := application.NewSweeper(
		postRepo,
		time.Duration(cfg.Scheduler.IntervalSeconds)*time.Second,
		cfg.Scheduler.BatchSize,
	)
	sweeper.Start()
	defer sweeper.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))

	rest.NewApi(router, cfg,
		rest.NewPostsHandler(postService),
		rest.NewCommentsHandler(commentService),
		rest.NewFavoritesHandler(favoriteService),
		rest.NewAdminHandler(postService, sweeper),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Info().Int("port", cfg.HTTP.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSeconds)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}
