package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPodolsky/YelpCamp/internal/config"
	"github.com/DanielPodolsky/YelpCamp/internal/geocode"
	"github.com/DanielPodolsky/YelpCamp/internal/media"
	"github.com/DanielPodolsky/YelpCamp/internal/observability"
	miniorepo "github.com/DanielPodolsky/YelpCamp/internal/repository/minio"
	"github.com/DanielPodolsky/YelpCamp/internal/repository/postgres"
	"github.com/DanielPodolsky/YelpCamp/internal/service"
	"github.com/DanielPodolsky/YelpCamp/internal/transport/web"
	"github.com/DanielPodolsky/YelpCamp/internal/util"
)

func main() {
	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	minioClient, err := miniorepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage connection failed")
	}
	storage := miniorepo.NewStorage(minioClient, cfg.MinIOPublicURL, cfg.MinIOUseSSL)

	geocoderClient, err := geocode.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderAPIKey, cfg.GeocoderRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("geocoder setup failed")
	}
	var geocoder geocode.Geocoder = geocoderClient
	if cfg.RedisAddr != "" {
		geocoder = geocode.NewCachedGeocoder(geocoderClient, cfg.RedisAddr, cfg.RedisPassword, cfg.GeocodeCacheTTL, log)
		log.Info().Str("addr", cfg.RedisAddr).Msg("geocode cache enabled")
	}

	tokens := util.NewSessionTokenManager(cfg.SessionSecret, cfg.SessionTTL)

	campgroundRepo := postgres.NewCampgroundRepo(db)
	reviewRepo := postgres.NewReviewRepo(db)
	userRepo := postgres.NewUserRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)

	authService := service.NewAuthService(userRepo, sessionRepo, tokens, log)
	campgroundService := service.NewCampgroundService(campgroundRepo, storage, geocoder, log, service.CampgroundServiceConfig{
		Bucket:         cfg.MinIOBucket,
		PageSize:       cfg.PageSize,
		MaxImages:      cfg.ImageMaxCount,
		MaxImageBytes:  cfg.ImageMaxBytes,
		ImageProcessor: media.NewFFMPEGProcessor("ffmpeg", media.DefaultMaxDimension),
	})
	reviewService := service.NewReviewService(reviewRepo, campgroundRepo)

	registry := observability.InitRegistry()

	router, err := web.NewRouter(web.RouterConfig{
		Auth:          authService,
		Campgrounds:   campgroundService,
		Reviews:       reviewService,
		Log:           log,
		Metrics:       registry,
		SecureCookies: cfg.Env == "production",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := router.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("server stopped")
}
