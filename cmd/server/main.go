// Command server runs the learning backend HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/hangul-path/internal/api"
	"github.com/aimd54/hangul-path/internal/api/handlers"
	"github.com/aimd54/hangul-path/internal/cache"
	"github.com/aimd54/hangul-path/internal/config"
	"github.com/aimd54/hangul-path/internal/middleware"
	"github.com/aimd54/hangul-path/internal/repository"
	"github.com/aimd54/hangul-path/internal/service/achievements"
	"github.com/aimd54/hangul-path/internal/service/chat"
	"github.com/aimd54/hangul-path/internal/service/leaderboard"
	"github.com/aimd54/hangul-path/internal/service/profile"
	"github.com/aimd54/hangul-path/internal/service/settings"
	"github.com/aimd54/hangul-path/internal/service/streak"
	"github.com/aimd54/hangul-path/internal/storage"
	"github.com/aimd54/hangul-path/pkg/logger"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 60 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	healthChecks := map[string]api.HealthCheck{
		"database": func(context.Context) error { return db.Health() },
	}

	var profiles repository.ProfileStore = repository.NewProfileRepository(db)
	if cfg.Database.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, &cfg.Database.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()

		profiles = repository.NewCachedProfileRepository(profiles, redisCache, cfg.Database.Redis.ProfileCacheTTL(), log.Named("profile_cache"))
		healthChecks["cache"] = redisCache.Health
	}

	var images storage.ImageStorage = storage.Disabled{}
	if cfg.Storage.CloudinaryURL != "" {
		cld, err := storage.NewCloudinaryStorage(cfg.Storage.CloudinaryURL)
		if err != nil {
			return fmt.Errorf("failed to initialize cloudinary storage: %w", err)
		}
		images = cld
	} else {
		log.Warn().Msg("Cloudinary is not configured, avatar uploads are disabled")
	}

	var provider chat.Provider = chat.Unconfigured{}
	if cfg.Chat.APIKey != "" {
		gemini, err := chat.NewGeminiProvider(ctx, cfg.Chat.APIKey)
		if err != nil {
			return fmt.Errorf("failed to initialize chat provider: %w", err)
		}
		provider = gemini
	} else {
		log.Warn().Msg("Chat API key is not configured, chat is disabled")
	}
	defer provider.Close()

	loc, err := cfg.Streak.GetLocation()
	if err != nil {
		return err
	}

	achievementRepo := repository.NewAchievementRepository(db)
	registry := achievements.NewRegistry(cfg.Achievements.Delay())
	defer registry.Close()

	achievementSvc := achievements.NewService(achievementRepo, registry, log.Named("achievements"))
	streakSvc := streak.NewService(profiles, achievementSvc, loc, log.Named("streak"))
	profileSvc := profile.NewService(profiles, images, achievementSvc, cfg.Storage.AvatarFolder, log.Named("profile"))
	leaderboardSvc := leaderboard.NewService(achievementRepo, profiles, log.Named("leaderboard"))
	settingsSvc := settings.NewService(repository.NewSettingsRepository(db), log.Named("settings"))
	chatSvc := chat.NewService(provider, achievementSvc, time.Duration(cfg.Chat.Timeout)*time.Second, log.Named("chat"))

	h := handlers.NewHandler(handlers.Services{
		Profiles:     profileSvc,
		Streaks:      streakSvc,
		Achievements: achievementSvc,
		Leaderboard:  leaderboardSvc,
		Settings:     settingsSvc,
		Chat:         chatSvc,
	}, log.Named("api"))

	opts := api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Auth:           middleware.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		ChatLimiter:    middleware.NewRateLimiter(cfg.Chat.RequestsPerMinute),
		HealthChecks:   healthChecks,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(h, opts, log),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("environment", cfg.Server.Environment).
			Str("timezone", loc.String()).
			Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
