// Package api assembles the HTTP router.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aimd54/hangul-path/internal/api/handlers"
	"github.com/aimd54/hangul-path/internal/middleware"
	"github.com/aimd54/hangul-path/pkg/logger"
)

// healthCheckTimeout bounds each dependency check of /health.
const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	MetricsPath    string // empty disables /metrics
	Auth           *middleware.Auth
	ChatLimiter    *middleware.RateLimiter
	HealthChecks   map[string]HealthCheck
}

// NewRouter wires middleware, probes and the versioned API.
func NewRouter(h *handlers.Handler, opts Options, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	router.GET("/health", healthHandler(opts.HealthChecks))
	if opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.Use(opts.Auth.RequireAuth())
	{
		v1.GET("/profile", h.GetProfile)
		v1.PATCH("/profile", h.UpdateProfile)
		v1.POST("/profile/avatar", h.UploadAvatar)

		v1.GET("/streak", h.GetStreak)
		v1.POST("/streak/activity", h.RecordActivity)

		v1.GET("/achievements", h.GetAchievements)
		v1.GET("/achievements/current", h.GetCurrentAchievement)
		v1.POST("/achievements/current/clear", h.ClearCurrentAchievement)
		v1.POST("/achievements/:id/unlock", h.UnlockAchievement)

		v1.GET("/leaderboard", h.GetLeaderboard)
		v1.GET("/stats", h.GetStats)

		v1.GET("/settings", h.GetSettings)
		v1.PUT("/settings", h.UpdateSettings)

		chat := []gin.HandlerFunc{h.Chat}
		if opts.ChatLimiter != nil {
			chat = append([]gin.HandlerFunc{opts.ChatLimiter.Middleware(h.ChatRateLimited)}, chat...)
		}
		v1.POST("/chat", chat...)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Accept-Language", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		results := make(map[string]string, len(checks))

		for name, check := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			err := check(ctx)
			cancel()

			if err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":    state,
			"checks":    results,
			"timestamp": time.Now().UTC(),
		})
	}
}
