package main

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/talentnet/backend/internal/config"
	"github.com/talentnet/backend/internal/handlers"
	"github.com/talentnet/backend/internal/middleware"
	"github.com/talentnet/backend/internal/telemetry"
	"github.com/talentnet/backend/internal/websocket"
)

const healthCheckTimeout = 2 * time.Second

// healthCheck returns nil when a dependency is reachable
type healthCheck func(ctx context.Context) error

type routerDeps struct {
	config   *config.Config
	handlers *handlers.Handlers
	ws       *websocket.Handler
	tokens   middleware.TokenValidator
	health   map[string]healthCheck
}

// allowedOrigins turns FRONTEND_URL into the host pattern the WebSocket
// upgrader checks against the Origin header
func allowedOrigins(frontendURL string) []string {
	u, err := url.Parse(frontendURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}

func setupRouter(deps routerDeps) *gin.Engine {
	cfg := deps.config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	if cfg.Telemetry.Enabled {
		r.Use(middleware.TracingMiddleware(telemetry.ServiceName))
	}
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	// upgrades need the raw connection, so the socket endpoint is never compressed
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/ws", "/metrics"})))

	r.GET("/health", healthHandler(deps.health))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(deps.tokens)
	h := deps.handlers

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", middleware.RateLimitAuth(), h.Register)
			authGroup.POST("/login", middleware.RateLimitAuth(), h.Login)
			authGroup.GET("/me", requireAuth, h.Me)
			authGroup.PUT("/change-password", requireAuth, h.ChangePassword)
			authGroup.PUT("/change-email", requireAuth, h.ChangeEmail)
			authGroup.DELETE("/delete-account", requireAuth, h.DeleteAccount)
		}

		users := api.Group("/users")
		{
			// search and upload must be registered before /:id is matched
			users.GET("/search", requireAuth, h.SearchUsers)
			users.PUT("/me", requireAuth, h.UpdateMyProfile)
			users.POST("/upload/avatar", requireAuth, h.UploadAvatar)
			users.POST("/upload/resume", requireAuth, h.UploadResume)
			users.POST("/upload/cover", requireAuth, h.UploadCover)
			users.GET("/:id", h.GetUserProfile)
			users.POST("/:id/follow", requireAuth, h.FollowUser)
			users.DELETE("/:id/follow", requireAuth, h.UnfollowUser)
			users.GET("/:id/followers", h.GetFollowers)
			users.GET("/:id/following", h.GetFollowing)
			users.GET("/:id/posts", requireAuth, h.ListUserPosts)
		}

		posts := api.Group("/posts")
		{
			posts.Use(requireAuth)
			posts.GET("", h.ListPosts)
			posts.POST("", h.CreatePost)
			posts.GET("/:id", h.GetPost)
			posts.PUT("/:id", h.UpdatePost)
			posts.DELETE("/:id", h.DeletePost)
			posts.PUT("/:id/like", h.ToggleLike)
			posts.POST("/:id/comment", h.AddComment)
			posts.DELETE("/:id/comment/:commentId", h.DeleteComment)
			posts.POST("/:id/react", h.ReactToPost)
		}

		// WebSocket connection endpoint - auth via ?token=... or Authorization header
		api.GET("/ws", deps.ws.HandleWebSocket)

		presenceGroup := api.Group("/presence")
		{
			presenceGroup.Use(requireAuth)
			presenceGroup.GET("/online", deps.ws.HandleOnlineUsers)
			presenceGroup.POST("/status", deps.ws.HandleOnlineStatus)
			presenceGroup.GET("/metrics", deps.ws.HandleMetrics)
		}
	}

	return r
}

func healthHandler(checks map[string]healthCheck) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(gin.H, len(names))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{
			"status":    state,
			"service":   telemetry.ServiceName,
			"checks":    results,
			"timestamp": time.Now().UTC(),
		})
	}
}
