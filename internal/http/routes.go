package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ktz03/tab-game/internal/http/handlers"
	"github.com/ktz03/tab-game/internal/http/middleware"
	"github.com/ktz03/tab-game/internal/service"
	"github.com/ktz03/tab-game/internal/ws"
)

// Options carries what the router needs besides the services.
type Options struct {
	Version       string
	StoreBackend  string
	AllowedOrigin string
	RateLimit     int
	RateWindow    time.Duration
}

func RegisterRoutes(r *gin.Engine, accounts *service.AccountService, games *service.GameService, store handlers.Pinger, opts Options) {
	h := handlers.NewHandler(accounts, games)
	healthHandler := handlers.NewHealthHandler(store, opts.StoreBackend, games.Hub(), opts.Version)

	if opts.RateLimit <= 0 {
		opts.RateLimit = 120
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	limit := middleware.SimpleRateLimit(opts.RateLimit, opts.RateWindow)
	if middleware.RedisEnabled() {
		limit = middleware.RedisRateLimit(opts.RateLimit, opts.RateWindow)
	}

	r.Use(middleware.RequestLogger())

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Bare paths, as the browser client calls them
	root := r.Group("/")
	root.Use(limit)
	registerAPIRoutes(root, h)

	v1 := r.Group("/api/v1")
	v1.Use(limit)
	registerAPIRoutes(v1, h)

	// Websocket push with in-band commands
	r.GET("/ws", limit, ws.HandleWS(games.Hub(), service.ParseJWT, games, opts.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler) {
	api.POST("/register", h.Register)

	// Session commands
	api.POST("/join", h.Join)
	api.POST("/leave", h.Leave)
	api.POST("/roll", h.Roll)
	api.POST("/pass", h.Pass)
	api.POST("/notify", h.Notify)

	// Push stream
	api.GET("/update", h.Update)

	// Standings and history
	api.POST("/ranking", h.Ranking)
	api.GET("/ranking", h.Ranking)
	api.GET("/history", h.History)
}
