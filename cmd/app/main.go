package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/ktz03/tab-game/internal/config"
	"github.com/ktz03/tab-game/internal/game"
	httpServer "github.com/ktz03/tab-game/internal/http"
	"github.com/ktz03/tab-game/internal/http/middleware"
	"github.com/ktz03/tab-game/internal/logger"
	"github.com/ktz03/tab-game/internal/repository"
	"github.com/ktz03/tab-game/internal/service"
	"github.com/ktz03/tab-game/internal/ws"
)

const version = "1.0.0"

func main() {
	logger.Init("info", false)
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, repository.Options{
		Backend:       cfg.StoreBackend,
		DataDir:       cfg.DataDir,
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Fatal("open store failed", "store", cfg.StoreBackend, "error", err)
	}
	defer store.Close()

	accounts := service.NewAccountService(store, cfg.BcryptCost)
	ranking := service.NewRankingLedger(store)

	// load credentials and standings side by side
	load, loadCtx := errgroup.WithContext(ctx)
	load.Go(func() error { return accounts.Load(loadCtx) })
	load.Go(func() error { return ranking.Load(loadCtx) })
	if err := load.Wait(); err != nil {
		logger.Fatal("load state failed", "store", cfg.StoreBackend, "error", err)
	}

	rng := game.NewSource()
	hub := ws.NewHub(ws.NewBroadcaster(cfg.SubscriberBuffer), rng)
	hub.WaitTimeout = cfg.WaitTimeout
	games := service.NewGameService(ctx, hub, ranking, store, rng, cfg.BotDelay)

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for browser clients on another origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, accounts, games, store, httpServer.Options{
		Version:       version,
		StoreBackend:  cfg.StoreBackend,
		AllowedOrigin: cfg.AllowedOrigin,
		RateLimit:     cfg.APIRateLimit,
		RateWindow:    cfg.APIRateWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", "port", cfg.AppPort, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		hub.StartCleanup(gctx, cfg.CleanupInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
	logger.Info("server exited")
}
