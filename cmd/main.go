package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kupipodariday/internal/cache"
	"kupipodariday/internal/config"
	"kupipodariday/internal/handlers"
	"kupipodariday/internal/logger"
	"kupipodariday/internal/repository"
	"kupipodariday/internal/repository/db"
	"kupipodariday/internal/server"
	"kupipodariday/internal/service"

	"github.com/jmoiron/sqlx"
)

const shutdownTimeout = 10 * time.Second

// @title           KupiPodariDay API
// @version         1.0
// @description     Gift wishlists with pooled contributions.
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Bearer <access_token>"
func main() {
	// load configs/config.yml, .env and KPD_* overrides
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel, logger.FormatConsole).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	// open DB and apply migrations
	conn, err := db.InitDB(cfg.DB)
	if err != nil {
		log.Fatalw("failed to init database", "driver", cfg.DB.Driver, "err", err)
	}
	defer closeDB(conn, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feeds, closeFeeds := openFeedCache(ctx, cfg, log)
	defer closeFeeds()

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Deps{
		Auth:  cfg.Auth,
		Feeds: feeds,
		Log:   log,
	})
	apiHandler := handlers.NewHandler(services, log,
		handlers.WithHealthCheck(conn),
		handlers.WithAuthRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		handlers.WithCORS(cfg.CORS.AllowedOrigins),
	)

	// keep cached feeds warm
	if cfg.CacheEnabled() {
		go services.FeedWarmer.Run(ctx, cfg.Feed.RefreshInterval)
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// openFeedCache connects to Redis when configured. Without it the feeds are
// read straight from the database. The returned func releases the client.
func openFeedCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.FeedCache, func()) {
	noop := func() {}
	if !cfg.CacheEnabled() {
		log.Infow("redis.addr not set; feed cache disabled")
		return cache.NopFeedCache{}, noop
	}
	client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Errorw("redis unavailable; feed cache disabled", "addr", cfg.Redis.Addr, "err", err)
		return cache.NopFeedCache{}, noop
	}
	log.Infow("feed cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Feed.CacheTTL)
	return cache.NewRedisFeedCache(client, cfg.Feed.CacheTTL), func() {
		if err := client.Close(); err != nil {
			log.Errorw("failed to close redis client", "err", err)
		}
	}
}

func closeDB(conn *sqlx.DB, log *logger.Logger) {
	if err := conn.Close(); err != nil {
		log.Errorw("failed to close database", "err", err)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server starting", "addr", server.Addr(port))
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
