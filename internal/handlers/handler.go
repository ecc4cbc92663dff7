package handlers

import (
	"context"
	"net/http"
	"time"

	_ "kupipodariday/docs"
	"kupipodariday/internal/logger"
	"kupipodariday/internal/metrics"
	"kupipodariday/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Pinger reports whether a backing store is reachable. *sqlx.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

const (
	defaultAuthRPS   = 5
	defaultAuthBurst = 10
	healthTimeout    = 2 * time.Second
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger

	db          Pinger
	authLimiter *ipRateLimiter
	origins     []string
}

// Option customizes a Handler.
type Option func(*Handler)

// WithHealthCheck makes /health ping db.
func WithHealthCheck(db Pinger) Option {
	return func(h *Handler) { h.db = db }
}

// WithAuthRateLimit bounds /signup and /signin per client IP.
func WithAuthRateLimit(rps float64, burst int) Option {
	return func(h *Handler) { h.authLimiter = newIPRateLimiter(rps, burst) }
}

// WithCORS sets the allowed origins; "*" allows any.
func WithCORS(origins []string) Option {
	return func(h *Handler) { h.origins = origins }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := &Handler{
		services:    services,
		log:         log.With("component", "http"),
		authLimiter: newIPRateLimiter(defaultAuthRPS, defaultAuthBurst),
		origins:     []string{"*"},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware, h.requestLogger, metrics.Middleware(), h.corsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)

	api := router.Group("/", h.userIdMiddleware)
	{
		h.registerUserRoutes(api)
		h.registerWishRoutes(api)
		h.registerOfferRoutes(api)
		h.registerWishlistRoutes(api)
	}

	return router
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	cfg.ExposeHeaders = []string{requestIDHeader}
	if len(h.origins) == 0 || (len(h.origins) == 1 && h.origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = h.origins
	}
	return cors.New(cfg)
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	limited := r.Group("/", h.authLimiter.middleware(h))
	{
		limited.POST("/signup", h.signUp)
		limited.POST("/signin", h.signIn)
	}
}

func (h *Handler) registerUserRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		users.GET("/me", h.getMe)
		users.PATCH("/me", h.updateMe)
		users.GET("/me/wishes", h.getMyWishes)
		users.POST("/find", h.findUsers)
		users.GET("/:username", h.getUser)
		users.GET("/:username/wishes", h.getUserWishes)
	}
}

func (h *Handler) registerWishRoutes(api *gin.RouterGroup) {
	wishes := api.Group("/wishes")
	{
		wishes.POST("", h.createWish)
		wishes.GET("/last", h.getRecentWishes)
		wishes.GET("/top", h.getPopularWishes)
		wishes.GET("/:id", h.getWish)
		wishes.PATCH("/:id", h.updateWish)
		wishes.DELETE("/:id", h.deleteWish)
		wishes.POST("/:id/copy", h.copyWish)
		wishes.GET("/:id/ws", h.wishProgressStream)
	}
}

func (h *Handler) registerOfferRoutes(api *gin.RouterGroup) {
	offers := api.Group("/offers")
	{
		offers.POST("", h.createOffer)
		offers.GET("", h.getOffers)
		offers.GET("/:id", h.getOffer)
	}
}

func (h *Handler) registerWishlistRoutes(api *gin.RouterGroup) {
	wishlists := api.Group("/wishlists")
	{
		wishlists.POST("", h.createWishlist)
		wishlists.GET("", h.getWishlists)
		wishlists.GET("/:id", h.getWishlist)
		wishlists.PATCH("/:id", h.updateWishlist)
		wishlists.DELETE("/:id", h.deleteWishlist)
	}
}

// health godoc
// @Summary      Liveness and database status
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.log.Errorw("health_db_ping_failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
}
