package handlers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"kupipodariday/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	userIDKey       = "userId"
	requestIDKey    = "requestId"
	requestIDHeader = "X-Request-ID"
)

func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		abortWith(c, http.StatusUnauthorized, apperr.CodeUnauthorized, "missing Authorization header")
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		abortWith(c, http.StatusUnauthorized, apperr.CodeUnauthorized, "invalid Authorization header format")
		return
	}

	userId, err := h.services.ParseToken(parts[1])
	if err != nil {
		abortWith(c, http.StatusUnauthorized, apperr.CodeUnauthorized, "invalid or expired token")
		return
	}

	// store in Gin context
	c.Set(userIDKey, userId)
	c.Next()
}

// currentUserID returns the caller set by userIdMiddleware.
func currentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// mustUserID is currentUserID for routes behind userIdMiddleware.
func mustUserID(c *gin.Context) int64 {
	id, _ := currentUserID(c)
	return id
}

// requestIDMiddleware reuses the client's X-Request-ID or assigns a new one.
func requestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// requestLogger logs one line per finished request.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"route", route,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
		"request_id", requestID(c),
	)
}

// ipRateLimiter keeps one token bucket per client IP.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	maxKeys  int
}

func newIPRateLimiter(rps float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		maxKeys:  10_000,
	}
}

func (rl *ipRateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		// crude bound on memory; every client starts over with a full bucket
		if len(rl.limiters) >= rl.maxKeys {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// middleware rejects requests above the per-IP budget with 429.
func (rl *ipRateLimiter) middleware(h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			h.respondError(c, "rate_limit_exceeded", apperr.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
