package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"kupipodariday/internal/apperr"
	"kupipodariday/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
)

// Message types pushed on the progress stream.
const (
	wsTypeProgress = "progress"
	wsTypeGone     = "gone"
	wsTypeError    = "error"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// errStreamEnded stops the writer loop after a final message was sent.
var errStreamEnded = errors.New("wish deleted")

// wishProgressStream godoc
// @Summary      Live funding progress of a wish (websocket)
// @Description  Pushes {"type":"progress","data":{...}} immediately and every interval; sends {"type":"gone"} and closes once the wish is deleted.
// @Tags         wishes
// @Security     BearerAuth
// @Param        id          path  int    true  "wish id"
// @Param        interval    query string false "push interval, e.g. 2s (max 10s)"
// @Param        interval_ms query int    false "push interval in milliseconds"
// @Failure      404 {object} errorResponse
// @Router       /wishes/{id}/ws [get]
func (h *Handler) wishProgressStream(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	interval := h.parseInterval(c)

	// resolve before upgrading so a missing wish is a plain 404
	if _, err := h.services.Progress(c.Request.Context(), id); err != nil {
		h.respondError(c, "ws_progress_lookup_failed", err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "wish_id", id, "err", err)
		return
	}
	metrics.StreamOpened()
	defer func() {
		metrics.StreamClosed()
		_ = conn.Close()
	}()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	ctx := c.Request.Context()
	if err := h.sendProgress(ctx, conn, id); err != nil {
		h.logStreamEnd("ws_write_failed_initial", id, err)
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logStreamEnd("ws_ping_failed", id, err)
				return
			}
		case <-ticker.C:
			if err := h.sendProgress(ctx, conn, id); err != nil {
				h.logStreamEnd("ws_write_failed", id, err)
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Debugw("ws_read_closed", "err", err)
			return
		}
	}
}

// sendProgress writes the current funding snapshot. A deleted wish gets a final
// "gone" frame, a close frame, and errStreamEnded.
func (h *Handler) sendProgress(ctx context.Context, conn *websocket.Conn, wishID int64) error {
	p, err := h.services.Progress(ctx, wishID)
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	switch {
	case err == nil:
		return conn.WriteJSON(wsEnvelope{Type: wsTypeProgress, Data: p})
	case apperr.IsKind(err, apperr.KindNotFound):
		_ = conn.WriteJSON(wsEnvelope{Type: wsTypeGone})
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "wish deleted"))
		return errStreamEnded
	default:
		h.log.Errorw("ws_progress_failed", "wish_id", wishID, "err", err)
		_ = conn.WriteJSON(wsEnvelope{Type: wsTypeError, Error: "progress unavailable"})
		return err
	}
}

func (h *Handler) logStreamEnd(event string, wishID int64, err error) {
	if errors.Is(err, errStreamEnded) {
		h.log.Infow("ws_wish_gone", "wish_id", wishID)
		return
	}
	h.log.Infow(event, "wish_id", wishID, "err", err)
}
