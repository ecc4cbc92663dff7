package handlers

import (
	"net/http"
	"strconv"

	"kupipodariday/internal/apperr"

	"github.com/gin-gonic/gin"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	ErrorCode apperr.Code `json:"errorCode"`
	Message   string      `json:"message"`
	Status    int         `json:"status"`
}

// respondError writes err as an errorResponse and aborts the chain.
// Business errors keep their code and message; anything else becomes a 500
// whose cause only goes to the log.
func (h *Handler) respondError(c *gin.Context, event string, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal(err, event)
	}
	status := appErr.Status()

	kv := []any{"request_id", requestID(c), "code", appErr.Code, "err", err}
	if uid, ok := currentUserID(c); ok {
		kv = append(kv, "user_id", uid)
	}
	if status >= http.StatusInternalServerError {
		h.log.Errorw(event, kv...)
	} else {
		h.log.Infow(event, kv...)
	}

	msg := appErr.Message
	if status >= http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, errorResponse{ErrorCode: appErr.Code, Message: msg, Status: status})
}

// abortWith writes a fixed status/code pair; used by middleware that runs before any service.
func abortWith(c *gin.Context, status int, code apperr.Code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{ErrorCode: code, Message: msg, Status: status})
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Infow("bad_request_body", "path", c.FullPath(), "request_id", requestID(c), "err", err)
		abortWith(c, http.StatusBadRequest, apperr.CodeValidationFailed, err.Error())
		return false
	}
	return true
}

// pathID parses the :id route parameter.
func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWith(c, http.StatusBadRequest, apperr.CodeValidationFailed, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
