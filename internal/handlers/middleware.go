package handlers

import (
	"errors"
	"net/http"
	"time"

	"task_manager/internal/models"
	"task_manager/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserID  = "userId"
	ctxSession = "session"

	requestIDHeader = "X-Request-ID"
)

// sessionMiddleware lets requests with a live session through and sends
// everyone else to the login page.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	token, _ := c.Cookie(h.opts.CookieName)

	s, err := h.sessions.Resolve(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			h.logError("session_resolve_failed", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Redirect(http.StatusFound, pageLogin)
		c.Abort()
		return
	}
	if s.UserID <= 0 {
		c.Redirect(http.StatusFound, pageLogin)
		c.Abort()
		return
	}

	c.Set(ctxUserID, s.UserID)
	c.Set(ctxSession, s)
	c.Next()
}

func currentSession(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return models.Session{}, false
	}
	s, ok := v.(models.Session)
	return s, ok
}

// requestLogger tags every request with an id and logs its outcome.
func (h *Handler) requestLogger(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(requestIDHeader, id)

	start := time.Now()
	c.Next()

	if h.log == nil {
		return
	}
	h.log.Infow("http_request",
		"request_id", id,
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"latency", time.Since(start),
	)
}

func (h *Handler) logError(key string, err error, kv ...interface{}) {
	if h.log == nil || err == nil {
		return
	}
	fields := append([]interface{}{"err", err}, kv...)
	h.log.Errorw(key, fields...)
}
