package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task_manager/internal/models"
	"task_manager/internal/service"
	"task_manager/internal/session"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the middleware + a protected endpoint
func newMiddlewareOnlyRouter(sessions *session.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(&service.Service{}, sessions, Options{}, nil)
	r.GET("/secure", h.sessionMiddleware, func(c *gin.Context) {
		s, _ := currentSession(c)
		c.JSON(http.StatusOK, gin.H{"ok": true, "userId": c.GetInt(ctxUserID), "username": s.Username})
	})
	return r
}

func TestSessionMiddleware_RedirectsWithoutSession(t *testing.T) {
	sessions := newTestSessions()
	r := newMiddlewareOnlyRouter(sessions)

	foreign := session.NewManager(session.NewMemoryStore(), session.Options{Secret: "other"})
	forged := sessionCookie(t, foreign, 1, "alice")

	destroyed := sessionCookie(t, sessions, 2, "bob")
	if err := sessions.Destroy(context.Background(), destroyed.Value); err != nil {
		t.Fatalf("destroy: %v", err)
	}

	cases := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"garbage cookie", &http.Cookie{Name: defaultCookieName, Value: "garbage"}},
		{"foreign signature", forged},
		{"destroyed session", destroyed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusFound {
				t.Fatalf("status: got %d, want 302 (body=%s)", w.Code, w.Body.String())
			}
			if loc := w.Header().Get("Location"); loc != "/login.html" {
				t.Fatalf("Location: got %q", loc)
			}
		})
	}
}

func TestSessionMiddleware_SuccessSetsUserIDAndProceeds(t *testing.T) {
	sessions := newTestSessions()
	r := newMiddlewareOnlyRouter(sessions)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.AddCookie(sessionCookie(t, sessions, 123, "carol"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		OK       bool   `json:"ok"`
		UserID   int    `json:"userId"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.OK || resp.UserID != 123 || resp.Username != "carol" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

type brokenStore struct{ *session.MemoryStore }

func (brokenStore) Load(context.Context, string) (*models.Session, error) {
	return nil, errors.New("db down")
}

func TestSessionMiddleware_StoreFailure(t *testing.T) {
	sessions := session.NewManager(brokenStore{session.NewMemoryStore()}, session.Options{Secret: "s", IdleTimeout: time.Hour})
	r := newMiddlewareOnlyRouter(sessions)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.AddCookie(sessionCookie(t, sessions, 1, "alice"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", w.Code)
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := newTestRouter(&service.Service{}, newTestSessions())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("request id not echoed: %q", got)
	}
}
