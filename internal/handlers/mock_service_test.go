package handlers

import (
	"context"
	"net/http"
	"testing"

	"task_manager/internal/models"
	"task_manager/internal/service"
	"task_manager/internal/session"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerID   int
	registerErr  error
	authUser     *models.User
	authErr      error
	lastUsername string
	lastPassword string
}

func (m *mockAuth) Register(_ context.Context, username, password string) (int, error) {
	m.lastUsername = username
	m.lastPassword = password
	return m.registerID, m.registerErr
}

func (m *mockAuth) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	m.lastUsername = username
	m.lastPassword = password
	return m.authUser, m.authErr
}

type mockTasks struct {
	list    []string
	listErr error
	addErr  error
	delErr  error

	lastUserID int
	lastText   string
	lastIndex  int
	addCalls   int
	delCalls   int
}

func (m *mockTasks) List(_ context.Context, userID int) ([]string, error) {
	m.lastUserID = userID
	return m.list, m.listErr
}

func (m *mockTasks) Add(_ context.Context, userID int, text string) error {
	m.addCalls++
	m.lastUserID = userID
	m.lastText = text
	return m.addErr
}

func (m *mockTasks) DeleteAt(_ context.Context, userID, index int) error {
	m.delCalls++
	m.lastUserID = userID
	m.lastIndex = index
	return m.delErr
}

type mockPinger struct{ err error }

func (m mockPinger) PingContext(context.Context) error { return m.err }

// ---- Shared Test Helpers ----

func newTestSessions() *session.Manager {
	return session.NewManager(session.NewMemoryStore(), session.Options{Secret: "test-secret"})
}

func newTestRouter(s *service.Service, sessions *session.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, sessions, Options{}, nil)
	return h.InitRoutes()
}

// sessionCookie opens a session for userID and returns the matching cookie.
func sessionCookie(t *testing.T, sessions *session.Manager, userID int, username string) *http.Cookie {
	t.Helper()
	token, _, err := sessions.Create(context.Background(), userID, username)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &http.Cookie{Name: defaultCookieName, Value: token}
}
