package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"task_manager/internal/service"
)

func authed(t *testing.T, tasks *mockTasks) (http.Handler, *http.Cookie) {
	t.Helper()
	sessions := newTestSessions()
	r := newTestRouter(&service.Service{Tasks: tasks}, sessions)
	return r, sessionCookie(t, sessions, 7, "alice")
}

func doRequest(r http.Handler, method, path, body, contentType string, ck *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if ck != nil {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return out.Error
}

func TestTasksAPI_RequiresSession(t *testing.T) {
	r := newTestRouter(&service.Service{Tasks: &mockTasks{}}, newTestSessions())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodDelete, "/api/tasks/0"},
	} {
		w := doRequest(r, tc.method, tc.path, "", "", nil)
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/login.html" {
			t.Fatalf("%s %s: status=%d Location=%q", tc.method, tc.path, w.Code, w.Header().Get("Location"))
		}
	}
}

func TestTasksAPI_List(t *testing.T) {
	tasks := &mockTasks{list: []string{"a", "b"}}
	r, ck := authed(t, tasks)

	w := doRequest(r, http.MethodGet, "/api/tasks", "", "", ck)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got []string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected list %q", got)
	}
	if tasks.lastUserID != 7 {
		t.Fatalf("listed for user %d, want 7", tasks.lastUserID)
	}
}

func TestTasksAPI_ListEmpty(t *testing.T) {
	r, ck := authed(t, &mockTasks{list: []string{}})

	w := doRequest(r, http.MethodGet, "/api/tasks", "", "", ck)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestTasksAPI_ListError(t *testing.T) {
	r, ck := authed(t, &mockTasks{listErr: &service.StoreError{Op: "list tasks", Err: errors.New("boom")}})

	w := doRequest(r, http.MethodGet, "/api/tasks", "", "", ck)
	if w.Code != http.StatusInternalServerError || errorBody(t, w) != "Error fetching tasks" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestTasksAPI_Add(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		contentType string
		addErr      error
		wantCode    int
		wantErr     string
		wantText    string
	}{
		{"json", `{"task":"buy milk"}`, "application/json", nil, http.StatusOK, "", "buy milk"},
		{"form", "task=call+mom", "application/x-www-form-urlencoded", nil, http.StatusOK, "", "call mom"},
		{"blank", `{"task":"   "}`, "application/json", service.ErrEmptyTask, http.StatusBadRequest, "Task is required", "   "},
		{"store failure", `{"task":"x"}`, "application/json", &service.StoreError{Op: "add task", Err: errors.New("boom")}, http.StatusInternalServerError, "Error adding task", "x"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks := &mockTasks{addErr: tc.addErr}
			r, ck := authed(t, tasks)

			w := doRequest(r, http.MethodPost, "/api/tasks", tc.body, tc.contentType, ck)
			if w.Code != tc.wantCode {
				t.Fatalf("status=%d want %d body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			if tc.wantErr == "" && w.Body.Len() != 0 {
				t.Fatalf("expected empty body, got %q", w.Body.String())
			}
			if tc.wantErr != "" && errorBody(t, w) != tc.wantErr {
				t.Fatalf("error=%q want %q", errorBody(t, w), tc.wantErr)
			}
			if tasks.lastText != tc.wantText || tasks.lastUserID != 7 {
				t.Fatalf("Add got user=%d text=%q", tasks.lastUserID, tasks.lastText)
			}
		})
	}
}

func TestTasksAPI_Delete(t *testing.T) {
	cases := []struct {
		name      string
		path      string
		delErr    error
		wantCode  int
		wantErr   string
		wantCalls int
	}{
		{"ok", "/api/tasks/1", nil, http.StatusOK, "", 1},
		{"out of range", "/api/tasks/5", service.ErrInvalidIndex, http.StatusBadRequest, "Invalid index", 1},
		{"negative", "/api/tasks/-1", service.ErrInvalidIndex, http.StatusBadRequest, "Invalid index", 1},
		{"not a number", "/api/tasks/abc", nil, http.StatusBadRequest, "Invalid index", 0},
		{"store failure", "/api/tasks/0", &service.StoreError{Op: "delete task", Err: errors.New("boom")}, http.StatusInternalServerError, "Error deleting task", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks := &mockTasks{delErr: tc.delErr}
			r, ck := authed(t, tasks)

			w := doRequest(r, http.MethodDelete, tc.path, "", "", ck)
			if w.Code != tc.wantCode {
				t.Fatalf("status=%d want %d body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			if tc.wantErr != "" && errorBody(t, w) != tc.wantErr {
				t.Fatalf("error=%q want %q", errorBody(t, w), tc.wantErr)
			}
			if tasks.delCalls != tc.wantCalls {
				t.Fatalf("DeleteAt calls=%d want %d", tasks.delCalls, tc.wantCalls)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	router := func(p Pinger) http.Handler {
		h := NewHandler(&service.Service{}, newTestSessions(), Options{DB: p}, nil)
		return h.InitRoutes()
	}

	w := doRequest(router(mockPinger{}), http.MethodGet, "/health", "", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("healthy: status=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(router(mockPinger{err: errors.New("down")}), http.MethodGet, "/health", "", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy: status=%d body=%s", w.Code, w.Body.String())
	}
}
