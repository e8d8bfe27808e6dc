package web

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"todo-go/internal/rpc"
	"todo-go/internal/testutil"
	"todo-go/internal/todo"
)

func newTestHandler(t *testing.T, repo *testutil.MemoryRepository) *Handler {
	t.Helper()
	return NewHandler(Options{
		API:    todo.NewService(repo, todo.NewNopLogger()),
		Clock:  testutil.FixedClock(),
		IDs:    testutil.NewStubIDGenerator(),
		Logger: todo.NewNopLogger(),
	})
}

func getPage(t *testing.T, h *Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", rec.Code)
	}
	return rec.Body.String()
}

func post(t *testing.T, h *Handler, target string, form url.Values) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST %s status = %d, want 303", target, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("POST %s Location = %q, want /", target, loc)
	}
}

// loadedPage renders the page once to start the first fetch, waits for
// background work, then renders again.
func loadedPage(t *testing.T, h *Handler) string {
	t.Helper()
	getPage(t, h)
	h.Wait()
	return getPage(t, h)
}

func TestPage_EmptyState(t *testing.T) {
	h := newTestHandler(t, testutil.NewMemoryRepository())

	body := loadedPage(t, h)
	if !strings.Contains(body, "TODO LIST") {
		t.Error("page missing header")
	}
	if !strings.Contains(body, "No Todos") {
		t.Error("page missing empty placeholder")
	}
	if strings.Contains(body, "Loading...") {
		t.Error("page shows loading after the fetch resolved")
	}
	if strings.Contains(body, `http-equiv="refresh"`) {
		t.Error("page auto-refreshes with no pending work")
	}
}

func TestPage_CreateFlow(t *testing.T) {
	repo := testutil.NewMemoryRepository()
	h := newTestHandler(t, repo)
	loadedPage(t, h)

	post(t, h, "/todos/new", nil)
	body := getPage(t, h)
	if !strings.Contains(body, "New Todo") {
		t.Fatal("create modal not shown")
	}

	post(t, h, "/todos/submit", url.Values{"title": {"Buy milk"}, "description": {" 2 litres "}})
	h.Wait()

	body = getPage(t, h)
	if strings.Contains(body, "New Todo") {
		t.Error("modal still shown after successful submit")
	}
	if !strings.Contains(body, "Buy milk") || !strings.Contains(body, `data-key="todo-1| 2 litres "`) {
		t.Errorf("row missing from page:\n%s", body)
	}
	stored := repo.Todos()
	if len(stored) != 1 || stored[0].Description != " 2 litres " {
		t.Errorf("stored = %+v", stored)
	}
}

func TestPage_EditAndDelete(t *testing.T) {
	a := todo.Todo{ID: "a", Title: "old title", Description: "d", Created: time.UnixMilli(1700000000123).UTC()}
	repo := testutil.NewMemoryRepository(a)
	h := newTestHandler(t, repo)
	loadedPage(t, h)

	post(t, h, "/todos/edit?id=a", nil)
	body := getPage(t, h)
	if !strings.Contains(body, "Edit Todo") || !strings.Contains(body, `value="old title"`) {
		t.Fatalf("edit modal not prefilled:\n%s", body)
	}

	post(t, h, "/todos/submit", url.Values{"title": {"new title"}, "description": {"d"}})
	h.Wait()
	if got := repo.Todos()[0].Title; got != "new title" {
		t.Errorf("stored title = %q, want %q", got, "new title")
	}

	post(t, h, "/todos/delete?id=a", nil)
	h.Wait()
	if n := len(repo.Todos()); n != 0 {
		t.Errorf("repository holds %d todos after delete, want 0", n)
	}
	if body := getPage(t, h); !strings.Contains(body, "No Todos") {
		t.Error("page not empty after delete")
	}
}

func TestPage_CancelHidesModal(t *testing.T) {
	h := newTestHandler(t, testutil.NewMemoryRepository())
	loadedPage(t, h)

	post(t, h, "/todos/new", nil)
	post(t, h, "/todos/cancel", nil)

	if body := getPage(t, h); strings.Contains(body, "New Todo") {
		t.Error("modal shown after cancel")
	}
}

func TestPage_SubmitFailureKeepsModal(t *testing.T) {
	repo := testutil.NewMemoryRepository()
	h := newTestHandler(t, repo)
	loadedPage(t, h)

	repo.SetErr(errors.New("table gone"))
	post(t, h, "/todos/new", nil)
	post(t, h, "/todos/submit", url.Values{"title": {"Buy milk"}, "description": {"typed before the failure"}})
	h.Wait()

	body := getPage(t, h)
	if !strings.Contains(body, "New Todo") {
		t.Fatal("modal closed after failed submit")
	}
	if !strings.Contains(body, `value="Buy milk"`) || !strings.Contains(body, "typed before the failure</textarea>") {
		t.Errorf("submitted values not kept in the form:\n%s", body)
	}
}

func TestPage_EditFailureKeepsSubmittedValues(t *testing.T) {
	a := todo.Todo{ID: "a", Title: "old title", Description: "old desc", Created: time.UnixMilli(1700000000123).UTC()}
	repo := testutil.NewMemoryRepository(a)
	h := newTestHandler(t, repo)
	loadedPage(t, h)

	post(t, h, "/todos/edit?id=a", nil)
	repo.SetErr(errors.New("throttled"))
	post(t, h, "/todos/submit", url.Values{"title": {"new title"}, "description": {"new desc"}})
	h.Wait()

	body := getPage(t, h)
	if !strings.Contains(body, "Edit Todo") || !strings.Contains(body, `value="new title"`) {
		t.Errorf("edit form lost the submitted title:\n%s", body)
	}
	if strings.Contains(body, `value="old title"`) {
		t.Errorf("edit form reverted to the stored title:\n%s", body)
	}
}

func TestPage_UnknownIDIgnored(t *testing.T) {
	h := newTestHandler(t, testutil.NewMemoryRepository())
	loadedPage(t, h)

	post(t, h, "/todos/edit?id=ghost", nil)
	post(t, h, "/todos/delete?id=ghost", nil)
	h.Wait()

	if body := getPage(t, h); strings.Contains(body, "Edit Todo") {
		t.Error("edit modal opened for unknown id")
	}
}

func TestPage_MethodChecks(t *testing.T) {
	h := newTestHandler(t, testutil.NewMemoryRepository())

	tests := []struct {
		method string
		target string
		want   int
	}{
		{method: http.MethodPost, target: "/", want: http.StatusMethodNotAllowed},
		{method: http.MethodGet, target: "/todos/new", want: http.StatusMethodNotAllowed},
		{method: http.MethodGet, target: "/missing", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestPage_OverRPC(t *testing.T) {
	repo := testutil.NewMemoryRepository()
	server, err := rpc.NewServer(rpc.ServerOptions{API: todo.NewService(repo, todo.NewNopLogger())})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	api := httptest.NewServer(server.Handler())
	defer api.Close()

	h := NewHandler(Options{
		API:   rpc.NewClient(api.URL + "/api"),
		Clock: testutil.FixedClock(),
		IDs:   testutil.NewStubIDGenerator(),
	})
	page := httptest.NewServer(h)
	defer page.Close()

	resp, err := http.Get(page.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	h.Wait()

	post(t, h, "/todos/new", nil)
	post(t, h, "/todos/submit", url.Values{"title": {"over the wire"}})
	h.Wait()

	if body := getPage(t, h); !strings.Contains(body, "over the wire") {
		t.Error("row created over rpc missing from page")
	}
}
