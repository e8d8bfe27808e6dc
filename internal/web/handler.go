package web

import (
	"context"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"todo-go/internal/todo"
	"todo-go/internal/ui"
)

// Options configures the web handler.
type Options struct {
	API    todo.API
	Clock  todo.Clock
	IDs    todo.IDGenerator
	Logger todo.Logger
}

// Handler serves the todo list page. It owns one ui.Store, shared by every
// browser viewing the page, and runs the store's tasks in the background.
type Handler struct {
	api       todo.API
	logger    todo.Logger
	mux       *http.ServeMux
	templates *template.Template

	mu      sync.Mutex
	store   *ui.Store
	started bool
	pending int

	tasks sync.WaitGroup
}

// NewHandler creates a new web handler. The first fetch starts with the first request.
func NewHandler(opts Options) *Handler {
	clock := opts.Clock
	if clock == nil {
		clock = todo.RealClock{}
	}
	ids := opts.IDs
	if ids == nil {
		ids = todo.UUIDGenerator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = todo.NewNopLogger()
	}

	handler := &Handler{
		api:       opts.API,
		logger:    logger,
		templates: newTemplates(),
		store:     ui.NewStore(clock, ids, logger),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", handler.handlePage)
	mux.HandleFunc("/todos/new", handler.action(func(*http.Request) ui.Event { return ui.OpenCreate{} }))
	mux.HandleFunc("/todos/edit", handler.action(handler.editEvent))
	mux.HandleFunc("/todos/submit", handler.action(func(r *http.Request) ui.Event {
		return ui.Submit{
			Title:       r.PostFormValue("title"),
			Description: r.PostFormValue("description"),
		}
	}))
	mux.HandleFunc("/todos/cancel", handler.action(func(*http.Request) ui.Event { return ui.Cancel{} }))
	mux.HandleFunc("/todos/delete", handler.action(handler.deleteEvent))
	handler.mux = mux
	return handler
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Wait blocks until every task spawned so far, and their follow-ups, has completed.
func (h *Handler) Wait() {
	h.tasks.Wait()
}

type pageData struct {
	List    ui.ListView
	Modal   ui.ModalView
	Pending bool
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	h.mu.Lock()
	if !h.started {
		h.started = true
		h.spawnLocked(h.store.Start())
	}
	data := pageData{
		List:    h.store.View(),
		Modal:   h.store.Modal(),
		Pending: h.pending > 0,
	}
	h.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "page", data); err != nil {
		h.logger.Error("rendering page failed", "error", err)
	}
}

// action adapts an event constructor into a POST handler that dispatches the
// event and redirects back to the page. A nil event dispatches nothing.
func (h *Handler) action(event func(*http.Request) ui.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form input", http.StatusBadRequest)
			return
		}
		if e := event(r); e != nil {
			h.dispatch(e)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (h *Handler) editEvent(r *http.Request) ui.Event {
	id := strings.TrimSpace(r.FormValue("id"))
	h.mu.Lock()
	t := h.store.Find(id)
	h.mu.Unlock()
	if t == nil {
		h.logger.Warn("edit of unknown todo", "id", id)
		return nil
	}
	return ui.OpenEdit{Todo: *t}
}

func (h *Handler) deleteEvent(r *http.Request) ui.Event {
	id := strings.TrimSpace(r.FormValue("id"))
	h.mu.Lock()
	t := h.store.Find(id)
	h.mu.Unlock()
	if t == nil {
		h.logger.Warn("delete of unknown todo", "id", id)
		return nil
	}
	return ui.Delete{Todo: *t}
}

// dispatch applies a user event and starts the tasks it spawns.
func (h *Handler) dispatch(e ui.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.spawnLocked(h.store.Apply(e))
}

// spawnLocked starts each task in its own goroutine. Completions are applied
// under the lock and may spawn further tasks. Callers hold h.mu.
func (h *Handler) spawnLocked(tasks []ui.Task) {
	for _, task := range tasks {
		h.pending++
		h.tasks.Add(1)
		go func(task ui.Task) {
			defer h.tasks.Done()
			result := task.Run(context.Background(), h.api)

			h.mu.Lock()
			defer h.mu.Unlock()
			h.pending--
			h.spawnLocked(h.store.Apply(result))
		}(task)
	}
}

func writeMethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
