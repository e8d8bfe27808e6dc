package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"time"

	"todo-go/internal/todo"
)

// DefaultPrefix is the path under which the RPC endpoints are mounted.
const DefaultPrefix = "/api"

const shutdownTimeout = 5 * time.Second

// ServerOptions configures a Server.
type ServerOptions struct {
	API    todo.API
	Prefix string // defaults to DefaultPrefix
	Logger todo.Logger
	// Web, when set, serves every path outside the prefix.
	Web http.Handler
}

// Server exposes a todo.API as JSON-over-HTTP endpoints.
type Server struct {
	api    todo.API
	prefix string
	logger todo.Logger
	web    http.Handler
}

// NewServer creates an RPC server.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("api is required")
	}
	prefix := NormalizePrefix(opts.Prefix)
	logger := opts.Logger
	if logger == nil {
		logger = todo.NewNopLogger()
	}
	return &Server{
		api:    opts.API,
		prefix: prefix,
		logger: logger,
		web:    opts.Web,
	}, nil
}

// NormalizePrefix returns prefix with a leading slash and no trailing slash,
// or DefaultPrefix when prefix is blank.
func NormalizePrefix(prefix string) string {
	trimmed := strings.Trim(strings.TrimSpace(prefix), "/")
	if trimmed == "" {
		return DefaultPrefix
	}
	return "/" + trimmed
}

// Prefix returns the normalized path prefix of the RPC endpoints.
func (s *Server) Prefix() string {
	return s.prefix
}

// Handler returns the HTTP handler for the RPC endpoints (and the web view, if any).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.prefix+"/"+MethodGetTodos, s.handleGetTodos)
	mux.HandleFunc(s.prefix+"/"+MethodInsertTodo, s.handleInsertTodo)
	mux.HandleFunc(s.prefix+"/"+MethodEditTodo, s.handleEditTodo)
	mux.HandleFunc(s.prefix+"/"+MethodDeleteTodo, s.handleDeleteTodo)
	mux.HandleFunc(s.prefix+"/"+pathHealth, s.handleHealth)
	mux.HandleFunc(s.prefix+"/", func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("unknown method %s", strings.TrimPrefix(r.URL.Path, s.prefix+"/")))
	})
	if s.web != nil {
		mux.Handle("/", s.web)
	}
	return s.recoverHandler(mux)
}

// Serve runs the server on addr until ctx is cancelled or an interrupt arrives.
func (s *Server) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.ServeListener(ctx, listener)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.Serve(listener)
	}()
	s.logger.Info("server listening", "addr", listener.Addr().String(), "prefix", s.prefix)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", "error", err)
			return err
		}
		return nil
	case <-interrupts:
		s.logger.Info("interrupt received, shutting down")
	case <-ctx.Done():
		s.logger.Info("context done, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	shutdownErr := server.Shutdown(shutdownCtx)
	cancel()
	listenErr := <-listenErrs
	if errors.Is(listenErr, http.ErrServerClosed) {
		listenErr = nil
	}
	return errors.Join(shutdownErr, listenErr)
}

// ResolveBaseURL turns a listen address into a URL a local client can dial.
func ResolveBaseURL(addr string) string {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	host := trimmed
	if strings.HasPrefix(host, ":") {
		host = "127.0.0.1" + host
	}
	if strings.HasPrefix(host, "0.0.0.0:") {
		host = "127.0.0.1:" + strings.TrimPrefix(host, "0.0.0.0:")
	}
	return "http://" + host
}

func (s *Server) handleGetTodos(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload getTodosRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	todos, err := s.api.GetTodos(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if todos == nil {
		todos = []todo.Todo{}
	}
	writeJSON(w, http.StatusOK, getTodosResponse{Todos: todos})
}

func (s *Server) handleInsertTodo(w http.ResponseWriter, r *http.Request) {
	s.handleTodoWrite(w, r, s.api.InsertTodo)
}

func (s *Server) handleEditTodo(w http.ResponseWriter, r *http.Request) {
	s.handleTodoWrite(w, r, s.api.EditTodo)
}

func (s *Server) handleTodoWrite(w http.ResponseWriter, r *http.Request, call func(context.Context, todo.Todo) error) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload todoRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(payload.Todo.ID) == "" {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("todo id is required"))
		return
	}
	if err := call(r.Context(), payload.Todo); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyResponse{})
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload deleteTodoRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(payload.ID) == "" {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("todo id is required"))
		return
	}
	if err := s.api.DeleteTodo(r.Context(), payload.ID); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyResponse{})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) recoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer := &responseTracker{ResponseWriter: w}
		defer func() {
			if recovered := recover(); recovered != nil {
				s.logger.Error("panic handling request", "method", r.Method, "path", r.URL.Path, "panic", recovered, "stack", string(debug.Stack()))
				if writer.wroteHeader {
					return
				}
				writeJSON(writer, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
		}()
		next.ServeHTTP(writer, r)
	})
}

func (s *Server) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	return false
}

// decodeJSON decodes a single JSON value. An empty body decodes as the zero value.
func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if decoder.More() {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Warn("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	writeJSON(w, status, errorResponse{Error: errorMessage(err)})
}

// errorMessage strips the ServerError framing so only the original message
// crosses the wire; the client adds it back.
func errorMessage(err error) string {
	var serverErr *todo.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	return err.Error()
}

type responseTracker struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseTracker) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseTracker) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(data)
}
