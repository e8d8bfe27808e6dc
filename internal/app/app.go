package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"todo-go/internal/config"
	"todo-go/internal/itemstore"
	"todo-go/internal/repository"
	"todo-go/internal/rpc"
	"todo-go/internal/todo"
	"todo-go/internal/web"
)

// TodoApp is the application layer between the CLI and the todo Service.
// It constructs all dependencies from config, exposes the operations the
// commands need, and releases the store and log file on Close.
type TodoApp struct {
	cfg       *config.Config
	connector todo.Connector
	repo      *repository.TodoRepository
	service   *todo.Service
	logger    todo.Logger
	logFile   *os.File
}

// NewTodoApp creates a fully wired TodoApp from the given config.
// command identifies the CLI command being run and tags every log line.
// Log lines are copied to console when it is non-nil.
// The caller must call Close when done.
func NewTodoApp(cfg *config.Config, command string, console io.Writer) (*TodoApp, error) {
	runID := command + "-" + time.Now().UTC().Format("20060102T150405Z")
	l, logFile, err := newLogger(cfg.LogDir, runID, console)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	connector, err := itemstore.NewConnectorFromConfig(cfg.Store, logger)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating item store connector: %w", err)
	}

	repo := repository.NewTodoRepository(connector, cfg.Store.Table, logger)

	return &TodoApp{
		cfg:       cfg,
		connector: connector,
		repo:      repo,
		service:   todo.NewService(repo, logger),
		logger:    logger,
		logFile:   logFile,
	}, nil
}

// Config returns the config the app was built from.
func (a *TodoApp) Config() *config.Config {
	return a.cfg
}

// Logger returns the app's logger.
func (a *TodoApp) Logger() todo.Logger {
	return a.logger
}

// Service returns the server-side todo API backed by the configured store.
func (a *TodoApp) Service() *todo.Service {
	return a.service
}

// ClientEndpoint returns the URL of the RPC endpoints of a running server:
// client.base_url when set, otherwise derived from server.addr.
func (a *TodoApp) ClientEndpoint() string {
	base := a.cfg.Client.BaseURL
	if base == "" {
		base = rpc.ResolveBaseURL(a.cfg.Server.Addr)
	}
	return rpc.ResolveBaseURL(base) + rpc.NormalizePrefix(a.cfg.Server.APIPrefix)
}

// RemoteAPI returns a client for the RPC endpoints of a running server.
func (a *TodoApp) RemoteAPI() *rpc.Client {
	return rpc.NewClient(a.ClientEndpoint())
}

// NewServer builds the HTTP server for `todo serve`: the RPC endpoints under
// the configured prefix and the web page at "/". The page reaches the
// service through the RPC endpoints, like any other client.
func (a *TodoApp) NewServer() (*rpc.Server, *web.Handler, error) {
	page := web.NewHandler(web.Options{
		API:    a.RemoteAPI(),
		Logger: a.logger,
	})
	server, err := rpc.NewServer(rpc.ServerOptions{
		API:    a.service,
		Prefix: a.cfg.Server.APIPrefix,
		Logger: a.logger,
		Web:    page,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating rpc server: %w", err)
	}
	return server, page, nil
}

// EnsureTable creates the todo table if it does not exist yet.
// It returns true when the table was created.
func (a *TodoApp) EnsureTable(ctx context.Context) (bool, error) {
	store, err := a.connector.Connect(ctx)
	if err != nil {
		return false, fmt.Errorf("connecting to item store: %w", err)
	}
	created, err := itemstore.EnsureTable(ctx, store, a.cfg.Store.Table)
	if err != nil {
		return false, err
	}
	if created {
		a.logger.Info("table created", "table", a.cfg.Store.Table)
	}
	return created, nil
}

// ListTodos returns the todos in store scan order.
func (a *TodoApp) ListTodos(ctx context.Context) ([]todo.Todo, error) {
	return a.service.GetTodos(ctx)
}

// AddTodo creates and stores a new todo.
func (a *TodoApp) AddTodo(ctx context.Context, title, description string) (todo.Todo, error) {
	t := todo.New(todo.UUIDGenerator{}, todo.RealClock{}, title, description)
	if err := a.service.InsertTodo(ctx, t); err != nil {
		return todo.Todo{}, err
	}
	return t, nil
}

// EditTodo changes the title and/or description of an existing todo.
// Nil fields are left unchanged.
func (a *TodoApp) EditTodo(ctx context.Context, id string, title, description *string) (todo.Todo, error) {
	current, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("looking up todo %s: %w", id, err)
	}
	if current == nil {
		return todo.Todo{}, fmt.Errorf("looking up todo %s: %w", id, todo.ErrNotFound)
	}

	updated := *current
	if title != nil {
		updated.Title = *title
	}
	if description != nil {
		updated.Description = *description
	}
	if err := a.service.EditTodo(ctx, updated); err != nil {
		return todo.Todo{}, err
	}
	return updated, nil
}

// RemoveTodo deletes a todo. Removing an unknown id succeeds.
func (a *TodoApp) RemoveTodo(ctx context.Context, id string) error {
	return a.service.DeleteTodo(ctx, id)
}

// Close releases the store connector (when it holds resources) and the log file.
func (a *TodoApp) Close() error {
	var firstErr error
	if closer, ok := a.connector.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			firstErr = fmt.Errorf("closing item store: %w", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
