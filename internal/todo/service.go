package todo

import (
	"context"
)

// API is the set of operations callable across the RPC boundary.
// *Service implements it in-process; rpc.Client implements it over HTTP.
type API interface {
	GetTodos(ctx context.Context) ([]Todo, error)
	InsertTodo(ctx context.Context, t Todo) error
	EditTodo(ctx context.Context, t Todo) error
	DeleteTodo(ctx context.Context, id string) error
}

// Service exposes the repository operations that are callable remotely.
// Every failure is logged and flattened into a *ServerError carrying only the
// original message.
type Service struct {
	repo   Repository
	logger Logger
}

// NewService creates a Service on top of the given repository.
func NewService(repo Repository, logger Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetTodos returns the current list of todos.
func (s *Service) GetTodos(ctx context.Context) ([]Todo, error) {
	todos, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, s.serverError("GetTodos", err)
	}
	return todos, nil
}

// InsertTodo stores a new todo. The caller supplies the id and creation time.
func (s *Service) InsertTodo(ctx context.Context, t Todo) error {
	if err := s.repo.Insert(ctx, t); err != nil {
		return s.serverError("InsertTodo", err)
	}
	return nil
}

// EditTodo changes the title and description of an existing todo.
func (s *Service) EditTodo(ctx context.Context, t Todo) error {
	if err := s.repo.Update(ctx, t); err != nil {
		return s.serverError("EditTodo", err)
	}
	return nil
}

// DeleteTodo removes a todo by id.
func (s *Service) DeleteTodo(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.serverError("DeleteTodo", err)
	}
	return nil
}

func (s *Service) serverError(op string, err error) error {
	s.logger.Error("rpc failed", "op", op, "error", err)
	return &ServerError{Message: err.Error()}
}

// Compile-time check that Service implements API interface
var _ API = (*Service)(nil)
