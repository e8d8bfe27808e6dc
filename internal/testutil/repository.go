package testutil

import (
	"context"
	"fmt"
	"sync"

	"todo-go/internal/todo"
)

// MemoryRepository is an in-memory todo.Repository that keeps insertion order.
// Setting Err makes every call fail with it. Safe for concurrent use.
type MemoryRepository struct {
	mu    sync.Mutex
	todos []todo.Todo
	Err   error
	Calls []string
}

func NewMemoryRepository(todos ...todo.Todo) *MemoryRepository {
	return &MemoryRepository{todos: append([]todo.Todo(nil), todos...)}
}

// SetErr changes the injected failure.
func (r *MemoryRepository) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

func (r *MemoryRepository) record(call string) error {
	r.Calls = append(r.Calls, call)
	return r.Err
}

func (r *MemoryRepository) GetAll(context.Context) ([]todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("GetAll"); err != nil {
		return nil, err
	}
	return append([]todo.Todo{}, r.todos...), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("GetByID"); err != nil {
		return nil, err
	}
	for _, t := range r.todos {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) Insert(_ context.Context, t todo.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Insert"); err != nil {
		return err
	}
	for i := range r.todos {
		if r.todos[i].ID == t.ID {
			r.todos[i] = t
			return nil
		}
	}
	r.todos = append(r.todos, t)
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, t todo.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Update"); err != nil {
		return err
	}
	for i := range r.todos {
		if r.todos[i].ID == t.ID {
			r.todos[i].Title = t.Title
			r.todos[i].Description = t.Description
			return nil
		}
	}
	return fmt.Errorf("updating todo %s: %w", t.ID, todo.ErrNotFound)
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Delete"); err != nil {
		return err
	}
	for i := range r.todos {
		if r.todos[i].ID == id {
			r.todos = append(r.todos[:i], r.todos[i+1:]...)
			return nil
		}
	}
	return nil
}

// Todos returns a snapshot of the stored todos.
func (r *MemoryRepository) Todos() []todo.Todo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]todo.Todo{}, r.todos...)
}

// Compile-time check that MemoryRepository implements todo.Repository interface
var _ todo.Repository = (*MemoryRepository)(nil)
