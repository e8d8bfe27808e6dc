package ui

import (
	"context"

	"todo-go/internal/todo"
)

// Event is anything Store.Apply accepts: a user action or the completion of a Task.
type Event interface {
	isEvent()
}

// OpenCreate clears the edit target and shows the modal.
type OpenCreate struct{}

// OpenEdit sets the edit target to Todo and shows the modal.
type OpenEdit struct {
	Todo todo.Todo
}

// Submit sends the modal form. It creates a todo unless an edit target is set.
type Submit struct {
	Title       string
	Description string
}

// Cancel hides the modal and discards the edit target.
type Cancel struct{}

// Delete removes the given row.
type Delete struct {
	Todo todo.Todo
}

// Fetched carries the result of the list fetch started for refresh counter Version.
type Fetched struct {
	Version uint64
	Todos   []todo.Todo
	Err     error
}

// Op names a mutating RPC call.
type Op string

const (
	OpInsert Op = "insert"
	OpEdit   Op = "edit"
	OpDelete Op = "delete"
)

// Mutated carries the result of a mutating RPC call. Session is the modal
// session the call was submitted from; zero for deletes.
type Mutated struct {
	Op      Op
	ID      string
	Session uint64
	Err     error
}

func (OpenCreate) isEvent() {}
func (OpenEdit) isEvent()   {}
func (Submit) isEvent()     {}
func (Cancel) isEvent()     {}
func (Delete) isEvent()     {}
func (Fetched) isEvent()    {}
func (Mutated) isEvent()    {}

// Task is one asynchronous RPC round trip. Run performs the call and returns
// the completion event to feed back into Store.Apply.
type Task struct {
	Name string
	Run  func(ctx context.Context, api todo.API) Event
}

func fetchTask(version uint64) Task {
	return Task{
		Name: "fetch",
		Run: func(ctx context.Context, api todo.API) Event {
			todos, err := api.GetTodos(ctx)
			return Fetched{Version: version, Todos: todos, Err: err}
		},
	}
}

func insertTask(t todo.Todo, session uint64) Task {
	return Task{
		Name: string(OpInsert),
		Run: func(ctx context.Context, api todo.API) Event {
			return Mutated{Op: OpInsert, ID: t.ID, Session: session, Err: api.InsertTodo(ctx, t)}
		},
	}
}

func editTask(t todo.Todo, session uint64) Task {
	return Task{
		Name: string(OpEdit),
		Run: func(ctx context.Context, api todo.API) Event {
			return Mutated{Op: OpEdit, ID: t.ID, Session: session, Err: api.EditTodo(ctx, t)}
		},
	}
}

func deleteTask(id string) Task {
	return Task{
		Name: string(OpDelete),
		Run: func(ctx context.Context, api todo.API) Event {
			return Mutated{Op: OpDelete, ID: id, Err: api.DeleteTodo(ctx, id)}
		},
	}
}

// Drain runs tasks one at a time, applying each completion event and running
// any follow-up tasks, until none remain.
func Drain(ctx context.Context, s *Store, api todo.API, tasks []Task) {
	for len(tasks) > 0 {
		task := tasks[0]
		tasks = append(tasks[1:], s.Apply(task.Run(ctx, api))...)
	}
}
