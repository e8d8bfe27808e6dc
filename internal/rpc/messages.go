package rpc

import "todo-go/internal/todo"

// Method names, appended to the API prefix to form each endpoint path.
const (
	MethodGetTodos   = "GetTodos"
	MethodInsertTodo = "InsertTodo"
	MethodEditTodo   = "EditTodo"
	MethodDeleteTodo = "DeleteTodo"
	pathHealth       = "health"
)

type getTodosRequest struct{}

type getTodosResponse struct {
	Todos []todo.Todo `json:"todos"`
}

type todoRequest struct {
	Todo todo.Todo `json:"todo"`
}

type deleteTodoRequest struct {
	ID string `json:"id"`
}

type emptyResponse struct{}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}
