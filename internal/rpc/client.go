package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"todo-go/internal/todo"
)

// Client calls the todo RPC endpoints over HTTP.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a client for the RPC endpoints under endpoint,
// e.g. "http://127.0.0.1:3000/api". A bare host:port is given an http scheme.
func NewClient(endpoint string) *Client {
	url := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return &Client{endpoint: url, client: &http.Client{}}
}

// Endpoint returns the URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// GetTodos returns the current list of todos.
func (c *Client) GetTodos(ctx context.Context) ([]todo.Todo, error) {
	var response getTodosResponse
	if err := c.post(ctx, MethodGetTodos, getTodosRequest{}, &response); err != nil {
		return nil, err
	}
	if response.Todos == nil {
		response.Todos = []todo.Todo{}
	}
	return response.Todos, nil
}

// InsertTodo stores a new todo.
func (c *Client) InsertTodo(ctx context.Context, t todo.Todo) error {
	return c.post(ctx, MethodInsertTodo, todoRequest{Todo: t}, &emptyResponse{})
}

// EditTodo changes the title and description of an existing todo.
func (c *Client) EditTodo(ctx context.Context, t todo.Todo) error {
	return c.post(ctx, MethodEditTodo, todoRequest{Todo: t}, &emptyResponse{})
}

// DeleteTodo removes a todo by id.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.post(ctx, MethodDeleteTodo, deleteTodoRequest{ID: id}, &emptyResponse{})
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+pathHealth, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", pathHealth, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readErrorResponse(resp)
	}
	var response healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("decoding %s response: %w", pathHealth, err)
	}
	if response.Status != "ok" {
		return fmt.Errorf("server status %q", response.Status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, method string, payload any, dest any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/"+method, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readErrorResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	return nil
}

// readErrorResponse turns a non-200 response into a *todo.ServerError.
func readErrorResponse(resp *http.Response) error {
	var payload errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return &todo.ServerError{Message: payload.Error}
	}
	return &todo.ServerError{Message: resp.Status}
}

// Compile-time check that Client implements todo.API interface
var _ todo.API = (*Client)(nil)
