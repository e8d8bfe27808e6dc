package todo

import (
	"errors"
	"fmt"
	"time"
)

// Todo is the single persisted entity. ID and Created are fixed at creation;
// only Title and Description change afterwards.
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
}

// New builds a Todo with a fresh id and a creation time truncated to the
// millisecond precision the item store keeps.
func New(ids IDGenerator, clock Clock, title, description string) Todo {
	return Todo{
		ID:          ids.New(),
		Title:       title,
		Description: description,
		Created:     clock.Now().UTC().Truncate(time.Millisecond),
	}
}

// CreatedMillis returns the creation time as epoch milliseconds, the
// representation used in the item store.
func (t Todo) CreatedMillis() int64 {
	return t.Created.UnixMilli()
}

// Equal reports whether two todos match in all four fields, comparing
// timestamps at millisecond precision.
func (t Todo) Equal(other Todo) bool {
	return t.ID == other.ID &&
		t.Title == other.Title &&
		t.Description == other.Description &&
		t.Created.UnixMilli() == other.Created.UnixMilli()
}

var (
	// ErrMalformedItem marks a stored item that is missing a required attribute
	// or holds one of the wrong type. The whole read call fails with it.
	ErrMalformedItem = errors.New("malformed todo item")

	// ErrDuplicateKey marks a key lookup that matched more than one item.
	ErrDuplicateKey = errors.New("more than one item found for key")

	// ErrNotFound is returned when updating a todo that does not exist.
	ErrNotFound = errors.New("todo not found")
)

// ServerError is the single error shape that crosses the RPC boundary.
// Only the display text of the original error survives.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s", e.Message)
}
