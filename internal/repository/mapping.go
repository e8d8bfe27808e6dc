package repository

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"todo-go/internal/todo"
)

// Attribute names of a stored todo item.
const (
	attrID          = "id"
	attrTitle       = "title"
	attrDescription = "description"
	attrCreated     = "created"
)

// itemFromTodo builds the full attribute map for a todo.
func itemFromTodo(t todo.Todo) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrID:          &types.AttributeValueMemberS{Value: t.ID},
		attrTitle:       &types.AttributeValueMemberS{Value: t.Title},
		attrDescription: &types.AttributeValueMemberS{Value: t.Description},
		attrCreated:     &types.AttributeValueMemberN{Value: strconv.FormatInt(t.CreatedMillis(), 10)},
	}
}

// keyFor builds the primary key of the item holding the todo with the given id.
func keyFor(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrID: &types.AttributeValueMemberS{Value: id},
	}
}

// todoFromItem decodes a stored item. Every attribute must be present with
// the expected type; otherwise the error wraps todo.ErrMalformedItem.
func todoFromItem(it map[string]types.AttributeValue) (todo.Todo, error) {
	id, err := stringAttr(it, attrID)
	if err != nil {
		return todo.Todo{}, err
	}
	title, err := stringAttr(it, attrTitle)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("item %s: %w", id, err)
	}
	description, err := stringAttr(it, attrDescription)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("item %s: %w", id, err)
	}
	created, err := millisAttr(it, attrCreated)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("item %s: %w", id, err)
	}

	return todo.Todo{
		ID:          id,
		Title:       title,
		Description: description,
		Created:     created,
	}, nil
}

func todosFromItems(items []map[string]types.AttributeValue) ([]todo.Todo, error) {
	todos := make([]todo.Todo, 0, len(items))
	for _, it := range items {
		t, err := todoFromItem(it)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

func stringAttr(it map[string]types.AttributeValue, name string) (string, error) {
	value, ok := it[name]
	if !ok {
		return "", fmt.Errorf("%w: missing attribute %s", todo.ErrMalformedItem, name)
	}
	s, ok := value.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("%w: attribute %s is %T, want string", todo.ErrMalformedItem, name, value)
	}
	return s.Value, nil
}

func millisAttr(it map[string]types.AttributeValue, name string) (time.Time, error) {
	value, ok := it[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: missing attribute %s", todo.ErrMalformedItem, name)
	}
	n, ok := value.(*types.AttributeValueMemberN)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: attribute %s is %T, want number", todo.ErrMalformedItem, name, value)
	}
	millis, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: attribute %s: %v", todo.ErrMalformedItem, name, err)
	}
	return time.UnixMilli(millis).UTC(), nil
}
