package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"todo-go/internal/todo"
)

// ScanLimit caps the number of items GetAll returns. There is no cursor.
const ScanLimit = 20

// TodoRepository implements todo.Repository on top of a key-value item store.
// Every operation obtains a fresh store handle from the connector.
type TodoRepository struct {
	connector todo.Connector
	table     string
	logger    todo.Logger
}

// NewTodoRepository creates a repository for the given table.
func NewTodoRepository(connector todo.Connector, table string, logger todo.Logger) *TodoRepository {
	return &TodoRepository{
		connector: connector,
		table:     table,
		logger:    logger,
	}
}

// Table returns the name of the backing table.
func (r *TodoRepository) Table() string {
	return r.table
}

func (r *TodoRepository) connect(ctx context.Context) (todo.ItemStore, error) {
	store, err := r.connector.Connect(ctx)
	if err != nil {
		r.logger.Error("connecting to item store failed", "table", r.table, "error", err)
		return nil, fmt.Errorf("connecting to item store: %w", err)
	}
	return store, nil
}

// GetAll returns up to ScanLimit todos in store order.
func (r *TodoRepository) GetAll(ctx context.Context) ([]todo.Todo, error) {
	store, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("scanning todos", "table", r.table, "limit", ScanLimit)
	out, err := store.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
		Limit:     aws.Int32(ScanLimit),
	})
	if err != nil {
		r.logger.Error("scan failed", "table", r.table, "error", err)
		return nil, fmt.Errorf("scanning todos: %w", err)
	}

	todos, err := todosFromItems(out.Items)
	if err != nil {
		r.logger.Error("malformed item in scan", "table", r.table, "error", err)
		return nil, fmt.Errorf("scanning todos: %w", err)
	}
	return todos, nil
}

// GetByID returns the todo with the given id, or nil if none exists.
// More than one match is a data-integrity fault and returns todo.ErrDuplicateKey.
func (r *TodoRepository) GetByID(ctx context.Context, id string) (*todo.Todo, error) {
	store, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("querying todo", "table", r.table, "id", id)
	out, err := store.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: id},
		},
		Limit: aws.Int32(2),
	})
	if err != nil {
		r.logger.Error("query failed", "table", r.table, "id", id, "error", err)
		return nil, fmt.Errorf("querying todo %s: %w", id, err)
	}

	switch len(out.Items) {
	case 0:
		return nil, nil // Not found
	case 1:
		t, err := todoFromItem(out.Items[0])
		if err != nil {
			r.logger.Error("malformed item in query", "table", r.table, "id", id, "error", err)
			return nil, fmt.Errorf("querying todo %s: %w", id, err)
		}
		return &t, nil
	default:
		r.logger.Error("duplicate key", "table", r.table, "id", id, "count", len(out.Items))
		return nil, fmt.Errorf("querying todo %s: %w", id, todo.ErrDuplicateKey)
	}
}

// Insert writes the todo, overwriting any item with the same id.
func (r *TodoRepository) Insert(ctx context.Context, t todo.Todo) error {
	store, err := r.connect(ctx)
	if err != nil {
		return err
	}

	r.logger.Debug("putting todo", "table", r.table, "id", t.ID)
	_, err = store.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      itemFromTodo(t),
	})
	if err != nil {
		r.logger.Error("put failed", "table", r.table, "id", t.ID, "error", err)
		return fmt.Errorf("inserting todo %s: %w", t.ID, err)
	}
	return nil
}

// Update writes the title and description of an existing todo. The id and
// creation time are left untouched. Returns todo.ErrNotFound when no item has
// the todo's id; nothing is written in that case.
func (r *TodoRepository) Update(ctx context.Context, t todo.Todo) error {
	store, err := r.connect(ctx)
	if err != nil {
		return err
	}

	r.logger.Debug("updating todo", "table", r.table, "id", t.ID)
	_, err = store.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 keyFor(t.ID),
		UpdateExpression:    aws.String("SET title = :title, description = :description"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":title":       &types.AttributeValueMemberS{Value: t.Title},
			":description": &types.AttributeValueMemberS{Value: t.Description},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			r.logger.Warn("update of missing todo", "table", r.table, "id", t.ID)
			return fmt.Errorf("updating todo %s: %w", t.ID, todo.ErrNotFound)
		}
		r.logger.Error("update failed", "table", r.table, "id", t.ID, "error", err)
		return fmt.Errorf("updating todo %s: %w", t.ID, err)
	}
	return nil
}

// Delete removes the todo with the given id. A missing id is not an error.
func (r *TodoRepository) Delete(ctx context.Context, id string) error {
	store, err := r.connect(ctx)
	if err != nil {
		return err
	}

	r.logger.Debug("deleting todo", "table", r.table, "id", id)
	_, err = store.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       keyFor(id),
	})
	if err != nil {
		r.logger.Error("delete failed", "table", r.table, "id", id, "error", err)
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}
	return nil
}

// Compile-time check that TodoRepository implements todo.Repository interface
var _ todo.Repository = (*TodoRepository)(nil)
