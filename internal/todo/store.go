package todo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// ItemStore is the subset of the DynamoDB API the application uses.
// *dynamodb.Client satisfies it, as do the emulated stores in internal/itemstore.
type ItemStore interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Connector produces a configured handle to the item store.
// Implementations build a fresh handle on every call; nothing is pooled or cached.
type Connector interface {
	Connect(ctx context.Context) (ItemStore, error)
}

// Repository provides typed CRUD operations on todos.
type Repository interface {
	// GetAll returns up to one scan page of todos, in store order.
	GetAll(ctx context.Context) ([]Todo, error)

	// GetByID returns the todo with the given id, or nil if none exists.
	GetByID(ctx context.Context, id string) (*Todo, error)

	// Insert writes all four fields, overwriting any existing todo with the same id.
	Insert(ctx context.Context, t Todo) error

	// Update writes the title and description of an existing todo.
	// Returns ErrNotFound when no todo has the given id.
	Update(ctx context.Context, t Todo) error

	// Delete removes the todo with the given id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
