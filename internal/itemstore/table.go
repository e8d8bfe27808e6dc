package itemstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"todo-go/internal/todo"
)

// HashKey is the primary key attribute of the todo table.
const HashKey = "id"

// EnsureTable creates the todo table with a string hash key and on-demand
// billing. It returns created=false when the table already exists.
func EnsureTable(ctx context.Context, store todo.ItemStore, table string) (bool, error) {
	_, err := store.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(HashKey), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(HashKey), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return false, nil
		}
		return false, fmt.Errorf("creating table %s: %w", table, err)
	}
	return true, nil
}
