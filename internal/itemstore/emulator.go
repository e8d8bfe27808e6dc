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

type item = map[string]types.AttributeValue

var (
	errNoTable     = errors.New("table does not exist")
	errTableExists = errors.New("table already exists")
)

// backend is the raw key/value table storage behind an Emulator.
// Items are keyed by the string value of the table's hash key.
type backend interface {
	createTable(ctx context.Context, table, hashKey string) error
	hashKey(ctx context.Context, table string) (string, error)
	// scan returns up to limit items in key order (limit <= 0 means all) and
	// whether more items remain.
	scan(ctx context.Context, table string, limit int) ([]item, bool, error)
	get(ctx context.Context, table, key string) (item, error)
	// mutate atomically replaces the item under key with fn's result.
	// current is nil when no item exists; a nil result deletes the item.
	mutate(ctx context.Context, table, key string, fn func(current item) (item, error)) error
}

// Emulator serves the DynamoDB API subset in todo.ItemStore on top of a backend.
type Emulator struct {
	b backend
}

func newEmulator(b backend) *Emulator {
	return &Emulator{b: b}
}

func (e *Emulator) Scan(ctx context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	table := aws.ToString(params.TableName)
	hashKey, err := e.hashKey(ctx, table)
	if err != nil {
		return nil, err
	}

	items, more, err := e.b.scan(ctx, table, int(aws.ToInt32(params.Limit)))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", table, err)
	}

	out := &dynamodb.ScanOutput{
		Items:        items,
		Count:        int32(len(items)),
		ScannedCount: int32(len(items)),
	}
	if more && len(items) > 0 {
		last := items[len(items)-1]
		out.LastEvaluatedKey = item{hashKey: last[hashKey]}
	}
	return out, nil
}

func (e *Emulator) Query(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	table := aws.ToString(params.TableName)
	hashKey, err := e.hashKey(ctx, table)
	if err != nil {
		return nil, err
	}
	if params.Limit != nil && *params.Limit < 1 {
		return nil, validationError("limit must be at least 1")
	}

	attr, value, err := parseKeyCondition(aws.ToString(params.KeyConditionExpression), params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	if attr != hashKey {
		return nil, validationError("query condition must use the hash key %s, got %s", hashKey, attr)
	}
	key, err := keyString(value, hashKey)
	if err != nil {
		return nil, err
	}

	found, err := e.b.get(ctx, table, key)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}

	items := []item{}
	if found != nil {
		items = append(items, found)
	}
	return &dynamodb.QueryOutput{
		Items:        items,
		Count:        int32(len(items)),
		ScannedCount: int32(len(items)),
	}, nil
}

func (e *Emulator) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	table := aws.ToString(params.TableName)
	hashKey, err := e.hashKey(ctx, table)
	if err != nil {
		return nil, err
	}
	key, err := keyString(params.Item[hashKey], hashKey)
	if err != nil {
		return nil, err
	}

	next := copyItem(params.Item)
	err = e.b.mutate(ctx, table, key, func(current item) (item, error) {
		if err := checkCondition(params.ConditionExpression, params.ExpressionAttributeNames, current); err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (e *Emulator) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	table := aws.ToString(params.TableName)
	hashKey, err := e.hashKey(ctx, table)
	if err != nil {
		return nil, err
	}
	key, err := keyString(params.Key[hashKey], hashKey)
	if err != nil {
		return nil, err
	}
	assignments, err := parseSetExpression(aws.ToString(params.UpdateExpression), params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	for _, a := range assignments {
		if a.attr == hashKey {
			return nil, validationError("cannot update attribute %s: it is part of the key", hashKey)
		}
	}

	err = e.b.mutate(ctx, table, key, func(current item) (item, error) {
		if err := checkCondition(params.ConditionExpression, params.ExpressionAttributeNames, current); err != nil {
			return nil, err
		}
		// Like DynamoDB, an update of a missing key creates the item.
		next := copyItem(current)
		if next == nil {
			next = item{hashKey: params.Key[hashKey]}
		}
		for _, a := range assignments {
			next[a.attr] = a.value
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (e *Emulator) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	table := aws.ToString(params.TableName)
	hashKey, err := e.hashKey(ctx, table)
	if err != nil {
		return nil, err
	}
	key, err := keyString(params.Key[hashKey], hashKey)
	if err != nil {
		return nil, err
	}

	err = e.b.mutate(ctx, table, key, func(current item) (item, error) {
		if err := checkCondition(params.ConditionExpression, params.ExpressionAttributeNames, current); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (e *Emulator) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	table := aws.ToString(params.TableName)
	var hashKey string
	for _, k := range params.KeySchema {
		if k.KeyType == types.KeyTypeHash {
			hashKey = aws.ToString(k.AttributeName)
		} else {
			return nil, validationError("only hash keys are supported, got %s key %s", k.KeyType, aws.ToString(k.AttributeName))
		}
	}
	if hashKey == "" {
		return nil, validationError("table %s needs a hash key", table)
	}

	if err := e.b.createTable(ctx, table, hashKey); err != nil {
		if errors.Is(err, errTableExists) {
			return nil, &types.ResourceInUseException{Message: aws.String("Table already exists: " + table)}
		}
		return nil, fmt.Errorf("creating table %s: %w", table, err)
	}
	return &dynamodb.CreateTableOutput{
		TableDescription: &types.TableDescription{
			TableName:   aws.String(table),
			TableStatus: types.TableStatusActive,
			KeySchema:   params.KeySchema,
		},
	}, nil
}

func (e *Emulator) hashKey(ctx context.Context, table string) (string, error) {
	hashKey, err := e.b.hashKey(ctx, table)
	if errors.Is(err, errNoTable) {
		return "", &types.ResourceNotFoundException{Message: aws.String("Requested resource not found: " + table)}
	}
	if err != nil {
		return "", fmt.Errorf("describing table %s: %w", table, err)
	}
	return hashKey, nil
}

func checkCondition(expr *string, names map[string]string, current item) error {
	ok, err := evalCondition(aws.ToString(expr), names, current)
	if err != nil {
		return err
	}
	if !ok {
		return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	return nil
}

func keyString(value types.AttributeValue, hashKey string) (string, error) {
	s, ok := value.(*types.AttributeValueMemberS)
	if !ok {
		return "", validationError("missing or non-string key attribute %s", hashKey)
	}
	return s.Value, nil
}

func copyItem(src item) item {
	if src == nil {
		return nil
	}
	dst := make(item, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Compile-time check that Emulator implements todo.ItemStore interface
var _ todo.ItemStore = (*Emulator)(nil)
