package testutil

import (
	"context"
	"testing"

	"todo-go/internal/itemstore"
	"todo-go/internal/todo"
)

// TestTable is the table name used by store helpers.
const TestTable = "TodoTable"

// NewTestConnector creates an in-memory item store connector with the todo
// table already created.
func NewTestConnector(t *testing.T) *itemstore.MemoryConnector {
	t.Helper()

	c := itemstore.NewMemoryConnector()
	createTable(t, c)
	return c
}

// NewTestSQLiteConnector creates an in-memory SQLite connector with the todo
// table already created. The connection is closed when the test completes.
func NewTestSQLiteConnector(t *testing.T) *itemstore.SQLiteConnector {
	t.Helper()

	c, err := itemstore.NewSQLiteConnector(":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		c.Close()
	})
	createTable(t, c)
	return c
}

func createTable(t *testing.T, c todo.Connector) {
	t.Helper()

	store, err := c.Connect(context.Background())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if _, err := itemstore.EnsureTable(context.Background(), store, TestTable); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
}
