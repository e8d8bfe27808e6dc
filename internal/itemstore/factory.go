package itemstore

import (
	"context"
	"fmt"

	"todo-go/internal/config"
	"todo-go/internal/todo"
)

// NewConnectorFromConfig creates a Connector implementation based on the store config type.
// Connectors that hold resources (sqlite) also implement io.Closer.
func NewConnectorFromConfig(cfg config.StoreConfig, logger todo.Logger) (todo.Connector, error) {
	switch cfg.Type {
	case "dynamodb", "":
		return NewDynamoConnector(DynamoOptions{
			LocalEndpoint: cfg.LocalEndpoint,
			Region:        cfg.Region,
		}, logger), nil
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite_path required for sqlite store")
		}
		c, err := NewSQLiteConnector(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "memory":
		// Nothing outlives the process, so the table is created up front.
		table := cfg.Table
		if table == "" {
			table = config.DefaultTable
		}
		c := NewMemoryConnector()
		if err := c.backend.createTable(context.Background(), table, HashKey); err != nil {
			return nil, fmt.Errorf("creating memory table %s: %w", table, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
