package itemstore

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"todo-go/internal/todo"
)

const (
	// LocalFlagEnv names the environment variable that selects the local
	// DynamoDB endpoint when it is set to "true".
	LocalFlagEnv = "local"

	DefaultLocalEndpoint = "http://localhost:8000"
	DefaultRegion        = "eu-west-1"

	localCredential = "DEMO"
)

// DynamoOptions configures a DynamoConnector. Zero values fall back to the defaults above.
type DynamoOptions struct {
	LocalEndpoint string
	Region        string
}

// DynamoConnector builds DynamoDB clients, either against a local endpoint
// with placeholder credentials or against AWS with ambient credentials.
type DynamoConnector struct {
	endpoint string
	region   string
	logger   todo.Logger
	getenv   func(string) string
}

// NewDynamoConnector creates a connector reading the local flag from the process environment.
func NewDynamoConnector(opts DynamoOptions, logger todo.Logger) *DynamoConnector {
	endpoint := opts.LocalEndpoint
	if endpoint == "" {
		endpoint = DefaultLocalEndpoint
	}
	region := opts.Region
	if region == "" {
		region = DefaultRegion
	}
	return &DynamoConnector{
		endpoint: endpoint,
		region:   region,
		logger:   logger,
		getenv:   os.Getenv,
	}
}

// IsLocal reports whether the local flag is set. An unset flag reads as "local",
// which does not select the local endpoint; only "true" does.
func (c *DynamoConnector) IsLocal() bool {
	flag := c.getenv(LocalFlagEnv)
	if flag == "" {
		flag = "local"
	}
	return flag == "true"
}

// Connect loads the AWS configuration and returns a new DynamoDB client.
// Configuration errors are returned as-is; there is no retry.
func (c *DynamoConnector) Connect(ctx context.Context) (todo.ItemStore, error) {
	if c.IsLocal() {
		return c.connectLocal(ctx)
	}
	return c.connectRemote(ctx)
}

func (c *DynamoConnector) connectLocal(ctx context.Context) (todo.ItemStore, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(localCredential, localCredential, localCredential)),
	)
	if err != nil {
		return nil, fmt.Errorf("loading local aws config: %w", err)
	}

	c.logger.Debug("local dynamodb connection", "endpoint", c.endpoint)
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(c.endpoint)
	}), nil
}

func (c *DynamoConnector) connectRemote(ctx context.Context) (todo.ItemStore, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	if awsCfg.Region == "" {
		awsCfg.Region = c.region
	}

	c.logger.Debug("aws dynamodb connection", "region", awsCfg.Region)
	return dynamodb.NewFromConfig(awsCfg), nil
}

// Compile-time check that DynamoConnector implements todo.Connector interface
var _ todo.Connector = (*DynamoConnector)(nil)
