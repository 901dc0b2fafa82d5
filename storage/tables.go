package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/google/uuid"
)

// newRowKey generates a fresh row key: a random identifier with no semantic
// meaning, rendered without dashes.
func newRowKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ListCustomers returns every customer row. Order is whatever the backend
// returns, not guaranteed sorted.
func (c *Client) ListCustomers(ctx context.Context) ([]CustomerEntity, error) {
	var list []CustomerEntity
	err := c.queryPartition(ctx, c.cfg.CustomersTable, customerPartition, &list)
	c.metrics.observe("list_customers", "tables", err)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// AddCustomer assigns the fixed partition key and a fresh row key, persists
// the record, and returns the stored copy.
func (c *Client) AddCustomer(ctx context.Context, rec CustomerEntity) (CustomerEntity, error) {
	rec.PartitionKey = customerPartition
	rec.RowKey = newRowKey()

	err := c.putRow(ctx, c.cfg.CustomersTable, rec)
	c.metrics.observe("add_customer", "tables", err)
	if err != nil {
		return CustomerEntity{}, err
	}

	c.log.Debug("Added customer",
		slog.String("table", c.cfg.CustomersTable),
		slog.String("rowKey", rec.RowKey))
	return rec, nil
}

// ListProducts returns every product row, in backend order.
func (c *Client) ListProducts(ctx context.Context) ([]ProductEntity, error) {
	var list []ProductEntity
	err := c.queryPartition(ctx, c.cfg.ProductsTable, productPartition, &list)
	c.metrics.observe("list_products", "tables", err)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// AddProduct assigns the fixed partition key and a fresh row key, persists
// the record, and returns the stored copy.
func (c *Client) AddProduct(ctx context.Context, rec ProductEntity) (ProductEntity, error) {
	rec.PartitionKey = productPartition
	rec.RowKey = newRowKey()

	err := c.putRow(ctx, c.cfg.ProductsTable, rec)
	c.metrics.observe("add_product", "tables", err)
	if err != nil {
		return ProductEntity{}, err
	}

	c.log.Debug("Added product",
		slog.String("table", c.cfg.ProductsTable),
		slog.String("rowKey", rec.RowKey))
	return rec, nil
}

// queryPartition materializes every row of one partition into out, which
// must be a pointer to a slice of the row type.
func (c *Client) queryPartition(ctx context.Context, table, partition string, out interface{}) error {
	result, err := c.tables.QueryWithContext(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		KeyConditionExpression: aws.String("PartitionKey = :pk"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":pk": {S: aws.String(partition)},
		},
	})
	if err != nil {
		return fmt.Errorf("query %s: %w", table, classify(err))
	}

	if err := dynamodbattribute.UnmarshalListOfMaps(result.Items, out); err != nil {
		return fmt.Errorf("failed to unmarshal rows from %s: %w", table, err)
	}
	return nil
}

// putRow writes a marshalled row, rejecting duplicate row keys. A duplicate
// should be impossible under random key generation; if the backend reports
// one anyway it surfaces as ErrConflict.
func (c *Client) putRow(ctx context.Context, table string, rec interface{}) error {
	item, err := dynamodbattribute.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal row: %w", err)
	}

	_, err = c.tables.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(RowKey)"),
	})
	if err != nil {
		return fmt.Errorf("put row into %s: %w", table, classify(err))
	}
	return nil
}
