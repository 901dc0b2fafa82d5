package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

// Client is the storage facade. It holds no per-request state: one session
// is created at construction and cheap per-service handles are derived from
// it, so concurrent use from multiple goroutines is safe.
type Client struct {
	cfg Config
	log *slog.Logger

	tables dynamodbiface.DynamoDBAPI
	blobs  s3iface.S3API
	queue  sqsiface.SQSAPI

	metrics *Metrics
}

// Option configures optional Client behavior.
type Option func(*Client)

// WithMetrics attaches operation counters to the client.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a storage client from the given configuration. Empty resource
// names receive their defaults; the credential is loaded once into a shared
// session. No network calls are made here.
func New(cfg Config, log *slog.Logger, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()

	awsCfg := aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(&awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	c := &Client{
		cfg:    cfg,
		log:    log,
		tables: dynamodb.New(sess),
		blobs:  s3.New(sess),
		queue:  sqs.New(sess),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the resolved configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// EnsureResources creates every backing resource if absent: both tables,
// both buckets, and the queue. Creation uses if-absent semantics throughout,
// so the call is safe to repeat. Setting the image bucket's public access
// policy is best effort and a failure there is only logged: creation already
// requested public access.
func (c *Client) EnsureResources(ctx context.Context) error {
	for _, table := range []string{c.cfg.CustomersTable, c.cfg.ProductsTable} {
		if err := c.ensureTable(ctx, table); err != nil {
			return err
		}
	}

	if err := c.ensureBucket(ctx, c.cfg.ImageBucket); err != nil {
		return err
	}
	if err := c.setPublicReadPolicy(ctx, c.cfg.ImageBucket); err != nil {
		c.log.Warn("Failed to set public access policy, continuing",
			slog.String("bucket", c.cfg.ImageBucket),
			"err", err)
	}

	if _, err := c.queueURL(ctx); err != nil {
		return err
	}

	return c.ensureBucket(ctx, c.cfg.ContractBucket)
}

func (c *Client) ensureTable(ctx context.Context, name string) error {
	_, err := c.tables.CreateTableWithContext(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(name),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{AttributeName: aws.String("PartitionKey"), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
			{AttributeName: aws.String("RowKey"), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{AttributeName: aws.String("PartitionKey"), KeyType: aws.String(dynamodb.KeyTypeHash)},
			{AttributeName: aws.String("RowKey"), KeyType: aws.String(dynamodb.KeyTypeRange)},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
	})
	if err != nil {
		if isAlreadyExists(err) {
			return nil
		}
		return fmt.Errorf("create table %s: %w", name, classify(err))
	}

	c.log.Info("Created table", slog.String("table", name))
	return nil
}

func (c *Client) ensureBucket(ctx context.Context, name string) error {
	_, err := c.blobs.CreateBucketWithContext(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		if isAlreadyExists(err) {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", name, classify(err))
	}

	c.log.Info("Created bucket", slog.String("bucket", name))
	return nil
}

func (c *Client) setPublicReadPolicy(ctx context.Context, bucket string) error {
	policy := fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [{
    "Sid": "PublicRead",
    "Effect": "Allow",
    "Principal": "*",
    "Action": "s3:GetObject",
    "Resource": "arn:aws:s3:::%s/*"
  }]
}`, bucket)

	_, err := c.blobs.PutBucketPolicyWithContext(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucket),
		Policy: aws.String(policy),
	})
	return err
}

// queueURL resolves the queue's URL, creating the queue when absent.
// CreateQueue is idempotent for an existing queue with identical attributes
// and returns its URL either way.
func (c *Client) queueURL(ctx context.Context) (string, error) {
	out, err := c.queue.CreateQueueWithContext(ctx, &sqs.CreateQueueInput{
		QueueName: aws.String(c.cfg.QueueName),
	})
	if err != nil {
		return "", fmt.Errorf("ensure queue %s: %w", c.cfg.QueueName, classify(err))
	}
	return aws.StringValue(out.QueueUrl), nil
}
