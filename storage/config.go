package storage

// Default resource names, used when the corresponding Config field is empty.
const (
	DefaultCustomersTable = "Customers"
	DefaultProductsTable  = "Products"
	DefaultImageBucket    = "product-images"
	DefaultQueueName      = "retail-events"
	DefaultContractBucket = "contracts"
)

// Config holds the connection credential and backend resource names for a
// Client. It is resolved once at construction and never consulted again,
// so callers must treat it as immutable after passing it to New.
type Config struct {
	// Region selects the AWS region all four backends live in.
	Region string

	// Endpoint overrides the AWS endpoint, for S3-compatible or local
	// deployments. When set, S3 requests use path-style addressing.
	Endpoint string

	// AccessKey and SecretKey form the shared connection credential.
	// Empty values fall back to the SDK's default credential chain.
	AccessKey string
	SecretKey string

	CustomersTable string
	ProductsTable  string
	ImageBucket    string
	QueueName      string
	ContractBucket string
}

// withDefaults returns a copy of cfg with empty resource names replaced by
// their well-known defaults.
func (cfg Config) withDefaults() Config {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.CustomersTable == "" {
		cfg.CustomersTable = DefaultCustomersTable
	}
	if cfg.ProductsTable == "" {
		cfg.ProductsTable = DefaultProductsTable
	}
	if cfg.ImageBucket == "" {
		cfg.ImageBucket = DefaultImageBucket
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultQueueName
	}
	if cfg.ContractBucket == "" {
		cfg.ContractBucket = DefaultContractBucket
	}
	return cfg
}
