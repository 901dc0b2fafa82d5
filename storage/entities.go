package storage

// Partition key literals. Every row of an entity type carries its fixed
// literal so a single query retrieves the whole collection.
const (
	customerPartition = "Customer"
	productPartition  = "Product"
)

// CustomerEntity is one row of the customers table. PartitionKey and RowKey
// are assigned by AddCustomer and must not be set by callers.
type CustomerEntity struct {
	PartitionKey string `dynamodbav:"PartitionKey" json:"-"`
	RowKey       string `dynamodbav:"RowKey" json:"id"`
	FirstName    string `dynamodbav:"FirstName" json:"firstName"`
	LastName     string `dynamodbav:"LastName" json:"lastName"`
	Email        string `dynamodbav:"Email" json:"email"`
	Phone        string `dynamodbav:"Phone" json:"phone"`
}

// ProductEntity is one row of the products table. Key assignment follows the
// same convention as CustomerEntity.
type ProductEntity struct {
	PartitionKey string  `dynamodbav:"PartitionKey" json:"-"`
	RowKey       string  `dynamodbav:"RowKey" json:"id"`
	Name         string  `dynamodbav:"Name" json:"name"`
	SKU          string  `dynamodbav:"Sku" json:"sku"`
	Price        float64 `dynamodbav:"Price" json:"price"`
	Stock        int     `dynamodbav:"Stock" json:"stock"`
}
