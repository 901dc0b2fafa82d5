// Package storage provides a unified client over four heterogeneous storage
// primitives: record tables, binary object storage, a message queue, and a
// flat contract file share.
//
// All four backends are AWS services reachable through a single credential:
//
//   - Customer and product records live in two DynamoDB tables keyed by
//     (PartitionKey, RowKey), with a fixed partition literal per entity type.
//   - Product images live in an S3 bucket created with a best-effort
//     public-read policy; uploads return directly resolvable URLs.
//   - Retail events flow through an SQS queue. Message text is stored as
//     standard base64 of its UTF-8 bytes; reads decode with a raw-text
//     fallback so a malformed payload never surfaces as an error.
//   - Contract files live in a second S3 bucket with a flat root; listing
//     filters out pseudo-directory entries.
//
// # Construction
//
// A Client is built once from an immutable Config and derives lightweight
// per-service handles from one shared session:
//
//	store, err := storage.New(storage.Config{
//		Region:    "us-east-1",
//		AccessKey: key,
//		SecretKey: secret,
//	}, logger)
//
// Resource names default to well-known values ("Customers", "Products",
// "product-images", "retail-events", "contracts") and can be overridden.
//
// # Resource provisioning
//
// EnsureResources creates every backing resource if absent and is safe to
// call any number of times. Setting the image bucket's public access policy
// is best effort: a failure there is logged and swallowed because bucket
// creation already requested public access.
//
// # Errors
//
// Backend failures map onto three sentinels checked with errors.Is:
// ErrUnavailable (backend unreachable or rejecting transiently), ErrNotFound
// (referenced object missing on read), and ErrConflict (duplicate row key,
// which correct identifier generation makes unreachable in practice).
// Queue payload decode failures are absorbed, never returned.
package storage
