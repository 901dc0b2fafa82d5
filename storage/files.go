package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
)

// UploadContract ensures the contract bucket exists and writes content
// under name in its flat root. The content length is declared up front and
// an existing file with the same name is overwritten.
func (c *Client) UploadContract(ctx context.Context, name string, content []byte) error {
	err := c.uploadContract(ctx, name, content)
	c.metrics.observe("upload_contract", "files", err)
	return err
}

func (c *Client) uploadContract(ctx context.Context, name string, content []byte) error {
	if err := c.ensureBucket(ctx, c.cfg.ContractBucket); err != nil {
		return err
	}

	_, err := c.blobs.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.cfg.ContractBucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
	})
	if err != nil {
		return fmt.Errorf("upload contract %s: %w", name, classify(err))
	}

	c.log.Debug("Uploaded contract",
		slog.String("bucket", c.cfg.ContractBucket),
		slog.String("name", name),
		slog.Int("size", len(content)))
	return nil
}

// ListContracts returns the names of all files in the share's root.
// Directory entries are excluded: listing with a delimiter surfaces
// anything nested as a common prefix, which is skipped.
func (c *Client) ListContracts(ctx context.Context) ([]string, error) {
	names, err := c.listContracts(ctx)
	c.metrics.observe("list_contracts", "files", err)
	return names, err
}

func (c *Client) listContracts(ctx context.Context) ([]string, error) {
	result, err := c.blobs.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(c.cfg.ContractBucket),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", classify(err))
	}

	names := make([]string, 0, len(result.Contents))
	for _, obj := range result.Contents {
		key := aws.StringValue(obj.Key)
		if strings.HasSuffix(key, "/") {
			continue
		}
		names = append(names, key)
	}
	return names, nil
}

// DownloadContract returns the full content of the named file as a
// readable, seekable reader. The content is buffered entirely in memory,
// which is acceptable because contract files are small. Returns ErrNotFound
// when the file does not exist.
func (c *Client) DownloadContract(ctx context.Context, name string) (io.ReadSeeker, error) {
	r, err := c.downloadContract(ctx, name)
	c.metrics.observe("download_contract", "files", err)
	return r, err
}

func (c *Client) downloadContract(ctx context.Context, name string) (io.ReadSeeker, error) {
	result, err := c.blobs.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.ContractBucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("download contract %s: %w", name, classify(err))
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract %s: %w", name, err)
	}

	c.log.Debug("Downloaded contract",
		slog.String("bucket", c.cfg.ContractBucket),
		slog.String("name", name),
		slog.Int("size", len(data)))
	return bytes.NewReader(data), nil
}
