package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
)

// UploadImage ensures the image bucket exists, writes content under name
// with the given content type, and returns the object's publicly resolvable
// URL. An existing object with the same name is overwritten silently.
func (c *Client) UploadImage(ctx context.Context, name string, content []byte, contentType string) (string, error) {
	url, err := c.uploadImage(ctx, name, content, contentType)
	c.metrics.observe("upload_image", "blobs", err)
	return url, err
}

func (c *Client) uploadImage(ctx context.Context, name string, content []byte, contentType string) (string, error) {
	if err := c.ensureBucket(ctx, c.cfg.ImageBucket); err != nil {
		return "", err
	}

	_, err := c.blobs.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.ImageBucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
		ACL:         aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return "", fmt.Errorf("upload image %s: %w", name, classify(err))
	}

	url := c.objectURL(c.cfg.ImageBucket, name)
	c.log.Debug("Uploaded image",
		slog.String("bucket", c.cfg.ImageBucket),
		slog.String("key", name),
		slog.Int("size", len(content)),
		slog.String("url", url))
	return url, nil
}

// ListImageURLs lists every object in the image bucket and returns its
// resolvable URL, in backend order.
func (c *Client) ListImageURLs(ctx context.Context) ([]string, error) {
	urls, err := c.listImageURLs(ctx)
	c.metrics.observe("list_images", "blobs", err)
	return urls, err
}

func (c *Client) listImageURLs(ctx context.Context) ([]string, error) {
	result, err := c.blobs.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.cfg.ImageBucket),
	})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", classify(err))
	}

	urls := make([]string, 0, len(result.Contents))
	for _, obj := range result.Contents {
		urls = append(urls, c.objectURL(c.cfg.ImageBucket, aws.StringValue(obj.Key)))
	}
	return urls, nil
}

// objectURL builds the resolvable address of an object. Custom endpoints use
// path-style addressing to stay compatible with S3 work-alikes.
func (c *Client) objectURL(bucket, key string) string {
	if c.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.cfg.Endpoint, "/"), bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, c.cfg.Region, key)
}
