package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/sqs"
)

// Sentinel errors for the client's failure taxonomy. Callers match them
// with errors.Is.
var (
	// ErrUnavailable indicates the backend could not be reached or
	// rejected the request for transient reasons. Not retried here.
	ErrUnavailable = errors.New("storage backend unavailable")

	// ErrNotFound indicates the referenced object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrConflict indicates the backend rejected a duplicate key.
	ErrConflict = errors.New("key already exists")
)

// classify maps an AWS SDK error onto the sentinel taxonomy. Unknown codes
// are treated as unavailability: anything the backend did not answer
// normally is, from the caller's point of view, a backend it cannot use.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case dynamodb.ErrCodeConditionalCheckFailedException:
			return fmt.Errorf("%w: %v", ErrConflict, err)
		case s3.ErrCodeNoSuchKey,
			s3.ErrCodeNoSuchBucket,
			dynamodb.ErrCodeResourceNotFoundException,
			sqs.ErrCodeQueueDoesNotExist,
			"NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// isAlreadyExists reports whether err is a create-time signal that the
// resource was already there, which EnsureResources treats as success.
func isAlreadyExists(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case dynamodb.ErrCodeResourceInUseException,
		s3.ErrCodeBucketAlreadyExists,
		s3.ErrCodeBucketAlreadyOwnedByYou,
		sqs.ErrCodeQueueNameExists:
		return true
	}
	return false
}
