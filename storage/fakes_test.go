package storage

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

// The fakes embed the SDK interface types and override only the methods the
// client calls, backed by in-memory state.

type fakeTables struct {
	dynamodbiface.DynamoDBAPI

	mu          sync.Mutex
	rows        map[string][]map[string]*dynamodb.AttributeValue
	createCalls int

	createErr error
	queryErr  error
	putErr    error
}

func newFakeTables() *fakeTables {
	return &fakeTables{rows: make(map[string][]map[string]*dynamodb.AttributeValue)}
}

func (f *fakeTables) CreateTableWithContext(_ aws.Context, in *dynamodb.CreateTableInput, _ ...request.Option) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	name := aws.StringValue(in.TableName)
	if _, ok := f.rows[name]; ok {
		return nil, awserr.New(dynamodb.ErrCodeResourceInUseException, "table exists", nil)
	}
	f.rows[name] = nil
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeTables) QueryWithContext(_ aws.Context, in *dynamodb.QueryInput, _ ...request.Option) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	pk := aws.StringValue(in.ExpressionAttributeValues[":pk"].S)
	var items []map[string]*dynamodb.AttributeValue
	for _, row := range f.rows[aws.StringValue(in.TableName)] {
		if aws.StringValue(row["PartitionKey"].S) == pk {
			items = append(items, row)
		}
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func (f *fakeTables) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	name := aws.StringValue(in.TableName)
	rowKey := aws.StringValue(in.Item["RowKey"].S)
	for _, row := range f.rows[name] {
		if aws.StringValue(row["RowKey"].S) == rowKey {
			return nil, awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "duplicate row key", nil)
		}
	}
	f.rows[name] = append(f.rows[name], in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

type fakeObject struct {
	data        []byte
	contentType string
}

type fakeBlobs struct {
	s3iface.S3API

	mu      sync.Mutex
	buckets map[string]map[string]fakeObject

	createCalls int
	policyCalls int

	createErr error
	policyErr error
	putErr    error
	listErr   error
	getErr    error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{buckets: make(map[string]map[string]fakeObject)}
}

func (f *fakeBlobs) CreateBucketWithContext(_ aws.Context, in *s3.CreateBucketInput, _ ...request.Option) (*s3.CreateBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	name := aws.StringValue(in.Bucket)
	if _, ok := f.buckets[name]; ok {
		return nil, awserr.New(s3.ErrCodeBucketAlreadyOwnedByYou, "bucket exists", nil)
	}
	f.buckets[name] = make(map[string]fakeObject)
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeBlobs) PutBucketPolicyWithContext(_ aws.Context, _ *s3.PutBucketPolicyInput, _ ...request.Option) (*s3.PutBucketPolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.policyCalls++
	if f.policyErr != nil {
		return nil, f.policyErr
	}
	return &s3.PutBucketPolicyOutput{}, nil
}

func (f *fakeBlobs) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	name := aws.StringValue(in.Bucket)
	if f.buckets[name] == nil {
		f.buckets[name] = make(map[string]fakeObject)
	}
	f.buckets[name][aws.StringValue(in.Key)] = fakeObject{
		data:        data,
		contentType: aws.StringValue(in.ContentType),
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeBlobs) ListObjectsV2WithContext(_ aws.Context, in *s3.ListObjectsV2Input, _ ...request.Option) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	bucket := f.buckets[aws.StringValue(in.Bucket)]
	keys := make([]string, 0, len(bucket))
	for key := range bucket {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	delimiter := aws.StringValue(in.Delimiter)
	prefixes := map[string]bool{}
	for _, key := range keys {
		if delimiter != "" {
			if i := strings.Index(key, delimiter); i >= 0 {
				prefixes[key[:i+1]] = true
				continue
			}
		}
		out.Contents = append(out.Contents, &s3.Object{
			Key:  aws.String(key),
			Size: aws.Int64(int64(len(bucket[key].data))),
		})
	}
	for p := range prefixes {
		out.CommonPrefixes = append(out.CommonPrefixes, &s3.CommonPrefix{Prefix: aws.String(p)})
	}
	return out, nil
}

func (f *fakeBlobs) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	obj, ok := f.buckets[aws.StringValue(in.Bucket)][aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil)
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(string(obj.data))),
		ContentLength: aws.Int64(int64(len(obj.data))),
	}, nil
}

type fakeMessage struct {
	id   string
	body string
}

type fakeQueue struct {
	sqsiface.SQSAPI

	mu       sync.Mutex
	visible  []fakeMessage
	inflight map[string]fakeMessage
	nextID   int

	createCalls int

	createErr  error
	sendErr    error
	receiveErr error
	deleteErr  error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{inflight: make(map[string]fakeMessage)}
}

const fakeQueueURL = "https://sqs.local/retail-events"

func (f *fakeQueue) CreateQueueWithContext(_ aws.Context, _ *sqs.CreateQueueInput, _ ...request.Option) (*sqs.CreateQueueOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &sqs.CreateQueueOutput{QueueUrl: aws.String(fakeQueueURL)}, nil
}

func (f *fakeQueue) SendMessageWithContext(_ aws.Context, in *sqs.SendMessageInput, _ ...request.Option) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	f.visible = append(f.visible, fakeMessage{
		id:   fmt.Sprintf("msg-%d", f.nextID),
		body: aws.StringValue(in.MessageBody),
	})
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeQueue) ReceiveMessageWithContext(_ aws.Context, in *sqs.ReceiveMessageInput, _ ...request.Option) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	max := int(aws.Int64Value(in.MaxNumberOfMessages))
	if max < 1 {
		max = 1
	}
	peek := in.VisibilityTimeout != nil && aws.Int64Value(in.VisibilityTimeout) == 0

	out := &sqs.ReceiveMessageOutput{}
	taken := 0
	remaining := f.visible[:0:0]
	for _, m := range f.visible {
		if taken >= max {
			remaining = append(remaining, m)
			continue
		}
		taken++
		out.Messages = append(out.Messages, &sqs.Message{
			MessageId:     aws.String(m.id),
			Body:          aws.String(m.body),
			ReceiptHandle: aws.String("rh-" + m.id),
		})
		if peek {
			remaining = append(remaining, m)
		} else {
			f.inflight["rh-"+m.id] = m
		}
	}
	f.visible = remaining
	return out, nil
}

func (f *fakeQueue) DeleteMessageWithContext(_ aws.Context, in *sqs.DeleteMessageInput, _ ...request.Option) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	handle := aws.StringValue(in.ReceiptHandle)
	if _, ok := f.inflight[handle]; !ok {
		return nil, awserr.New(sqs.ErrCodeReceiptHandleIsInvalid, "unknown receipt handle", nil)
	}
	delete(f.inflight, handle)
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeQueue) GetQueueAttributesWithContext(_ aws.Context, _ *sqs.GetQueueAttributesInput, _ ...request.Option) (*sqs.GetQueueAttributesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &sqs.GetQueueAttributesOutput{
		Attributes: map[string]*string{
			sqs.QueueAttributeNameApproximateNumberOfMessages: aws.String(strconv.Itoa(len(f.visible))),
		},
	}, nil
}

// newTestClient builds a Client wired to fresh fakes and a discarded logger.
func newTestClient(t *testing.T) (*Client, *fakeTables, *fakeBlobs, *fakeQueue) {
	t.Helper()
	tables := newFakeTables()
	blobs := newFakeBlobs()
	queue := newFakeQueue()
	c := &Client{
		cfg:    Config{}.withDefaults(),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		tables: tables,
		blobs:  blobs,
		queue:  queue,
	}
	return c, tables, blobs, queue
}
