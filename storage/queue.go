package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
)

// receiveBatchMax is the backend's hard cap on messages per receive call.
const receiveBatchMax = 10

// EnqueueMessage ensures the queue exists, encodes text into the wire
// representation, and submits it. There is no acknowledgement beyond the
// backend accepting the send.
func (c *Client) EnqueueMessage(ctx context.Context, text string) error {
	err := c.enqueueMessage(ctx, text)
	c.metrics.observe("enqueue", "queue", err)
	return err
}

func (c *Client) enqueueMessage(ctx context.Context, text string) error {
	url, err := c.queueURL(ctx)
	if err != nil {
		return err
	}

	_, err = c.queue.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(url),
		MessageBody: aws.String(EncodeMessage(text)),
	})
	if err != nil {
		return fmt.Errorf("enqueue message: %w", classify(err))
	}

	c.log.Debug("Enqueued message", slog.String("queue", c.cfg.QueueName))
	return nil
}

// PeekMessages retrieves up to maxCount messages without removing them,
// decoded from the wire representation. A payload that fails to decode is
// returned as its raw wire text; decoding never produces an error. The
// backend caps a single read at ten messages, so maxCount is clamped to
// that. Order is as the backend presents it.
func (c *Client) PeekMessages(ctx context.Context, maxCount int) ([]string, error) {
	msgs, err := c.peekMessages(ctx, maxCount)
	c.metrics.observe("peek", "queue", err)
	return msgs, err
}

func (c *Client) peekMessages(ctx context.Context, maxCount int) ([]string, error) {
	if maxCount < 1 {
		maxCount = 1
	}
	if maxCount > receiveBatchMax {
		maxCount = receiveBatchMax
	}

	url, err := c.queueURL(ctx)
	if err != nil {
		return nil, err
	}

	// A zero visibility timeout leaves the messages visible to other
	// receivers, which is as close to a non-destructive peek as the
	// backend offers.
	result, err := c.queue.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(url),
		MaxNumberOfMessages: aws.Int64(int64(maxCount)),
		VisibilityTimeout:   aws.Int64(0),
	})
	if err != nil {
		return nil, fmt.Errorf("peek messages: %w", classify(err))
	}

	texts := make([]string, 0, len(result.Messages))
	for _, m := range result.Messages {
		text, ok := DecodeMessage(aws.StringValue(m.Body))
		if !ok {
			c.log.Debug("Message payload failed to decode, returning raw text",
				slog.String("queue", c.cfg.QueueName))
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// DequeueAndDelete receives up to count messages and permanently deletes
// each one, returning the number actually removed. Receiving hides a
// message from other consumers for the backend's visibility window; a crash
// between receive and delete leaves it receivable again after the window,
// which is the backend's native at-least-once behavior and is deliberately
// not papered over here.
func (c *Client) DequeueAndDelete(ctx context.Context, count int) (int, error) {
	removed, err := c.dequeueAndDelete(ctx, count)
	c.metrics.observe("dequeue", "queue", err)
	return removed, err
}

func (c *Client) dequeueAndDelete(ctx context.Context, count int) (int, error) {
	url, err := c.queueURL(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for removed < count {
		batch := count - removed
		if batch > receiveBatchMax {
			batch = receiveBatchMax
		}

		result, err := c.queue.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(url),
			MaxNumberOfMessages: aws.Int64(int64(batch)),
		})
		if err != nil {
			return removed, fmt.Errorf("dequeue messages: %w", classify(err))
		}
		if len(result.Messages) == 0 {
			break
		}

		for _, m := range result.Messages {
			_, err := c.queue.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(url),
				ReceiptHandle: m.ReceiptHandle,
			})
			if err != nil {
				return removed, fmt.Errorf("delete message: %w", classify(err))
			}
			removed++
		}
	}

	c.log.Debug("Removed messages",
		slog.String("queue", c.cfg.QueueName),
		slog.Int("removed", removed))
	return removed, nil
}

// QueueLength reports the backend's approximate count of visible messages.
func (c *Client) QueueLength(ctx context.Context) (int, error) {
	n, err := c.queueLength(ctx)
	c.metrics.observe("length", "queue", err)
	return n, err
}

func (c *Client) queueLength(ctx context.Context) (int, error) {
	url, err := c.queueURL(ctx)
	if err != nil {
		return 0, err
	}

	result, err := c.queue.GetQueueAttributesWithContext(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(url),
		AttributeNames: []*string{aws.String(sqs.QueueAttributeNameApproximateNumberOfMessages)},
	})
	if err != nil {
		return 0, fmt.Errorf("get queue length: %w", classify(err))
	}

	raw := aws.StringValue(result.Attributes[sqs.QueueAttributeNameApproximateNumberOfMessages])
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("unexpected queue length value %q: %w", raw, err)
	}
	return n, nil
}
