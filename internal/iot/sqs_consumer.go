package iot

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
	"github.com/emmoscript/AutoSlot/internal/service"
)

const retryDelay = 5 * time.Second

// SQSAPI is the subset of *sqs.Client the consumer uses.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SensorEventHandler applies one decoded sensor message.
type SensorEventHandler interface {
	TriggerEvent(ctx context.Context, dto domain.TriggerEventDTO, source domain.EventSource) (*domain.TriggerEventResult, error)
}

// SQSConsumer long-polls a queue of physical sensor messages and feeds them
// to the simulator as source "sqs".
type SQSConsumer struct {
	sqsClient SQSAPI
	queueURL  string
	handler   SensorEventHandler
}

func NewSQSConsumer(client SQSAPI, queueURL string, handler SensorEventHandler) *SQSConsumer {
	return &SQSConsumer{
		sqsClient: client,
		queueURL:  queueURL,
		handler:   handler,
	}
}

// Start blocks until ctx is cancelled.
func (c *SQSConsumer) Start(ctx context.Context) error {
	log.Printf("SQS Consumer: listening on queue %s", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			log.Println("SQS Consumer: context cancelled, stopping.")
			return nil
		default:
		}

		if err := c.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("SQS Consumer: error receiving messages: %v", err)
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (c *SQSConsumer) poll(ctx context.Context) error {
	result, err := c.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   60,
	})
	if err != nil {
		return err
	}
	if len(result.Messages) == 0 {
		return nil
	}

	log.Printf("SQS Consumer: received %d message(s)", len(result.Messages))
	for _, message := range result.Messages {
		if c.process(ctx, message) {
			c.deleteMessage(ctx, message.ReceiptHandle)
		}
	}
	return nil
}

// process reports whether the message is done with and can be deleted.
// Messages that can never succeed are dropped; anything else is left for
// redelivery after the visibility timeout.
func (c *SQSConsumer) process(ctx context.Context, message types.Message) bool {
	id := aws.ToString(message.MessageId)
	if message.Body == nil || *message.Body == "" {
		log.Printf("SQS Consumer: message %s has an empty body, deleting", id)
		return true
	}

	var msg domain.SensorMessage
	if err := json.Unmarshal([]byte(*message.Body), &msg); err != nil {
		log.Printf("SQS Consumer: message %s is malformed, deleting: %v", id, err)
		return true
	}

	_, err := c.handler.TriggerEvent(ctx, domain.TriggerEventDTO{SpaceID: msg.SpaceID, EventType: msg.EventType}, domain.SourceSQS)
	switch {
	case err == nil:
		return true
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrConflict):
		log.Printf("SQS Consumer: dropping message %s from device %q: %v", id, msg.DeviceID, err)
		return true
	default:
		log.Printf("SQS Consumer: failed to process message %s: %v; it will be redelivered", id, err)
		return false
	}
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		log.Println("SQS Consumer: empty receipt handle, cannot delete message.")
		return
	}
	_, err := c.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		log.Printf("SQS Consumer: error deleting message: %v", err)
	}
}
