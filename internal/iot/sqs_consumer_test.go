package iot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

type fakeSQS struct {
	messages []types.Message
	deleted  []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	out := &sqs.ReceiveMessageOutput{Messages: f.messages}
	f.messages = nil
	return out, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

// fakeSensorHandler answers by space id.
type fakeSensorHandler struct {
	errs  map[int]error
	calls []domain.TriggerEventDTO
}

func (h *fakeSensorHandler) TriggerEvent(ctx context.Context, dto domain.TriggerEventDTO, source domain.EventSource) (*domain.TriggerEventResult, error) {
	if source != domain.SourceSQS {
		return nil, fmt.Errorf("unexpected source %s", source)
	}
	h.calls = append(h.calls, dto)
	return &domain.TriggerEventResult{}, h.errs[dto.SpaceID]
}

func message(handle, body string) types.Message {
	return types.Message{MessageId: aws.String(handle), ReceiptHandle: aws.String(handle), Body: aws.String(body)}
}

func TestSQSConsumerPoll(t *testing.T) {
	client := &fakeSQS{messages: []types.Message{
		message("ok", `{"space_id":1,"event_type":"vehicle_entered","device_id":"esp32-a"}`),
		message("malformed", `{"space_id":`),
		message("unknown-space", `{"space_id":99,"event_type":"vehicle_entered"}`),
		message("conflict", `{"space_id":2,"event_type":"vehicle_exited"}`),
		message("store-down", `{"space_id":3,"event_type":"vehicle_exited"}`),
	}}
	handler := &fakeSensorHandler{errs: map[int]error{
		99: fmt.Errorf("wrapped: %w", repository.ErrNotFound),
		2:  repository.ErrConflict,
		3:  errors.New("connection refused"),
	}}

	consumer := NewSQSConsumer(client, "https://sqs.local/queue", handler)
	require.NoError(t, consumer.poll(context.Background()))

	assert.ElementsMatch(t, []string{"ok", "malformed", "unknown-space", "conflict"}, client.deleted)
	assert.Len(t, handler.calls, 4)
	assert.Equal(t, domain.TriggerEventDTO{SpaceID: 1, EventType: "vehicle_entered"}, handler.calls[0])
}

func TestSQSConsumerStopsOnCancel(t *testing.T) {
	consumer := NewSQSConsumer(&fakeSQS{}, "q", &fakeSensorHandler{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

type fakeIoTData struct {
	inputs []*iotdataplane.PublishInput
}

func (f *fakeIoTData) Publish(ctx context.Context, in *iotdataplane.PublishInput, _ ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &iotdataplane.PublishOutput{}, nil
}

func TestStatusPublisher(t *testing.T) {
	client := &fakeIoTData{}
	pub := NewStatusPublisher(client)

	err := pub.PublishSpaceEvent(context.Background(), domain.SpaceEvent{
		SpaceID:         7,
		LotID:           2,
		Level:           1,
		EventType:       domain.EventVehicleExited,
		NewAvailability: true,
		Source:          domain.SourceAuto,
		Timestamp:       time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, "autoslot/lots/2/spaces/7/status", aws.ToString(in.Topic))
	assert.Equal(t, int32(1), in.Qos)

	var msg domain.SpaceStatusMessage
	require.NoError(t, json.Unmarshal(in.Payload, &msg))
	assert.True(t, msg.IsAvailable)
	assert.Equal(t, "2024-03-04T09:00:00Z", msg.Timestamp)
}
