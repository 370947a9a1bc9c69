package iot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"

	"github.com/emmoscript/AutoSlot/internal/domain"
)

// IoTDataAPI is the subset of *iotdataplane.Client the publisher uses.
type IoTDataAPI interface {
	Publish(ctx context.Context, params *iotdataplane.PublishInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error)
}

// StatusPublisher mirrors every space transition to the space's MQTT topic
// so that physical displays can follow the registry.
type StatusPublisher struct {
	client IoTDataAPI
}

func NewStatusPublisher(client IoTDataAPI) *StatusPublisher {
	return &StatusPublisher{client: client}
}

func StatusTopic(lotID, spaceID int) string {
	return fmt.Sprintf("autoslot/lots/%d/spaces/%d/status", lotID, spaceID)
}

func (p *StatusPublisher) PublishSpaceEvent(ctx context.Context, event domain.SpaceEvent) error {
	payload, err := json.Marshal(domain.SpaceStatusMessage{
		SpaceID:     event.SpaceID,
		LotID:       event.LotID,
		Level:       event.Level,
		IsAvailable: event.NewAvailability,
		EventType:   event.EventType,
		Source:      event.Source,
		Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("StatusPublisher: marshal status: %w", err)
	}

	_, err = p.client.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(StatusTopic(event.LotID, event.SpaceID)),
		Qos:     1,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("StatusPublisher: publish to %s: %w", StatusTopic(event.LotID, event.SpaceID), err)
	}
	return nil
}
