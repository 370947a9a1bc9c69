package stream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmoscript/AutoSlot/internal/config"
	"github.com/emmoscript/AutoSlot/internal/domain"
)

var testTopics = config.KafkaConfig{SpaceEventsTopic: "space-events", SettlementsTopic: "settlements"}

func TestPublishSpaceEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev domain.SpaceEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.SpaceID != 12 || ev.EventType != domain.EventVehicleEntered {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	pub := NewKafkaPublisherWithProducer(producer, testTopics)
	err := pub.PublishSpaceEvent(context.Background(), domain.SpaceEvent{ID: "ev-1", SpaceID: 12, EventType: domain.EventVehicleEntered})
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestPublishSettlementFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisherWithProducer(producer, testTopics)
	err := pub.PublishSettlement(context.Background(), domain.Transaction{ID: "tx-1", TotalCost: 75})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}
