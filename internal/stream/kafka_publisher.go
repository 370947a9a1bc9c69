// Package stream publishes space events and settlements to Kafka for
// downstream consumers.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/Shopify/sarama"

	"github.com/emmoscript/AutoSlot/internal/config"
	"github.com/emmoscript/AutoSlot/internal/domain"
)

// KafkaPublisher writes one JSON message per event with a synchronous
// producer, keyed so that all messages for one space (or transaction) land on
// the same partition.
type KafkaPublisher struct {
	producer         sarama.SyncProducer
	spaceEventsTopic string
	settlementsTopic string
}

// NewKafkaPublisher connects a sync producer to the configured brokers.
func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, cfg config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		producer:         producer,
		spaceEventsTopic: cfg.SpaceEventsTopic,
		settlementsTopic: cfg.SettlementsTopic,
	}
}

func (p *KafkaPublisher) PublishSpaceEvent(ctx context.Context, event domain.SpaceEvent) error {
	return p.send(p.spaceEventsTopic, strconv.Itoa(event.SpaceID), event)
}

func (p *KafkaPublisher) PublishSettlement(ctx context.Context, tx domain.Transaction) error {
	return p.send(p.settlementsTopic, tx.ID, tx)
}

func (p *KafkaPublisher) send(topic, key string, v interface{}) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("KafkaPublisher: marshal: %w", err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("KafkaPublisher: send to %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return err
	}
	log.Println("KafkaPublisher: producer closed")
	return nil
}
