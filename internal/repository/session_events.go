package repository

import (
	"context"

	"AstroPull/internal/domain/models"
	"AstroPull/internal/domain/repository"
	pkgkafka "AstroPull/pkg/kafka"
)

// KafkaEventPublisher writes session events to a Kafka topic keyed by session id.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaEventPublisher creates a Kafka backed EventPublisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) repository.EventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, e *models.SessionEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.SessionID), e)
}

// Close is a no-op; the producer is shared with the log collector and closed by its owner.
func (p *KafkaEventPublisher) Close() error { return nil }

// NoopEventPublisher drops every event. It is used when events are disabled.
type NoopEventPublisher struct{}

func NewNoopEventPublisher() repository.EventPublisher { return NoopEventPublisher{} }

func (NoopEventPublisher) Publish(context.Context, *models.SessionEvent) error { return nil }

func (NoopEventPublisher) Close() error { return nil }
