package repository

import (
	"context"
	"fmt"

	"github.com/notiabet/courtedge/internal/domain/models"
	"github.com/notiabet/courtedge/pkg/kafka"
)

// BundlePublisher emits bundle-ready events on a Kafka topic. Keyed by date
// so all generations of one day land on the same partition, in order.
type BundlePublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewBundlePublisher(producer *kafka.Producer, topic string) *BundlePublisher {
	return &BundlePublisher{producer: producer, topic: topic}
}

func (p *BundlePublisher) PublishBundle(ctx context.Context, event models.BundleEvent) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(event.Date), event); err != nil {
		return fmt.Errorf("publish bundle event: %w", err)
	}
	return nil
}
