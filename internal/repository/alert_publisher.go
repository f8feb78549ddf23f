package repository

import (
	"context"
	"fmt"
	"time"

	pkgkafka "SignalGate/pkg/kafka"
)

// KafkaAlertPublisher ships monitor alerts and collected logs to Kafka.
// It satisfies both the monitor's and the log collector's publisher
// contracts, which share the same PublishMessage shape.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
}

// NewKafkaAlertPublisher creates an alert publisher over an existing producer.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer}
}

func (p *KafkaAlertPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	if p.producer == nil {
		return nil
	}
	key := []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
	return p.producer.Publish(ctx, topic, key, payload)
}
