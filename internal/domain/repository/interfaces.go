package repository

import (
	"context"

	"SignalGate/internal/domain/models"
)

// SignalStream delivers candidate signals from the upstream generator.
type SignalStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Signal, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher sends admitted signals to the execution backend.
type Publisher interface {
	Publish(ctx context.Context, s *models.Signal) error
	PublishBatch(ctx context.Context, signals []*models.Signal) error
	Close() error
}

// Storage persists admitted signals for audit.
type Storage interface {
	Store(ctx context.Context, s *models.Signal) error
	StoreBatch(ctx context.Context, signals []*models.Signal) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics records pipeline observability data.
type Metrics interface {
	RecordStage(stage string, processed, rejected int)
	RecordRejection(stage string, reason models.Reason, count int)
	RecordCycle(seconds float64, processed, admitted int)
	RecordRejectionRate(rate float64)
	RecordProviderError(provider string)
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
