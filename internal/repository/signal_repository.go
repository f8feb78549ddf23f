package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SignalGate/internal/domain/models"
	"SignalGate/internal/domain/repository"
	pkgkafka "SignalGate/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Store(ctx context.Context, sig *models.Signal) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, action, confidence, timeframe, volume, liquidity, rsi, price_target, stop_loss, token_address) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		time.Unix(sig.Timestamp, 0),
		sig.Symbol,
		sig.Action,
		sig.Confidence,
		sig.Timeframe,
		sig.Volume,
		sig.Liquidity,
		sig.RSI,
		sig.PriceTarget,
		sig.StopLoss,
		sig.Meta.TokenAddress,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, signals []*models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	// Multi-row VALUES insert, chunked to bound statement size.
	const chunkSize = 2000
	for start := 0; start < len(signals); start += chunkSize {
		end := start + chunkSize
		if end > len(signals) {
			end = len(signals)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*11)
		for _, sig := range signals[start:end] {
			if sig == nil || sig.Symbol == "" || sig.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(sig.Timestamp, 0),
				sig.Symbol,
				sig.Action,
				sig.Confidence,
				sig.Timeframe,
				sig.Volume,
				sig.Liquidity,
				sig.RSI,
				sig.PriceTarget,
				sig.StopLoss,
				sig.Meta.TokenAddress,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, action, confidence, timeframe, volume, liquidity, rsi, price_target, stop_loss, token_address) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, sig *models.Signal) error {
	return p.producer.Publish(ctx, p.topic, []byte(sig.Symbol), sig)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, signals []*models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(signals))
	for i, sig := range signals {
		msgs[i] = pkgkafka.Message{Key: []byte(sig.Symbol), Value: sig}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
