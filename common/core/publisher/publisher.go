// Package publisher implements C6: serializes confirmed Findings to the
// outbound topic with retry and at-least-once delivery.
package publisher

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/devansh0703/mev-bot-detector/common/core/publisher/publishererrors"
	"github.com/devansh0703/mev-bot-detector/common/models"
)

const (
	maxAttempts = 3
	baseBackoff = 100 * time.Millisecond
	capBackoff  = 5 * time.Second
)

// messageWriter is the slice of kafka.Writer's API the Publisher needs;
// *kafka.Writer satisfies it. Kept as an interface so retry/drop behavior
// can be exercised with a fake in tests, without a real broker.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	writer messageWriter
	logger *zap.Logger

	dropCount atomic.Int64
}

func New(broker, topic string, logger *zap.Logger) (*Publisher, error) {
	if broker == "" {
		return nil, publishererrors.ErrEmptyBroker
	}
	if topic == "" {
		return nil, publishererrors.ErrEmptyTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		BatchTimeout: 10 * time.Millisecond,
		Async:        false,
	}

	return &Publisher{writer: writer, logger: logger}, nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Publish serializes f and submits it, retrying transient errors with
// exponential backoff (base 100ms, cap 5s, max 3 attempts). Final failure
// logs at error and drops the alert rather than blocking the live
// pipeline on a broken downstream. No partition key is used: this
// pipeline makes no consumer-ordering guarantee.
func (p *Publisher) Publish(ctx context.Context, f models.Finding) error {
	payload, err := json.Marshal(toAlert(f))
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = p.writer.WriteMessages(ctx, kafka.Message{Value: payload})
		if lastErr == nil {
			return nil
		}
		p.logger.Warn("publish attempt failed", zap.Int("attempt", attempt+1), zap.Error(lastErr))
	}

	p.dropCount.Add(1)
	p.logger.Error("dropping alert after exhausting retries", zap.Error(lastErr), zap.String("victim_tx", f.VictimTx.Hex()))
	return lastErr
}

// DroppedCount returns how many alerts were dropped after exhausting
// retries, for the Supervisor's health signal.
func (p *Publisher) DroppedCount() int64 {
	return p.dropCount.Load()
}

func backoffDelay(attempt int) time.Duration {
	d := time.Duration(float64(baseBackoff) * math.Pow(2, float64(attempt-1)))
	if d > capBackoff {
		d = capBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(d) + 1))
	return jitter
}
