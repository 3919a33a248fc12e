// Package batcher accumulates an inbound Transaction stream into
// size/time-bounded windows for bulk analysis by the detector.
package batcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/devansh0703/mev-bot-detector/common/core/batcher/batchererrors"
	"github.com/devansh0703/mev-bot-detector/common/models"
)

type Config struct {
	Size     int
	Interval time.Duration
}

func (c Config) validate() error {
	if c.Size <= 0 {
		return batchererrors.ErrInvalidSize
	}
	if c.Interval <= 0 {
		return batchererrors.ErrInvalidInterval
	}
	return nil
}

type Batcher struct {
	config Config
	logger *zap.Logger

	in      <-chan models.Transaction
	out     chan models.Batch
	dropped chan struct{}

	analyzing func() bool
}

// New builds a Batcher reading from in and emitting sealed Batches on the
// channel returned by Batches. analyzing reports whether the downstream detector is
// still working on the previous Batch; when true, a newly sealed Batch is
// dropped rather than queued.
func New(config Config, logger *zap.Logger, in <-chan models.Transaction, analyzing func() bool) (*Batcher, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, batchererrors.ErrNilLogger
	}
	if in == nil {
		return nil, batchererrors.ErrNilInput
	}
	if analyzing == nil {
		analyzing = func() bool { return false }
	}

	return &Batcher{
		config:    config,
		logger:    logger,
		in:        in,
		out:       make(chan models.Batch),
		dropped:   make(chan struct{}, 1),
		analyzing: analyzing,
	}, nil
}

// Batches returns the channel of sealed Batches.
func (b *Batcher) Batches() <-chan models.Batch {
	return b.out
}

// Dropped signals seals skipped due to backpressure; callers drain it to
// maintain their own running counter. The channel buffers one signal and
// is sent to without blocking, so a drop that occurs while an earlier
// signal is still undrained is not signalled separately.
func (b *Batcher) Dropped() <-chan struct{} {
	return b.dropped
}

// Run drives the batching event loop until ctx is cancelled. On
// cancellation a final, possibly partial, Batch is sealed and emitted
// before the loop exits and the output channel is closed.
func (b *Batcher) Run(ctx context.Context) {
	defer close(b.out)

	acc := make([]models.Transaction, 0, b.config.Size)
	timer := time.NewTimer(b.config.Interval)
	defer timer.Stop()

	seal := func() {
		if len(acc) == 0 {
			return
		}
		batch := models.Batch{SealedAt: time.Now(), Transactions: acc}
		acc = make([]models.Transaction, 0, b.config.Size)

		if b.analyzing() {
			b.logger.Warn("dropping batch under backpressure", zap.Int("size", len(batch.Transactions)))
			select {
			case b.dropped <- struct{}{}:
			default:
			}
			return
		}
		b.out <- batch
	}

	for {
		select {
		case <-ctx.Done():
			seal()
			return
		case tx, ok := <-b.in:
			if !ok {
				seal()
				return
			}
			acc = append(acc, tx)
			if len(acc) >= b.config.Size {
				timer.Reset(b.config.Interval)
				seal()
			}
		case <-timer.C:
			timer.Reset(b.config.Interval)
			seal()
		}
	}
}
