// Package supervisor implements C7: wires C1-C6 in dependency order,
// drives the pipeline's main loop, and propagates shutdown.
package supervisor

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/devansh0703/mev-bot-detector/common/core/batcher"
	"github.com/devansh0703/mev-bot-detector/common/core/dedup"
	"github.com/devansh0703/mev-bot-detector/common/core/detector"
	"github.com/devansh0703/mev-bot-detector/common/core/publisher"
	"github.com/devansh0703/mev-bot-detector/common/core/validator"
	"github.com/devansh0703/mev-bot-detector/common/external/mempool"
	"github.com/devansh0703/mev-bot-detector/common/models"
	"github.com/devansh0703/mev-bot-detector/common/periphery/redisdb"
)

const (
	shutdownGrace  = 10 * time.Second
	healthInterval = 30 * time.Second

	// findingsQueueDepth bounds how many Batches' worth of Findings may
	// wait behind the one the worker is currently draining through
	// dedup/validate/publish. A Batch that finds the queue full is
	// dropped rather than queued, the same backpressure policy the
	// Batcher itself applies one stage upstream.
	findingsQueueDepth = 1
)

type Config struct {
	BatchSize     int
	BatchInterval time.Duration
}

type Supervisor struct {
	cfg        Config
	logger     *zap.Logger
	subscriber *mempool.Subscriber
	detect     *detector.Detector
	dd         *dedup.Deduplicator
	val        *validator.Validator
	pub        *publisher.Publisher
	redisDB    *redisdb.RedisDatabase

	analyzing       atomic.Bool
	findingsDropped atomic.Int64
}

func New(cfg Config, logger *zap.Logger, subscriber *mempool.Subscriber, det *detector.Detector, dd *dedup.Deduplicator, val *validator.Validator, pub *publisher.Publisher, redisDB *redisdb.RedisDatabase) *Supervisor {
	return &Supervisor{
		cfg:        cfg,
		logger:     logger,
		subscriber: subscriber,
		detect:     det,
		dd:         dd,
		val:        val,
		pub:        pub,
		redisDB:    redisDB,
	}
}

// Run drives C1-C6 until ctx is cancelled. Findings are handed off to a
// single worker that drains them in the order their Batch was sealed, so
// an earlier Batch's Findings always finish publishing before a later
// Batch's begin. On cancellation, C1 stops producing; once the final
// (possibly partial) Batch has been sealed and C2's output channel
// closes, Run gives the worker up to shutdownGrace to finish whatever it
// is holding before external clients close in reverse initialization
// order.
func (s *Supervisor) Run(ctx context.Context) error {
	txCh := s.subscriber.Stream(ctx)

	b, err := batcher.New(batcher.Config{Size: s.cfg.BatchSize, Interval: s.cfg.BatchInterval}, s.logger, txCh, s.analyzing.Load)
	if err != nil {
		return err
	}

	go b.Run(ctx)
	go s.logHealthPeriodically(ctx, b)

	processCtx, stopProcessing := deriveProcessingContext(ctx, shutdownGrace)
	defer stopProcessing()

	findingsCh := make(chan []models.Finding, findingsQueueDepth)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		s.runFindingsWorker(processCtx, findingsCh)
	}()

	for batch := range b.Batches() {
		s.processBatch(findingsCh, batch)
	}
	close(findingsCh)
	<-workerDone

	s.logHealth("final health at shutdown")
	return s.closeClients()
}

// deriveProcessingContext returns a context that stays live after parent
// is cancelled, giving in-flight Finding processing up to grace to
// finish on its own before the returned context is cancelled for real.
// This is what lets C4's query and C6's publish retries actually observe
// cancellation instead of running forever once the pipeline is told to
// shut down, while not aborting work the instant the shutdown signal
// arrives.
func deriveProcessingContext(parent context.Context, grace time.Duration) (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-parent.Done():
			select {
			case <-time.After(grace):
				cancel()
			case <-ctx.Done():
			}
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// processBatch runs C3 over batch and hands its Findings to the
// serialized worker. A full findingsCh means the worker is still busy
// with an earlier Batch past this Batch's interval; the new Findings are
// dropped rather than queued so a slow downstream never makes C1/C2's
// intake loop fall behind the live subscription.
func (s *Supervisor) processBatch(findingsCh chan<- []models.Finding, batch models.Batch) {
	s.analyzing.Store(true)
	findings := s.detect.Detect(batch)
	s.analyzing.Store(false)

	if len(findings) == 0 {
		return
	}

	select {
	case findingsCh <- findings:
	default:
		s.findingsDropped.Add(int64(len(findings)))
		s.logger.Warn("dropping findings under backpressure", zap.Int("count", len(findings)))
	}
}

// runFindingsWorker is the single consumer of findingsCh. It processes
// one Batch's Findings to completion, in order, before pulling the next
// slice off the channel, so publication never races across Batches.
func (s *Supervisor) runFindingsWorker(ctx context.Context, findingsCh <-chan []models.Finding) {
	for findings := range findingsCh {
		for _, f := range findings {
			s.processFinding(ctx, f)
		}
	}
}

// processFinding runs the filter chain C5 -> C4 -> C6: dedup first, then
// the historical-activity check, then publish.
func (s *Supervisor) processFinding(ctx context.Context, f models.Finding) {
	if !s.dd.CheckAndMark(ctx, f.AttackerAddress.Hex()) {
		return
	}
	if !s.val.Confirm(ctx, f.AttackerAddress) {
		return
	}
	if err := s.pub.Publish(ctx, f); err != nil {
		s.logger.Error("finding publish failed", zap.Error(err), zap.String("attacker", f.AttackerAddress.Hex()))
	}
}

func (s *Supervisor) logHealthPeriodically(ctx context.Context, b *batcher.Batcher) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	droppedBatches := int64(0)
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.Dropped():
			droppedBatches++
		case <-ticker.C:
			s.logger.Info("health",
				zap.Int64("batches_dropped", droppedBatches),
				zap.Int64("findings_dropped", s.findingsDropped.Load()),
				zap.Int64("dedup_fail_open_total", s.dd.FailOpenCount()),
				zap.Int64("validator_drops_total", s.val.DropCount()),
				zap.Int64("publish_drops_total", s.pub.DroppedCount()),
			)
		}
	}
}

func (s *Supervisor) logHealth(msg string) {
	s.logger.Info(msg,
		zap.Int64("findings_dropped", s.findingsDropped.Load()),
		zap.Int64("dedup_fail_open_total", s.dd.FailOpenCount()),
		zap.Int64("validator_drops_total", s.val.DropCount()),
		zap.Int64("publish_drops_total", s.pub.DroppedCount()),
	)
}

func (s *Supervisor) closeClients() error {
	if err := s.pub.Close(); err != nil {
		s.logger.Warn("error closing publisher", zap.Error(err))
	}
	if err := s.redisDB.Close(); err != nil {
		s.logger.Warn("error closing redis client", zap.Error(err))
	}
	return nil
}
