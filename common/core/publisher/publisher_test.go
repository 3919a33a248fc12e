package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/devansh0703/mev-bot-detector/common/models"
)

type fakeWriter struct {
	failuresBeforeSuccess int
	calls                 int
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.calls++
	if f.calls <= f.failuresBeforeSuccess {
		return errors.New("broker unreachable")
	}
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func sampleFinding() models.Finding {
	return models.Finding{
		VictimTx:        common.HexToHash("0xBB"),
		FrontrunTx:      common.HexToHash("0xAA"),
		BackrunTx:       common.HexToHash("0xCC"),
		AttackerAddress: common.HexToAddress("0xATK"),
	}
}

func TestPublish_SucceedsAfterTransientFailures(t *testing.T) {
	w := &fakeWriter{failuresBeforeSuccess: 2}
	p := &Publisher{writer: w, logger: zap.NewNop()}

	if err := p.Publish(context.Background(), sampleFinding()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if w.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", w.calls)
	}
	if p.DroppedCount() != 0 {
		t.Fatalf("expected no drop, got %d", p.DroppedCount())
	}
}

func TestPublish_DropsAfterExhaustingRetries(t *testing.T) {
	w := &fakeWriter{failuresBeforeSuccess: 10}
	p := &Publisher{writer: w, logger: zap.NewNop()}

	if err := p.Publish(context.Background(), sampleFinding()); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if w.calls != maxAttempts {
		t.Fatalf("expected %d attempts, got %d", maxAttempts, w.calls)
	}
	if p.DroppedCount() != 1 {
		t.Fatalf("expected drop counter to increment, got %d", p.DroppedCount())
	}
}
