// Package validator implements C4: for each Finding that passed dedup,
// confirm or drop it against the attacker's historical swap activity.
package validator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/devansh0703/mev-bot-detector/common/core/validator/validatorerrors"
)

// HistoricalActivitySource is the subgraph collaborator's interface, kept
// narrow so tests can fake it without a real GraphQL endpoint.
type HistoricalActivitySource interface {
	RecentSwapCount(ctx context.Context, attacker string) (int, error)
}

const (
	defaultThreshold = 5
	queryTimeout     = 3 * time.Second
)

type Validator struct {
	source    HistoricalActivitySource
	threshold int
	logger    *zap.Logger

	dropCount atomic.Int64
}

func New(source HistoricalActivitySource, threshold int, logger *zap.Logger) (*Validator, error) {
	if source == nil {
		return nil, validatorerrors.ErrNilClient
	}
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	return &Validator{source: source, threshold: threshold, logger: logger}, nil
}

// Confirm reports whether the attacker's recent swap count exceeds the
// threshold H. Timeout or remote failure is fail-closed: the Finding is
// treated as unconfirmed so the pipeline never floods the output with
// unvalidated noise while the subgraph is down.
func (v *Validator) Confirm(ctx context.Context, attacker common.Address) bool {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	count, err := v.source.RecentSwapCount(ctx, attacker.Hex())
	if err != nil {
		v.dropCount.Add(1)
		v.logger.Info("validator query failed, dropping finding", zap.Error(err), zap.String("attacker", attacker.Hex()))
		return false
	}

	confirmed := count > v.threshold
	if !confirmed {
		v.dropCount.Add(1)
	}
	return confirmed
}

// DropCount returns how many Findings the Validator has dropped, for the
// Supervisor's health signal.
func (v *Validator) DropCount() int64 {
	return v.dropCount.Load()
}
