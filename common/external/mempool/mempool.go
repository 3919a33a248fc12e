// Package mempool implements C1: a long-lived subscription to a
// blockchain node's pending-transaction feed, reconnecting with backoff
// on transport loss and decoding each raw transaction into the domain
// Transaction record.
package mempool

import (
	"context"
	"math/rand"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/devansh0703/mev-bot-detector/common/external/mempool/mempoolerrors"
	"github.com/devansh0703/mev-bot-detector/common/models"
)

const (
	backoffBase = 1 * time.Second
	backoffCap  = 60 * time.Second
)

type Subscriber struct {
	endpoint string
	logger   *zap.Logger
}

func New(endpoint string, logger *zap.Logger) (*Subscriber, error) {
	if endpoint == "" {
		return nil, mempoolerrors.ErrEmptyEndpoint
	}
	return &Subscriber{endpoint: endpoint, logger: logger}, nil
}

// Stream yields a lazy, unbounded sequence of Transactions until ctx is
// cancelled. Transport errors never reach the returned channel: they are
// handled internally by the reconnect loop (base 1s, cap 60s, full
// jitter). Duplicate transactions observed across reconnects are
// permitted; downstream tolerates them.
func (s *Subscriber) Stream(ctx context.Context) <-chan models.Transaction {
	out := make(chan models.Transaction)

	go func() {
		defer close(out)
		attempt := 0
		for {
			if ctx.Err() != nil {
				return
			}
			if err := s.runOnce(ctx, out); err != nil {
				s.logger.Warn("mempool subscription lost, reconnecting", zap.Error(err), zap.Int("attempt", attempt))
				attempt++
			} else {
				attempt = 0
			}
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay(attempt)):
			}
		}
	}()

	return out
}

func (s *Subscriber) runOnce(ctx context.Context, out chan<- models.Transaction) error {
	rpcClient, err := rpc.DialContext(ctx, s.endpoint)
	if err != nil {
		return err
	}
	defer rpcClient.Close()

	gc := gethclient.New(rpcClient)

	pending := make(chan *types.Transaction)
	sub, err := gc.SubscribeFullPendingTransactions(ctx, pending)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return err
		case tx := <-pending:
			decoded, ok := s.decode(tx)
			if !ok {
				continue
			}
			select {
			case out <- decoded:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// decode resolves a raw *types.Transaction into the domain Transaction
// record. A transaction that fails sender recovery or carries no "to"
// address (a contract-creation transaction can't be a swap call) is
// logged at debug and skipped, never fatal.
func (s *Subscriber) decode(tx *types.Transaction) (models.Transaction, bool) {
	to := tx.To()
	if to == nil {
		s.logger.Debug("dropping contract-creation tx", zap.String("hash", tx.Hash().Hex()))
		return models.Transaction{}, false
	}

	signer := types.LatestSignerForChainID(tx.ChainId())
	from, err := types.Sender(signer, tx)
	if err != nil {
		s.logger.Debug("dropping tx with unrecoverable sender", zap.Error(err), zap.String("hash", tx.Hash().Hex()))
		return models.Transaction{}, false
	}

	return models.Transaction{
		Hash:       tx.Hash(),
		From:       from,
		To:         *to,
		InputData:  tx.Data(),
		GasPrice:   tx.GasPrice(),
		Value:      tx.Value(),
		Nonce:      tx.Nonce(),
		ObservedAt: time.Now(),
	}, true
}

func reconnectDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := backoffBase << (attempt - 1)
	if d <= 0 || d > backoffCap {
		d = backoffCap
	}
	return time.Duration(rand.Int63n(int64(d) + 1))
}
