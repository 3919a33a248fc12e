package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// SwapIntent is derived inside the Detector from a Transaction that decodes
// against the known swap-method selector table. Transactions that don't
// decode never produce a SwapIntent and are dropped from analysis.
type SwapIntent struct {
	TxHash           common.Hash
	Actor            common.Address
	Pool             PoolID
	TokenIn          common.Address
	TokenOut         common.Address
	AmountInEstimate *big.Int
	GasPrice         *big.Int
	PositionInBatch  int
}

// PoolID identifies the liquidity surface two swaps must share to be
// considered part of the same sandwich. For a router-mediated swap this is
// the router address paired with the unordered token pair, since the
// router (not a pair contract) is the "to" address the detector observes.
type PoolID struct {
	Router common.Address
	TokenA common.Address
	TokenB common.Address
}

// NewPoolID canonicalizes the token pair ordering so {A,B} and {B,A}
// against the same router collide into one PoolID.
func NewPoolID(router, tokenX, tokenY common.Address) PoolID {
	if bytesLess(tokenY.Bytes(), tokenX.Bytes()) {
		tokenX, tokenY = tokenY, tokenX
	}
	return PoolID{Router: router, TokenA: tokenX, TokenB: tokenY}
}

func bytesLess(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Finding is the Detector's output: one confirmed sandwich triple.
type Finding struct {
	VictimTx              common.Hash
	FrontrunTx            common.Hash
	BackrunTx             common.Hash
	AttackerAddress       common.Address
	Pool                  PoolID
	EstimatedProfitNative *big.Int
	DetectedAt            time.Time
}

// Alert is the wire schema C6 publishes, see the JSON shape in the
// external-interfaces section: victim/attacker/frontrun/backrun plus a
// decimal profit_eth and a unix-seconds timestamp.
type Alert struct {
	VictimTxHash   string `json:"victim_tx_hash"`
	Attacker       string `json:"attacker"`
	FrontrunTxHash string `json:"frontrun_tx_hash"`
	BackrunTxHash  string `json:"backrun_tx_hash"`
	ProfitETH      string `json:"profit_eth"`
	Timestamp      int64  `json:"timestamp"`
}
