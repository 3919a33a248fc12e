package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Transaction is the immutable record C1 hands downstream. Fields mirror
// the subset of an Ethereum transaction the detector actually inspects.
type Transaction struct {
	Hash       common.Hash
	From       common.Address
	To         common.Address
	InputData  []byte
	GasPrice   *big.Int
	Value      *big.Int
	Nonce      uint64
	ObservedAt time.Time
}

// Batch is an ordered, immutable-once-sealed window of Transactions.
type Batch struct {
	SealedAt     time.Time
	Transactions []Transaction
}
