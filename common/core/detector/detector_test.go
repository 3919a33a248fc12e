package detector

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/devansh0703/mev-bot-detector/common/models"
)

var (
	router  = common.BigToAddress(big.NewInt(1))
	tokenT1 = common.BigToAddress(big.NewInt(2))
	tokenT2 = common.BigToAddress(big.NewInt(3))
	atk     = common.BigToAddress(big.NewInt(4))
	vic     = common.BigToAddress(big.NewInt(5))
)

func tx(hash common.Hash, from common.Address, amountIn int64, path []common.Address, gas int64) models.Transaction {
	return models.Transaction{
		Hash:      hash,
		From:      from,
		To:        router,
		InputData: mustPackSwapData(amountIn, path),
		GasPrice:  big.NewInt(gas),
		Value:     big.NewInt(0),
	}
}

// mustPackSwapData is a package-level helper (no *testing.T) so tx() can
// build fixtures inline.
func mustPackSwapData(amountIn int64, path []common.Address) []byte {
	parsed, err := abi.JSON(strings.NewReader(routerABIJSON))
	if err != nil {
		panic(err)
	}
	data, err := parsed.Pack("swapExactTokensForTokens", big.NewInt(amountIn), big.NewInt(0), path, common.Address{}, big.NewInt(0))
	if err != nil {
		panic(err)
	}
	return data
}

func newBatch(txs ...models.Transaction) models.Batch {
	return models.Batch{Transactions: txs}
}

// Clean sandwich: frontrun and backrun by the same attacker bracket a
// victim's same-direction swap, gas strictly descending.
func TestDetect_ScenarioA_CleanSandwich(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	batch := newBatch(
		tx(common.HexToHash("0xAA"), atk, 100, []common.Address{tokenT1, tokenT2}, 200),
		tx(common.HexToHash("0xBB"), vic, 50, []common.Address{tokenT1, tokenT2}, 150),
		tx(common.HexToHash("0xCC"), atk, 110, []common.Address{tokenT2, tokenT1}, 100),
	)

	findings := d.Detect(batch)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}

	f := findings[0]
	if f.FrontrunTx != common.HexToHash("0xAA") || f.VictimTx != common.HexToHash("0xBB") || f.BackrunTx != common.HexToHash("0xCC") {
		t.Fatalf("unexpected triple: %+v", f)
	}
	if f.AttackerAddress != atk {
		t.Fatalf("unexpected attacker: %v", f.AttackerAddress)
	}
	if f.EstimatedProfitNative.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("expected profit 10, got %v", f.EstimatedProfitNative)
	}
}

// Gas-order violation: frontrun's gas is below the victim's.
func TestDetect_ScenarioB_GasOrderViolation(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	batch := newBatch(
		tx(common.HexToHash("0xAA"), atk, 100, []common.Address{tokenT1, tokenT2}, 100),
		tx(common.HexToHash("0xBB"), vic, 50, []common.Address{tokenT1, tokenT2}, 150),
		tx(common.HexToHash("0xCC"), atk, 110, []common.Address{tokenT2, tokenT1}, 100),
	)

	if findings := d.Detect(batch); len(findings) != 0 {
		t.Fatalf("expected no findings, got %d", len(findings))
	}
}

// Wrong direction: the would-be backrun swaps the same way as the
// frontrun instead of reversing it.
func TestDetect_ScenarioC_WrongDirection(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	batch := newBatch(
		tx(common.HexToHash("0xAA"), atk, 100, []common.Address{tokenT1, tokenT2}, 200),
		tx(common.HexToHash("0xBB"), vic, 50, []common.Address{tokenT1, tokenT2}, 150),
		tx(common.HexToHash("0xCC"), atk, 110, []common.Address{tokenT1, tokenT2}, 100),
	)

	if findings := d.Detect(batch); len(findings) != 0 {
		t.Fatalf("expected no findings, got %d", len(findings))
	}
}

func TestDetect_EmptyBatchYieldsNoFindings(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if findings := d.Detect(newBatch()); len(findings) != 0 {
		t.Fatalf("expected no findings on empty batch, got %d", len(findings))
	}
}

// Cross-pool tie-break: the same attacker runs a valid triple in two
// different pools within one batch. Only the earlier frontrun may win,
// and that choice must not depend on groupByPool's random map order.
func TestDetect_SameAttackerTwoPools_EarliestFrontrunWins(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tokenT3 := common.BigToAddress(big.NewInt(6))
	tokenT4 := common.BigToAddress(big.NewInt(7))
	vic2 := common.BigToAddress(big.NewInt(8))

	batch := newBatch(
		tx(common.HexToHash("0x01"), atk, 100, []common.Address{tokenT1, tokenT2}, 200),
		tx(common.HexToHash("0x02"), vic, 50, []common.Address{tokenT1, tokenT2}, 150),
		tx(common.HexToHash("0x03"), atk, 110, []common.Address{tokenT2, tokenT1}, 100),
		tx(common.HexToHash("0x04"), atk, 100, []common.Address{tokenT3, tokenT4}, 200),
		tx(common.HexToHash("0x05"), vic2, 50, []common.Address{tokenT3, tokenT4}, 150),
		tx(common.HexToHash("0x06"), atk, 110, []common.Address{tokenT4, tokenT3}, 100),
	)

	for i := 0; i < 20; i++ {
		findings := d.Detect(batch)
		if len(findings) != 1 {
			t.Fatalf("expected exactly 1 finding (attacker capped at one per batch), got %d", len(findings))
		}
		if findings[0].FrontrunTx != common.HexToHash("0x01") {
			t.Fatalf("expected the earlier-positioned pool's triple to win, got frontrun %v", findings[0].FrontrunTx)
		}
	}
}

func TestDetect_IsPure(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	batch := newBatch(
		tx(common.HexToHash("0xAA"), atk, 100, []common.Address{tokenT1, tokenT2}, 200),
		tx(common.HexToHash("0xBB"), vic, 50, []common.Address{tokenT1, tokenT2}, 150),
		tx(common.HexToHash("0xCC"), atk, 110, []common.Address{tokenT2, tokenT1}, 100),
	)

	first := d.Detect(batch)
	second := d.Detect(batch)
	if len(first) != len(second) || len(first) != 1 {
		t.Fatalf("expected repeated calls to produce identical output, got %d and %d", len(first), len(second))
	}
	if first[0].VictimTx != second[0].VictimTx {
		t.Fatalf("expected identical findings across calls")
	}
}
