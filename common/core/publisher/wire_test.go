package publisher

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/devansh0703/mev-bot-detector/common/models"
)

func TestToAlert_FormatsProfitAsETH(t *testing.T) {
	detectedAt := time.Unix(1700000000, 0)
	f := models.Finding{
		VictimTx:              common.HexToHash("0xBB"),
		FrontrunTx:            common.HexToHash("0xAA"),
		BackrunTx:             common.HexToHash("0xCC"),
		AttackerAddress:       common.HexToAddress("0x1234"),
		EstimatedProfitNative: big.NewInt(1500000000000000), // 0.0015 ETH
		DetectedAt:            detectedAt,
	}

	alert := toAlert(f)

	if alert.VictimTxHash != f.VictimTx.Hex() {
		t.Fatalf("unexpected victim hash: %s", alert.VictimTxHash)
	}
	if alert.FrontrunTxHash != f.FrontrunTx.Hex() {
		t.Fatalf("unexpected frontrun hash: %s", alert.FrontrunTxHash)
	}
	if alert.BackrunTxHash != f.BackrunTx.Hex() {
		t.Fatalf("unexpected backrun hash: %s", alert.BackrunTxHash)
	}
	if alert.Attacker != f.AttackerAddress.Hex() {
		t.Fatalf("unexpected attacker: %s", alert.Attacker)
	}
	if alert.ProfitETH != "0.0015" {
		t.Fatalf("expected profit 0.0015, got %s", alert.ProfitETH)
	}
	if alert.Timestamp != detectedAt.Unix() {
		t.Fatalf("unexpected timestamp: %d", alert.Timestamp)
	}
}

func TestToAlert_ZeroProfit(t *testing.T) {
	f := models.Finding{
		EstimatedProfitNative: big.NewInt(0),
		DetectedAt:            time.Unix(0, 0),
	}

	alert := toAlert(f)
	if alert.ProfitETH != "0.0000" {
		t.Fatalf("expected profit 0.0000, got %s", alert.ProfitETH)
	}
}

func TestToAlert_NilProfitDefaultsToZero(t *testing.T) {
	f := models.Finding{DetectedAt: time.Unix(0, 0)}

	alert := toAlert(f)
	if alert.ProfitETH != "0.0000" {
		t.Fatalf("expected profit 0.0000 for nil profit, got %s", alert.ProfitETH)
	}
}

func TestToAlert_OneETH(t *testing.T) {
	weiPerEthInt, _ := new(big.Int).SetString("1000000000000000000", 10)
	f := models.Finding{
		EstimatedProfitNative: weiPerEthInt,
		DetectedAt:            time.Unix(0, 0),
	}

	alert := toAlert(f)
	if alert.ProfitETH != "1.0000" {
		t.Fatalf("expected profit 1.0000, got %s", alert.ProfitETH)
	}
}
