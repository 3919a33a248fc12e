package publisher

import (
	"math/big"

	"github.com/ALTree/bigfloat"

	"github.com/devansh0703/mev-bot-detector/common/models"
)

// weiPerETH is 10^18 computed at extra precision via bigfloat.Pow so the
// guard digits survive the division below.
var weiPerETH = bigfloat.Pow(big.NewFloat(10), big.NewFloat(18))

// toAlert converts a confirmed Finding into the wire schema, formatting
// estimated_profit_native (wei) as a 4-decimal-place ETH string.
func toAlert(f models.Finding) models.Alert {
	profitWei := f.EstimatedProfitNative
	if profitWei == nil {
		profitWei = big.NewInt(0)
	}

	quotient := new(big.Float).SetPrec(200).SetInt(profitWei)
	quotient.Quo(quotient, weiPerETH)

	return models.Alert{
		VictimTxHash:   f.VictimTx.Hex(),
		Attacker:       f.AttackerAddress.Hex(),
		FrontrunTxHash: f.FrontrunTx.Hex(),
		BackrunTxHash:  f.BackrunTx.Hex(),
		ProfitETH:      quotient.Text('f', 4),
		Timestamp:      f.DetectedAt.Unix(),
	}
}
