package detector

import (
	_ "embed"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/devansh0703/mev-bot-detector/common/models"
)

//go:embed detectorassets/routerABI.json
var routerABIJSON string

// amountField tells decodeSwap which ABI input to read as the amount
// estimate: the ETH-in variants carry no explicit amountIn, so the
// transaction's native value stands in for it.
type amountField int

const (
	amountFromValue amountField = iota
	amountFromAmountIn
	amountFromAmountInMax
)

var selectorTable = map[string]amountField{
	"swapExactTokensForTokens": amountFromAmountIn,
	"swapTokensForExactTokens": amountFromAmountInMax,
	"swapExactETHForTokens":    amountFromValue,
	"swapETHForExactTokens":    amountFromValue,
	"swapExactTokensForETH":    amountFromAmountIn,
	"swapTokensForExactETH":    amountFromAmountInMax,
}

type decoder struct {
	routerABI abi.ABI
}

func newDecoder() (*decoder, error) {
	parsed, err := abi.JSON(strings.NewReader(routerABIJSON))
	if err != nil {
		return nil, err
	}
	return &decoder{routerABI: parsed}, nil
}

// decodeSwap matches tx's 4-byte selector against the known router methods
// and, on a match, unpacks the path array and amount field into a
// SwapIntent. A non-matching selector or an unpack failure returns
// (nil, nil): that transaction is simply dropped from analysis, never
// treated as an error.
func (d *decoder) decodeSwap(tx models.Transaction, position int) (*models.SwapIntent, error) {
	if len(tx.InputData) < 4 {
		return nil, nil
	}

	method, err := d.routerABI.MethodById(tx.InputData[:4])
	if err != nil {
		return nil, nil
	}

	field, known := selectorTable[method.Name]
	if !known {
		return nil, nil
	}

	args, err := method.Inputs.Unpack(tx.InputData[4:])
	if err != nil {
		return nil, nil
	}

	values := make(map[string]interface{}, len(args))
	for i, input := range method.Inputs {
		values[input.Name] = args[i]
	}

	path, ok := values["path"].([]common.Address)
	if !ok || len(path) < 2 {
		return nil, nil
	}

	var amountIn *big.Int
	switch field {
	case amountFromValue:
		amountIn = tx.Value
	case amountFromAmountIn:
		amountIn, ok = values["amountIn"].(*big.Int)
	case amountFromAmountInMax:
		amountIn, ok = values["amountInMax"].(*big.Int)
	}
	if !ok || amountIn == nil {
		return nil, nil
	}

	tokenIn := path[0]
	tokenOut := path[len(path)-1]

	return &models.SwapIntent{
		TxHash:           tx.Hash,
		Actor:            tx.From,
		Pool:             models.NewPoolID(tx.To, tokenIn, tokenOut),
		TokenIn:          tokenIn,
		TokenOut:         tokenOut,
		AmountInEstimate: amountIn,
		GasPrice:         tx.GasPrice,
		PositionInBatch:  position,
	}, nil
}
