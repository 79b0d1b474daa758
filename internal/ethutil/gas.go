package ethutil

import (
	"fmt"
	"math/big"

	"github.com/Nilupul-byte/limitorderdex/pkg/txtypes"
)

// ExtractGasCost computes GasUsed * EffectiveGasPrice in wei from a
// TxReceipt, the same derivation the teacher's Mint/Stake/Unstake gas
// tracking performs inline for every TransactionRecord.
func ExtractGasCost(receipt *txtypes.TxReceipt) (*big.Int, error) {
	if receipt == nil {
		return nil, fmt.Errorf("nil receipt")
	}

	gasUsed, ok := new(big.Int).SetString(receipt.GasUsed, 0)
	if !ok {
		return nil, fmt.Errorf("invalid gasUsed %q", receipt.GasUsed)
	}
	gasPrice, ok := new(big.Int).SetString(receipt.EffectiveGasPrice, 0)
	if !ok {
		return nil, fmt.Errorf("invalid effectiveGasPrice %q", receipt.EffectiveGasPrice)
	}

	return new(big.Int).Mul(gasUsed, gasPrice), nil
}
