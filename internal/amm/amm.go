// Package amm is the single dependency boundary on the external
// constant-product pool: it reads reserves and builds swap call payloads,
// and nothing else about the pool leaks past it. Grounded on the teacher's
// Blackhole.GetAMMState/safelyGetStateOfAMM and
// Blackhole.Swap/SWAPExactTokensForTokensParams in blackhole.go, adapted
// from the teacher's concentrated-liquidity pool reading to the
// reserve-pair reading this spec's constant-product pool needs.
package amm

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Nilupul-byte/limitorderdex/internal/domain"
	"github.com/Nilupul-byte/limitorderdex/pkg/contractclient"
)

// ErrPoolUnavailable is returned when a reserves read fails due to a
// network error or an unparsable response.
var ErrPoolUnavailable = errors.New("amm: pool unavailable")

// DecimalsRegistry resolves a TokenId's base-unit decimals. The registry
// is process-configured and owned by the caller, matching the spec's
// "small, process-configured registry" for TokenId decimals.
type DecimalsRegistry interface {
	Decimals(token domain.TokenId) (int, error)
}

// StaticDecimalsRegistry is a DecimalsRegistry backed by a fixed map,
// sufficient for the single-pair deployments this system targets.
type StaticDecimalsRegistry map[domain.TokenId]int

func (r StaticDecimalsRegistry) Decimals(token domain.TokenId) (int, error) {
	d, ok := r[token]
	if !ok {
		return 0, fmt.Errorf("amm: no decimals registered for token %s", token)
	}
	return d, nil
}

// Adapter is the read/write boundary onto one AMM pool contract. It is
// stateless except for its network configuration (the bound pool
// contract client and the decimals registry).
type Adapter struct {
	pool     contractclient.ContractClient
	decimals DecimalsRegistry
}

// NewAdapter binds an adapter to a pool's ContractClient and a decimals
// registry used to interpret reserve amounts.
func NewAdapter(pool contractclient.ContractClient, decimals DecimalsRegistry) *Adapter {
	return &Adapter{pool: pool, decimals: decimals}
}

// GetReserves reads the pool's current reserves for the from/to token
// pair and resolves each token's decimals, matching the teacher's
// GetAMMState's "call then parse the multi-value tuple" shape.
func (a *Adapter) GetReserves(poolAddr common.Address, from, to domain.TokenId) (domain.PoolSnapshot, error) {
	values, err := a.pool.Call(nil, "getReserves", poolAddr, string(from), string(to))
	if err != nil {
		return domain.PoolSnapshot{}, fmt.Errorf("%w: %v", ErrPoolUnavailable, err)
	}
	if len(values) != 2 {
		return domain.PoolSnapshot{}, fmt.Errorf("%w: unexpected getReserves output arity %d", ErrPoolUnavailable, len(values))
	}

	reserveFrom, ok := values[0].(*big.Int)
	if !ok {
		return domain.PoolSnapshot{}, fmt.Errorf("%w: reserveFrom not *big.Int", ErrPoolUnavailable)
	}
	reserveTo, ok := values[1].(*big.Int)
	if !ok {
		return domain.PoolSnapshot{}, fmt.Errorf("%w: reserveTo not *big.Int", ErrPoolUnavailable)
	}

	decimalsFrom, err := a.decimals.Decimals(from)
	if err != nil {
		return domain.PoolSnapshot{}, fmt.Errorf("%w: %v", ErrPoolUnavailable, err)
	}
	decimalsTo, err := a.decimals.Decimals(to)
	if err != nil {
		return domain.PoolSnapshot{}, fmt.Errorf("%w: %v", ErrPoolUnavailable, err)
	}

	return domain.PoolSnapshot{
		ReserveFrom:  reserveFrom,
		ReserveTo:    reserveTo,
		DecimalsFrom: decimalsFrom,
		DecimalsTo:   decimalsTo,
	}, nil
}

// swapExactInputABI is the minimal ABI fragment for the fixed-input swap
// the order contract invokes on the pool: swap an exact amount of
// fromToken for at least minOut of toToken.
var swapExactInputABI = mustParseSwapABI()

func mustParseSwapABI() abi.ABI {
	const swapABIJSON = `[{
		"name": "swapExactInput",
		"type": "function",
		"inputs": [
			{"name": "fromToken", "type": "string"},
			{"name": "fromAmount", "type": "uint256"},
			{"name": "toToken", "type": "string"},
			{"name": "minOut", "type": "uint256"}
		],
		"outputs": [{"name": "amountOut", "type": "uint256"}]
	}]`
	parsed, err := abi.JSON(strings.NewReader(swapABIJSON))
	if err != nil {
		panic(fmt.Sprintf("amm: invalid embedded swap ABI: %v", err))
	}
	return parsed
}

// BuildSwapPayload produces the call payload that, submitted to the pool
// with from_amount of from_token attached, executes a fixed-input swap
// reverting unless the output is at least minOut. It is the on-chain
// analogue of the teacher's abi.Pack("swapExactTokensForTokens", ...)
// calls in Blackhole.Swap.
func BuildSwapPayload(from domain.TokenId, fromAmount *big.Int, to domain.TokenId, minOut *big.Int) ([]byte, error) {
	if fromAmount == nil || fromAmount.Sign() <= 0 {
		return nil, fmt.Errorf("amm: fromAmount must be positive")
	}
	if minOut == nil || minOut.Sign() < 0 {
		return nil, fmt.Errorf("amm: minOut must be non-negative")
	}

	data, err := swapExactInputABI.Pack("swapExactInput", string(from), fromAmount, string(to), minOut)
	if err != nil {
		return nil, fmt.Errorf("amm: pack swap payload: %w", err)
	}
	return data, nil
}
