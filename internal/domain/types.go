// Package domain holds the data types shared across the order contract,
// the AMM adapter, and the executor, so none of those packages needs to
// import another's internals just to pass an Order or a pool reading
// around. Grounded on the teacher's types.go, which plays the same
// shared-types role for blackhole.go's AMMState/StakingResult/etc.
package domain

import "math/big"

// TokenId is an opaque token identifier. Its decimals are resolved
// through a small process-configured registry, not carried on the value
// itself.
type TokenId string

// OrderStatus is the order lifecycle state. Values intentionally match
// the on-chain wire encoding in wireformat: 0=Pending, 1=Executed,
// 2=Cancelled, 3=Expired.
type OrderStatus uint8

const (
	StatusPending OrderStatus = iota
	StatusExecuted
	StatusCancelled
	StatusExpired
)

func (s OrderStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusExecuted:
		return "Executed"
	case StatusCancelled:
		return "Cancelled"
	case StatusExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}

// Order is a user's standing instruction to swap a custodied amount of
// FromToken for ToToken once the AMM spot price reaches TargetNum/TargetDenom.
type Order struct {
	OrderID      uint64
	Owner        [32]byte
	FromToken    TokenId
	FromAmount   *big.Int
	ToToken      TokenId
	TargetNum    *big.Int
	TargetDenom  *big.Int
	SlippageBp   uint16
	CreatedAt    int64
	ExpiresAt    int64
	Status       OrderStatus
}

// PoolSnapshot is a transient read of one pool's reserves in base units,
// together with each token's decimals, sufficient to derive a spot price
// for the trigger comparison.
type PoolSnapshot struct {
	ReserveFrom  *big.Int
	ReserveTo    *big.Int
	DecimalsFrom int
	DecimalsTo   int
}
