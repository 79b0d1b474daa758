package ordercontract

import "math/big"

// Events are the append-only, sole-source-of-truth taxonomy external
// indexers rely on. Field order and presence here is part of the wire
// protocol, mirroring the teacher's treatment of decoded-log shapes in
// blackhole.go's ParseReceipt/MintNftTokenId event handling.

// OrderCreated is emitted when createLimitOrder succeeds.
type OrderCreated struct {
	OrderID     uint64
	Owner       [32]byte
	FromToken   string
	FromAmount  *big.Int
	ToToken     string
	TargetNum   *big.Int
	TargetDenom *big.Int
	SlippageBp  uint16
	CreatedAt   int64
	ExpiresAt   int64
}

// OrderExecuted is emitted when a swap completes successfully and the
// order transitions Pending -> Executed.
type OrderExecuted struct {
	OrderID      uint64
	OutputAmount *big.Int
	CurrentNum   *big.Int
	CurrentDenom *big.Int
	Timestamp    int64
}

// OrderExecutionFailed is emitted when the pool call reverts, refunds, or
// otherwise fails to clear min_out; the order remains Pending.
type OrderExecutionFailed struct {
	OrderID   uint64
	Reason    string
	Timestamp int64
}

// OrderCancelled is emitted when the owner cancels a Pending order.
type OrderCancelled struct {
	OrderID    uint64
	FromAmount *big.Int
	Timestamp  int64
}

// OrderExpired is emitted when expireOrders sweeps a past-expiry order.
type OrderExpired struct {
	OrderID    uint64
	FromAmount *big.Int
	Timestamp  int64
}

// EventSink receives every event the contract emits, in emission order.
// Tests can supply a slice-collecting sink; production wiring can bridge
// this to whatever the deployed chain's log mechanism is.
type EventSink interface {
	Emit(event interface{})
}

// NopEventSink discards events; useful when a caller only cares about
// return values and errors.
type NopEventSink struct{}

func (NopEventSink) Emit(event interface{}) {}

// RecordingEventSink collects every event in order, for assertions in
// tests and for the executor's own bookkeeping.
type RecordingEventSink struct {
	Events []interface{}
}

func (s *RecordingEventSink) Emit(event interface{}) {
	s.Events = append(s.Events, event)
}
