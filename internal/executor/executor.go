// Package executor drives executeLimitOrder exactly when an order is
// triggerable: a single long-running sweep loop, no intra-sweep
// parallelism, a per-order cooldown, and an operator-signed submission.
// Grounded on the teacher's Blackhole.RunStrategy1 (cmd/main.go wires it
// as a single goroutine draining a report channel on a periodic loop) and
// on the cooldown/retry shape the design notes call for.
package executor

import (
	"context"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Nilupul-byte/limitorderdex/internal/domain"
	"github.com/Nilupul-byte/limitorderdex/pkg/pricemath"
)

// ReservesFetcher is the executor's dependency on the AMM adapter. It is
// satisfied structurally by *amm.Adapter.
type ReservesFetcher interface {
	GetReserves(poolAddr common.Address, from, to domain.TokenId) (domain.PoolSnapshot, error)
}

// Config bundles the executor's tunables, mirroring the environment
// variables in the spec's external-interfaces table.
type Config struct {
	CheckInterval time.Duration
	Cooldown      time.Duration
	PoolAddress   common.Address
	Enabled       bool
}

// DefaultConfig returns the spec's default tunables: 30s sweep, 300s
// cooldown, executor enabled.
func DefaultConfig() Config {
	return Config{
		CheckInterval: 30 * time.Second,
		Cooldown:      300 * time.Second,
		Enabled:       true,
	}
}

// Executor is the single logical thread of control that polls pending
// orders, evaluates the trigger predicate, and submits execute calls.
type Executor struct {
	cfg     Config
	book    OrderBookClient
	amm     ReservesFetcher
	now     func() time.Time
	running bool

	mu        sync.Mutex
	cooldowns map[uint64]time.Time

	operatorAddr common.Address
	contractAddr common.Address

	sweepMu sync.Mutex // serializes sweeps; a slow sweep drops the next tick instead of overlapping
}

// New builds an Executor. now defaults to time.Now when nil.
func New(cfg Config, book OrderBookClient, amm ReservesFetcher, operatorAddr, contractAddr common.Address, now func() time.Time) *Executor {
	if now == nil {
		now = time.Now
	}
	return &Executor{
		cfg:          cfg,
		book:         book,
		amm:          amm,
		now:          now,
		cooldowns:    make(map[uint64]time.Time),
		operatorAddr: operatorAddr,
		contractAddr: contractAddr,
	}
}

// Run blocks, sweeping every CheckInterval until ctx is cancelled (the
// spec's SIGTERM handling: the caller cancels ctx from a signal handler,
// and Run lets any in-flight order submission finish before returning).
func (e *Executor) Run(ctx context.Context) {
	if !e.cfg.Enabled {
		log.Printf("executor: disabled, status API only")
		return
	}

	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	ticker := time.NewTicker(e.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.trySweep(ctx)
		}
	}
}

// trySweep drops the tick if a previous sweep is still running, per the
// spec's "no two sweeps may overlap; if a sweep exceeds CHECK_INTERVAL,
// the next is dropped" rule.
func (e *Executor) trySweep(ctx context.Context) {
	if !e.sweepMu.TryLock() {
		log.Printf("executor: previous sweep still running, dropping this tick")
		return
	}
	defer e.sweepMu.Unlock()
	e.Sweep(ctx)
}

// Sweep performs one pass over every pending order, in list order, with
// no intra-sweep parallelism. It is exported so tests and a one-shot CLI
// mode can invoke it directly without the ticker loop.
func (e *Executor) Sweep(ctx context.Context) {
	orders, err := e.book.GetPendingOrders(ctx)
	if err != nil {
		log.Printf("executor: getPendingOrders failed: %v", err)
		return
	}

	for _, o := range orders {
		e.processOrder(ctx, o.OrderID)
	}
}

func (e *Executor) processOrder(ctx context.Context, orderID uint64) {
	if e.inCooldown(orderID) {
		return
	}

	order, err := e.book.GetOrder(ctx, orderID)
	if err != nil {
		// missing order: drop any stale cooldown entry and move on.
		e.clearCooldown(orderID)
		log.Printf("executor: order %d missing: %v", orderID, err)
		return
	}

	now := e.now().Unix()
	if now >= order.ExpiresAt {
		e.clearCooldown(orderID)
		return
	}
	if order.Status != domain.StatusPending {
		e.clearCooldown(orderID)
		return
	}

	snapshot, err := e.amm.GetReserves(e.cfg.PoolAddress, order.FromToken, order.ToToken)
	if err != nil {
		// external I/O failure: log and continue, do not mark attempted.
		log.Printf("executor: get_reserves failed for order %d: %v", orderID, err)
		return
	}

	spot, err := pricemath.SpotPrice(snapshot.ReserveFrom, snapshot.ReserveTo, snapshot.DecimalsFrom, snapshot.DecimalsTo)
	if err != nil {
		log.Printf("executor: spot_price failed for order %d: %v", orderID, err)
		return
	}

	target := targetToDecimal(order.TargetNum, order.TargetDenom, snapshot.DecimalsFrom, snapshot.DecimalsTo)
	if spot > target {
		return // not triggered
	}

	// Record the attempt before submitting: a crash after this point
	// still leaves the cooldown in place.
	e.markAttempted(orderID, now)

	currentFrac, err := pricemath.PriceToFraction(spot, snapshot.DecimalsFrom, snapshot.DecimalsTo)
	if err != nil {
		// purely for logging in the submitted event; submit with zeros
		// rather than abandon a triggered order over a logging detail.
		currentFrac = pricemath.Fraction{Num: big.NewInt(0), Denom: big.NewInt(1)}
	}

	if _, err := e.book.ExecuteLimitOrder(ctx, orderID, currentFrac.Num, currentFrac.Denom); err != nil {
		// failure leaves the cooldown entry in place; next attempt is
		// deferred by COOLDOWN.
		log.Printf("executor: executeLimitOrder failed for order %d: %v", orderID, err)
		return
	}

	// Submission accepted is not confirmed execution: the contract's
	// callback (phase B) is the only place Pending -> Executed happens,
	// and a pool refund leaves the order Pending with this cooldown
	// still the only thing stopping an immediate re-submit. The entry is
	// only dropped once the order is next observed missing, expired, or
	// no longer Pending above.
}

// targetToDecimal converts the stored (num, denom) fraction back to the
// same whole-token decimal scale SpotPrice returns, undoing the
// decimalsTo-decimalsFrom scaling PriceToFraction applied when the order
// was created, so the trigger comparison holds both sides to one scale.
func targetToDecimal(num, denom *big.Int, decimalsFrom, decimalsTo int) float64 {
	if denom == nil || denom.Sign() == 0 {
		return 0
	}
	n := new(big.Float).SetInt(num)
	d := new(big.Float).SetInt(denom)
	frac := new(big.Float).Quo(n, d)
	frac.Quo(frac, pow10(decimalsTo-decimalsFrom))
	f, _ := frac.Float64()
	return f
}

func pow10(n int) *big.Float {
	if n >= 0 {
		return new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil))
	}
	inv := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n)), nil))
	return new(big.Float).Quo(big.NewFloat(1), inv)
}

func (e *Executor) inCooldown(orderID uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	last, ok := e.cooldowns[orderID]
	if !ok {
		return false
	}
	return e.now().Sub(last) < e.cfg.Cooldown
}

func (e *Executor) markAttempted(orderID uint64, unixSeconds int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cooldowns[orderID] = time.Unix(unixSeconds, 0)
}

func (e *Executor) clearCooldown(orderID uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cooldowns, orderID)
}

// ClearCooldown is the admin operation for clearing one order's cooldown.
func (e *Executor) ClearCooldown(orderID uint64) {
	e.clearCooldown(orderID)
}

// ClearAllCooldowns is the admin operation for clearing every cooldown.
func (e *Executor) ClearAllCooldowns() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cooldowns = make(map[uint64]time.Time)
}

// Status is the snapshot the status API exposes.
type Status struct {
	Running         bool
	OperatorAddress common.Address
	CheckIntervalMs int64
	CooldownMs      int64
	AttemptedCount  int
	ContractAddress common.Address
}

func (e *Executor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Running:         e.running,
		OperatorAddress: e.operatorAddr,
		CheckIntervalMs: e.cfg.CheckInterval.Milliseconds(),
		CooldownMs:      e.cfg.Cooldown.Milliseconds(),
		AttemptedCount:  len(e.cooldowns),
		ContractAddress: e.contractAddr,
	}
}
