// Package ordercontract implements the custody and lifecycle state
// machine for limit orders: creation, cancellation, execution (via an
// asynchronous cross-shard swap), expiry sweeping, and the admin
// configuration cells that gate them. Grounded on the teacher's
// Blackhole struct in blackhole.go (a single-writer struct of global
// configuration plus a map of per-address ContractClients) for the
// "explicit configuration cells with single-writer discipline" shape the
// design notes call for, and on Blackhole.Swap/GetAMMState for the
// pattern of calling out to the AMM and handling its result.
package ordercontract

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/Nilupul-byte/limitorderdex/internal/domain"
	"github.com/Nilupul-byte/limitorderdex/pkg/pricemath"
)

// DefaultMinDurationSeconds and DefaultMaxDurationSeconds are default
// duration_s bounds (one minute, 30 days). A Contract enforces the
// minDuration/maxDuration passed to New; unlike max_slippage, the owner
// cannot change them afterwards.
const (
	DefaultMinDurationSeconds int64 = 60
	DefaultMaxDurationSeconds int64 = 30 * 24 * 3600
)

// SwapOutcome is the result of a pool swap, delivered asynchronously
// through the callback passed to PoolCaller.SubmitSwap.
type SwapOutcome struct {
	// Success is true iff the pool returned an output amount >= minOut.
	Success bool
	// OutputAmount is set when Success is true.
	OutputAmount *big.Int
	// Refunded is true when the pool returned the original input instead
	// of an output (the refund path the design notes require tolerating).
	Refunded bool
	// Reason describes a non-success outcome for the emitted event.
	Reason string
}

// PoolCaller is the order contract's only dependency on the AMM. It
// mirrors the cross-shard call/callback shape: SubmitSwap returns
// immediately, and the result arrives later through callback, which may
// run on a different goroutine (a different "shard" in spec terms).
type PoolCaller interface {
	SubmitSwap(orderID uint64, from domain.TokenId, fromAmount *big.Int, to domain.TokenId, minOut *big.Int, callback func(SwapOutcome))
}

// Config holds the owner-mutable administrative cells. Every field here
// can only be changed through the Contract's Set* methods, each of which
// enforces the owner check.
type Config struct {
	Owner         [32]byte
	Paused        bool
	MaxSlippageBp uint16
	Executor      [32]byte
	Pool          [32]byte
}

// Contract is the in-process state machine for the order book: custody
// ledger, next-id counter, order table, and admin configuration. All
// mutation goes through a single mutex, matching the spec's "no
// in-contract locking is required; the chain's per-account ordering
// handles it" by making this process the chain's stand-in serialization
// point.
type Contract struct {
	mu sync.Mutex

	now func() int64

	nextID uint64
	orders map[uint64]*domain.Order
	// custody is the contract's own holding of each token, used to
	// enforce invariant 1 (sum over Pending orders == contract balance).
	custody map[domain.TokenId]*big.Int
	// inFlight marks orders mid-swap (phase A of the two-phase async
	// execute), cleared only by the swap callback (phase B).
	inFlight map[uint64]bool

	whitelisted map[domain.TokenId]bool
	config      Config

	minDuration int64
	maxDuration int64

	pool   PoolCaller
	events EventSink
}

// New builds a Contract with the given owner, executor and pool
// addresses, a max-slippage bound, and duration bounds. clock is the
// caller-supplied source of "now" (unix seconds), so tests can control it
// deterministically; a nil clock is not replaced by a default.
func New(owner, executor, pool [32]byte, maxSlippageBp uint16, minDuration, maxDuration int64, poolCaller PoolCaller, sink EventSink, clock func() int64) *Contract {
	if sink == nil {
		sink = NopEventSink{}
	}
	return &Contract{
		now:         clock,
		nextID:      1,
		orders:      make(map[uint64]*domain.Order),
		custody:     make(map[domain.TokenId]*big.Int),
		inFlight:    make(map[uint64]bool),
		whitelisted: make(map[domain.TokenId]bool),
		config: Config{
			Owner:         owner,
			Executor:      executor,
			Pool:          pool,
			MaxSlippageBp: maxSlippageBp,
		},
		minDuration: minDuration,
		maxDuration: maxDuration,
		pool:        poolCaller,
		events:      sink,
	}
}

// --- Admin configuration, owner-only, single-writer discipline ---

func (c *Contract) requireOwner(caller [32]byte) error {
	if caller != c.config.Owner {
		return ErrNotAdmin
	}
	return nil
}

func (c *Contract) SetPaused(caller [32]byte, paused bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireOwner(caller); err != nil {
		return err
	}
	c.config.Paused = paused
	return nil
}

func (c *Contract) SetMaxSlippage(caller [32]byte, bp uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireOwner(caller); err != nil {
		return err
	}
	c.config.MaxSlippageBp = bp
	return nil
}

func (c *Contract) SetExecutor(caller [32]byte, executor [32]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireOwner(caller); err != nil {
		return err
	}
	c.config.Executor = executor
	return nil
}

func (c *Contract) SetPool(caller [32]byte, pool [32]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireOwner(caller); err != nil {
		return err
	}
	c.config.Pool = pool
	return nil
}

func (c *Contract) WhitelistToken(caller [32]byte, token domain.TokenId) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireOwner(caller); err != nil {
		return err
	}
	c.whitelisted[token] = true
	return nil
}

func (c *Contract) RemoveToken(caller [32]byte, token domain.TokenId) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireOwner(caller); err != nil {
		return err
	}
	delete(c.whitelisted, token)
	return nil
}

// --- Views ---

func (c *Contract) GetOrder(orderID uint64) (domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.orders[orderID]
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	return *o, nil
}

// GetPendingOrders returns every order still in Pending status, in
// unspecified order (the spec leaves ordering unspecified).
func (c *Contract) GetPendingOrders() []domain.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	var pending []domain.Order
	for _, o := range c.orders {
		if o.Status == domain.StatusPending {
			pending = append(pending, *o)
		}
	}
	return pending
}

func (c *Contract) GetUserOrders(owner [32]byte) []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []uint64
	for id, o := range c.orders {
		if o.Owner == owner {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c *Contract) GetPool() [32]byte       { c.mu.Lock(); defer c.mu.Unlock(); return c.config.Pool }
func (c *Contract) GetExecutor() [32]byte   { c.mu.Lock(); defer c.mu.Unlock(); return c.config.Executor }
func (c *Contract) IsPaused() bool          { c.mu.Lock(); defer c.mu.Unlock(); return c.config.Paused }
func (c *Contract) GetMaxSlippage() uint16  { c.mu.Lock(); defer c.mu.Unlock(); return c.config.MaxSlippageBp }

// --- Core lifecycle ---

// CreateLimitOrder custodies fromAmount of fromToken and persists a new
// Pending order. It is the payable entrypoint: the caller is responsible
// for having already attached the (fromToken, fromAmount) payment; this
// method records that custody, it does not move tokens itself.
func (c *Contract) CreateLimitOrder(owner [32]byte, fromToken domain.TokenId, fromAmount *big.Int, toToken domain.TokenId, targetNum, targetDenom *big.Int, slippageBp uint16, durationS int64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.Paused {
		return 0, ErrPaused
	}
	if fromToken == toToken {
		return 0, ErrSameToken
	}
	if !c.whitelisted[fromToken] || !c.whitelisted[toToken] {
		return 0, ErrTokenNotWhitelisted
	}
	if fromAmount == nil || fromAmount.Sign() <= 0 {
		return 0, ErrZeroAmount
	}
	if targetDenom == nil || targetDenom.Sign() <= 0 {
		return 0, ErrZeroDenom
	}
	if targetNum == nil || targetNum.Sign() <= 0 {
		return 0, ErrInvalidTarget
	}
	if slippageBp > c.config.MaxSlippageBp {
		return 0, ErrSlippageTooHigh
	}
	if durationS < c.minDuration || durationS > c.maxDuration {
		return 0, ErrDurationOutOfRange
	}

	orderID := c.nextID
	c.nextID++

	now := c.now()
	order := &domain.Order{
		OrderID:     orderID,
		Owner:       owner,
		FromToken:   fromToken,
		FromAmount:  new(big.Int).Set(fromAmount),
		ToToken:     toToken,
		TargetNum:   new(big.Int).Set(targetNum),
		TargetDenom: new(big.Int).Set(targetDenom),
		SlippageBp:  slippageBp,
		CreatedAt:   now,
		ExpiresAt:   now + durationS,
		Status:      domain.StatusPending,
	}
	c.orders[orderID] = order
	c.creditCustody(fromToken, fromAmount)

	c.events.Emit(OrderCreated{
		OrderID:     orderID,
		Owner:       owner,
		FromToken:   string(fromToken),
		FromAmount:  new(big.Int).Set(fromAmount),
		ToToken:     string(toToken),
		TargetNum:   new(big.Int).Set(targetNum),
		TargetDenom: new(big.Int).Set(targetDenom),
		SlippageBp:  slippageBp,
		CreatedAt:   order.CreatedAt,
		ExpiresAt:   order.ExpiresAt,
	})

	return orderID, nil
}

// CancelLimitOrder refunds a Pending order to its owner and marks it
// Cancelled. The refund is atomic with the status change: both happen
// under the same lock acquisition.
func (c *Contract) CancelLimitOrder(caller [32]byte, orderID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	order, ok := c.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	if order.Owner != caller {
		return ErrNotOwner
	}
	if order.Status != domain.StatusPending {
		return ErrNotPending
	}

	order.Status = domain.StatusCancelled
	c.debitCustody(order.FromToken, order.FromAmount)

	c.events.Emit(OrderCancelled{
		OrderID:    orderID,
		FromAmount: new(big.Int).Set(order.FromAmount),
		Timestamp:  c.now(),
	})
	return nil
}

// ExecuteLimitOrder is phase A of the two-phase async execute: it
// validates, computes min_out from the order's stored target (never the
// executor-supplied current price), and submits the swap. The actual
// Pending -> Executed transition happens only in the callback (phase B,
// handleSwapResult), matching the design note that the contract's state
// changes gated on swap success must occur in the callback.
func (c *Contract) ExecuteLimitOrder(caller [32]byte, orderID uint64, currentNum, currentDenom *big.Int) error {
	c.mu.Lock()

	if c.config.Paused {
		c.mu.Unlock()
		return ErrPaused
	}
	if caller != c.config.Executor {
		c.mu.Unlock()
		return ErrNotExecutor
	}
	order, ok := c.orders[orderID]
	if !ok {
		c.mu.Unlock()
		return ErrOrderNotFound
	}
	if order.Status != domain.StatusPending {
		c.mu.Unlock()
		return ErrNotPending
	}
	if c.now() >= order.ExpiresAt {
		c.mu.Unlock()
		return ErrExpired
	}
	if c.inFlight[orderID] {
		// A prior attempt's callback hasn't landed yet; the caller
		// should wait rather than double-submit the swap.
		c.mu.Unlock()
		return fmt.Errorf("ordercontract: order %d already has a swap in flight", orderID)
	}

	minOut, err := pricemath.MinOut(order.FromAmount, order.TargetNum, order.TargetDenom, order.SlippageBp)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("ordercontract: compute min_out: %w", err)
	}

	c.inFlight[orderID] = true
	fromToken, fromAmount, toToken := order.FromToken, new(big.Int).Set(order.FromAmount), order.ToToken
	c.mu.Unlock()

	curNum := cloneOrZero(currentNum)
	curDenom := cloneOrZero(currentDenom)

	c.pool.SubmitSwap(orderID, fromToken, fromAmount, toToken, minOut, func(outcome SwapOutcome) {
		c.handleSwapResult(orderID, outcome, curNum, curDenom)
	})

	return nil
}

// handleSwapResult is the swap callback: the sole place where
// Pending -> Executed happens, and the sole place where a swap failure
// (revert, insufficient output, or pool refund) is reconciled back to a
// still-Pending order with funds still custodied.
func (c *Contract) handleSwapResult(orderID uint64, outcome SwapOutcome, currentNum, currentDenom *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inFlight[orderID] {
		return // stale or duplicate callback; nothing to reconcile
	}
	delete(c.inFlight, orderID)

	order, ok := c.orders[orderID]
	if !ok || order.Status != domain.StatusPending {
		return
	}

	if outcome.Success {
		order.Status = domain.StatusExecuted
		c.debitCustody(order.FromToken, order.FromAmount)
		c.events.Emit(OrderExecuted{
			OrderID:      orderID,
			OutputAmount: outcome.OutputAmount,
			CurrentNum:   currentNum,
			CurrentDenom: currentDenom,
			Timestamp:    c.now(),
		})
		return
	}

	reason := outcome.Reason
	if outcome.Refunded && reason == "" {
		reason = "pool refunded input"
	}
	if reason == "" {
		reason = "swap failed"
	}
	c.events.Emit(OrderExecutionFailed{
		OrderID:   orderID,
		Reason:    reason,
		Timestamp: c.now(),
	})
}

// ExpireOrders sweeps up to limit Pending orders whose expiry has passed,
// refunding each to its owner. It is idempotent per order and callable by
// anyone.
func (c *Contract) ExpireOrders(limit uint32) []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expired []uint64
	for id, order := range c.orders {
		if uint32(len(expired)) >= limit {
			break
		}
		if order.Status != domain.StatusPending {
			continue
		}
		if now < order.ExpiresAt {
			continue
		}

		order.Status = domain.StatusExpired
		c.debitCustody(order.FromToken, order.FromAmount)
		c.events.Emit(OrderExpired{
			OrderID:    id,
			FromAmount: new(big.Int).Set(order.FromAmount),
			Timestamp:  now,
		})
		expired = append(expired, id)
	}
	return expired
}

// CustodyBalance reports the contract's recorded holding of a token,
// for the custody invariant: sum over Pending orders == this value.
func (c *Contract) CustodyBalance(token domain.TokenId) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	bal, ok := c.custody[token]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(bal)
}

func (c *Contract) creditCustody(token domain.TokenId, amount *big.Int) {
	bal, ok := c.custody[token]
	if !ok {
		bal = big.NewInt(0)
	}
	c.custody[token] = new(big.Int).Add(bal, amount)
}

func (c *Contract) debitCustody(token domain.TokenId, amount *big.Int) {
	bal, ok := c.custody[token]
	if !ok {
		bal = big.NewInt(0)
	}
	c.custody[token] = new(big.Int).Sub(bal, amount)
}

func cloneOrZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
