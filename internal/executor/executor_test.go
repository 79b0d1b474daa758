package executor

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nilupul-byte/limitorderdex/internal/domain"
)

type fakeOrderBook struct {
	pending      []domain.Order
	orders       map[uint64]domain.Order
	executeCalls []uint64
	executeErr   error
}

func newFakeOrderBook(orders ...domain.Order) *fakeOrderBook {
	f := &fakeOrderBook{orders: make(map[uint64]domain.Order)}
	for _, o := range orders {
		f.orders[o.OrderID] = o
		if o.Status == domain.StatusPending {
			f.pending = append(f.pending, o)
		}
	}
	return f
}

func (f *fakeOrderBook) GetPendingOrders(ctx context.Context) ([]domain.Order, error) {
	return f.pending, nil
}

func (f *fakeOrderBook) GetOrder(ctx context.Context, orderID uint64) (domain.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.Order{}, assertNotFound{}
	}
	return o, nil
}

func (f *fakeOrderBook) ExecuteLimitOrder(ctx context.Context, orderID uint64, currentNum, currentDenom *big.Int) (common.Hash, error) {
	f.executeCalls = append(f.executeCalls, orderID)
	if f.executeErr != nil {
		return common.Hash{}, f.executeErr
	}
	return common.Hash{1}, nil
}

type assertNotFound struct{}

func (assertNotFound) Error() string { return "order not found" }

type fakeAMM struct {
	snapshot domain.PoolSnapshot
	err      error
}

func (f *fakeAMM) GetReserves(poolAddr common.Address, from, to domain.TokenId) (domain.PoolSnapshot, error) {
	if f.err != nil {
		return domain.PoolSnapshot{}, f.err
	}
	return f.snapshot, nil
}

func testOrder(id uint64, expiresAt int64) domain.Order {
	targetNum, _ := new(big.Int).SetString("155000000000000", 10)
	return domain.Order{
		OrderID:     id,
		FromToken:   "USDC",
		FromAmount:  big.NewInt(10_000_000),
		ToToken:     "WEGLD",
		TargetNum:   targetNum,
		TargetDenom: big.NewInt(1_000),
		SlippageBp:  500,
		Status:      domain.StatusPending,
		CreatedAt:   1_700_000_000,
		ExpiresAt:   expiresAt,
	}
}

// triggeringSnapshot prices the pool at 154 WEGLD per 1,000 USDC = 0.154,
// at or below the test order's 0.155 target.
func triggeringSnapshot() domain.PoolSnapshot {
	reserveFrom := big.NewInt(1_000_000_000)
	reserveTo, _ := new(big.Int).SetString("154000000000000000000", 10)
	return domain.PoolSnapshot{ReserveFrom: reserveFrom, ReserveTo: reserveTo, DecimalsFrom: 6, DecimalsTo: 18}
}

// nonTriggeringSnapshot prices the pool at 160 WEGLD per 1,000 USDC = 0.160,
// above the test order's 0.155 target.
func nonTriggeringSnapshot() domain.PoolSnapshot {
	reserveFrom := big.NewInt(1_000_000_000)
	reserveTo, _ := new(big.Int).SetString("160000000000000000000", 10)
	return domain.PoolSnapshot{ReserveFrom: reserveFrom, ReserveTo: reserveTo, DecimalsFrom: 6, DecimalsTo: 18}
}

func TestSweep_TriggersAndSubmits(t *testing.T) {
	book := newFakeOrderBook(testOrder(1, 1_700_003_600))
	amm := &fakeAMM{snapshot: triggeringSnapshot()}

	cfg := DefaultConfig()
	now := func() time.Time { return time.Unix(1_700_000_100, 0) }
	e := New(cfg, book, amm, common.Address{}, common.Address{}, now)

	e.Sweep(context.Background())

	assert.Equal(t, []uint64{1}, book.executeCalls)
}

func TestSweep_DoesNotTriggerAbovePrice(t *testing.T) {
	book := newFakeOrderBook(testOrder(1, 1_700_003_600))
	amm := &fakeAMM{snapshot: nonTriggeringSnapshot()}

	cfg := DefaultConfig()
	now := func() time.Time { return time.Unix(1_700_000_100, 0) }
	e := New(cfg, book, amm, common.Address{}, common.Address{}, now)

	e.Sweep(context.Background())

	assert.Empty(t, book.executeCalls)
}

func TestSweep_SkipsWithinCooldown(t *testing.T) {
	book := newFakeOrderBook(testOrder(1, 1_700_003_600))
	amm := &fakeAMM{snapshot: triggeringSnapshot()}

	cfg := DefaultConfig()
	cfg.Cooldown = 300 * time.Second
	current := int64(1_700_000_100)
	now := func() time.Time { return time.Unix(current, 0) }
	e := New(cfg, book, amm, common.Address{}, common.Address{}, now)

	e.Sweep(context.Background())
	require.Equal(t, []uint64{1}, book.executeCalls)

	// A successful submit only confirms phase-A acceptance, not execution:
	// the cooldown entry stays and a second immediate sweep must not retry.
	e.Sweep(context.Background())
	assert.Equal(t, []uint64{1}, book.executeCalls, "cooldown should have prevented a second submit")
}

func TestSweep_DropsCooldownForMissingOrder(t *testing.T) {
	book := newFakeOrderBook()
	amm := &fakeAMM{snapshot: triggeringSnapshot()}
	cfg := DefaultConfig()
	now := func() time.Time { return time.Unix(1_700_000_100, 0) }
	e := New(cfg, book, amm, common.Address{}, common.Address{}, now)

	// The entry is older than the 300s cooldown, so processOrder gets past
	// the cooldown check, finds the order missing and drops the entry.
	e.markAttempted(1, 1_699_999_700)
	e.processOrder(context.Background(), 1)

	assert.False(t, e.inCooldown(1))
	assert.Zero(t, e.Status().AttemptedCount)
}

func TestSweep_DropsCooldownForExpiredOrder(t *testing.T) {
	book := newFakeOrderBook(testOrder(1, 1_700_000_050))
	amm := &fakeAMM{snapshot: triggeringSnapshot()}
	cfg := DefaultConfig()
	now := func() time.Time { return time.Unix(1_700_000_100, 0) }
	e := New(cfg, book, amm, common.Address{}, common.Address{}, now)

	// A stale entry, older than the 300s cooldown, left by an earlier attempt.
	e.markAttempted(1, 1_699_999_700)
	e.Sweep(context.Background())

	assert.Empty(t, book.executeCalls)
	assert.False(t, e.inCooldown(1))
	assert.Zero(t, e.Status().AttemptedCount)
}

func TestSweep_PoolUnavailableDoesNotMarkAttempted(t *testing.T) {
	book := newFakeOrderBook(testOrder(1, 1_700_003_600))
	amm := &fakeAMM{err: assertNotFound{}}
	cfg := DefaultConfig()
	now := func() time.Time { return time.Unix(1_700_000_100, 0) }
	e := New(cfg, book, amm, common.Address{}, common.Address{}, now)

	e.Sweep(context.Background())

	assert.Empty(t, book.executeCalls)
	assert.False(t, e.inCooldown(1))
}

func TestSweep_SubmitFailureLeavesCooldownInPlace(t *testing.T) {
	book := newFakeOrderBook(testOrder(1, 1_700_003_600))
	book.executeErr = assertNotFound{}
	amm := &fakeAMM{snapshot: triggeringSnapshot()}
	cfg := DefaultConfig()
	now := func() time.Time { return time.Unix(1_700_000_100, 0) }
	e := New(cfg, book, amm, common.Address{}, common.Address{}, now)

	e.Sweep(context.Background())

	assert.True(t, e.inCooldown(1))
}

func TestClearCooldown_AdminOperations(t *testing.T) {
	book := newFakeOrderBook()
	amm := &fakeAMM{}
	e := New(DefaultConfig(), book, amm, common.Address{}, common.Address{}, nil)

	e.markAttempted(1, time.Now().Unix())
	e.markAttempted(2, time.Now().Unix())

	e.ClearCooldown(1)
	assert.False(t, e.inCooldown(1))
	assert.True(t, e.inCooldown(2))

	e.ClearAllCooldowns()
	assert.False(t, e.inCooldown(2))
}

func TestStatus_ReflectsConfig(t *testing.T) {
	book := newFakeOrderBook()
	amm := &fakeAMM{}
	operator := common.HexToAddress("0x1111111111111111111111111111111111111111")
	contractAddr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	e := New(DefaultConfig(), book, amm, operator, contractAddr, nil)

	status := e.Status()
	assert.False(t, status.Running)
	assert.Equal(t, operator, status.OperatorAddress)
	assert.Equal(t, contractAddr, status.ContractAddress)
	assert.Equal(t, int64(30_000), status.CheckIntervalMs)
	assert.Equal(t, int64(300_000), status.CooldownMs)
}
