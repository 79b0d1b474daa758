package store

import (
	"sync"

	"github.com/Nilupul-byte/limitorderdex/internal/domain"
	"github.com/Nilupul-byte/limitorderdex/internal/ordercontract"
)

// Index is an in-memory read model over the order contract: a
// mutex-guarded map built either by replaying events (Apply) or by
// replacing it wholesale with a snapshot of orders (ReplaceAll). Grounded
// on the vsc-dex-mapping indexer's DexReadModel.HandleEvent, which
// applies the same "switch on event type, mutate a projection" shape to
// a different set of DEX events.
type Index struct {
	mu     sync.RWMutex
	orders map[uint64]domain.Order
}

// NewIndex builds an empty read model.
func NewIndex() *Index {
	return &Index{orders: make(map[uint64]domain.Order)}
}

// Apply folds one event into the projection. It is safe to call from any
// goroutine and safe to call out of order for independent order_ids, but
// events for the same order_id must arrive in emission order.
func (idx *Index) Apply(event interface{}) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	switch e := event.(type) {
	case ordercontract.OrderCreated:
		idx.orders[e.OrderID] = domain.Order{
			OrderID:     e.OrderID,
			Owner:       e.Owner,
			FromToken:   domain.TokenId(e.FromToken),
			FromAmount:  e.FromAmount,
			ToToken:     domain.TokenId(e.ToToken),
			TargetNum:   e.TargetNum,
			TargetDenom: e.TargetDenom,
			SlippageBp:  e.SlippageBp,
			CreatedAt:   e.CreatedAt,
			ExpiresAt:   e.ExpiresAt,
			Status:      domain.StatusPending,
		}

	case ordercontract.OrderExecuted:
		if o, ok := idx.orders[e.OrderID]; ok {
			o.Status = domain.StatusExecuted
			idx.orders[e.OrderID] = o
		}

	case ordercontract.OrderCancelled:
		if o, ok := idx.orders[e.OrderID]; ok {
			o.Status = domain.StatusCancelled
			idx.orders[e.OrderID] = o
		}

	case ordercontract.OrderExpired:
		if o, ok := idx.orders[e.OrderID]; ok {
			o.Status = domain.StatusExpired
			idx.orders[e.OrderID] = o
		}

	case ordercontract.OrderExecutionFailed:
		// order stays Pending; nothing to project beyond the raw event
		// log, which callers consult directly for failure history.
	}
}

// ReplaceAll rebuilds the projection from a full order snapshot rather
// than an event replay. It is the remote-client analogue of Apply: a
// deployed contract reached over bare RPC exposes no local event bus, so
// the read model is refreshed from each sweep's getPendingOrders result
// instead of folded from OrderCreated/OrderExecuted/etc. events.
func (idx *Index) ReplaceAll(orders []domain.Order) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	next := make(map[uint64]domain.Order, len(orders))
	for _, o := range orders {
		next[o.OrderID] = o
	}
	idx.orders = next
}

// Order returns the current projected state of one order.
func (idx *Index) Order(orderID uint64) (domain.Order, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	o, ok := idx.orders[orderID]
	return o, ok
}

// PendingOrders returns every order the projection currently considers
// Pending.
func (idx *Index) PendingOrders() []domain.Order {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var pending []domain.Order
	for _, o := range idx.orders {
		if o.Status == domain.StatusPending {
			pending = append(pending, o)
		}
	}
	return pending
}

// OrdersByOwner returns every order_id the projection has seen for one
// owner, regardless of status.
func (idx *Index) OrdersByOwner(owner [32]byte) []uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var ids []uint64
	for id, o := range idx.orders {
		if o.Owner == owner {
			ids = append(ids, id)
		}
	}
	return ids
}
