package executor

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Nilupul-byte/limitorderdex/internal/domain"
	"github.com/Nilupul-byte/limitorderdex/pkg/contractclient"
	"github.com/Nilupul-byte/limitorderdex/pkg/txlistener"
	"github.com/Nilupul-byte/limitorderdex/pkg/txtypes"
)

// orderBookABIJSON describes the subset of the deployed order contract's
// ABI the executor calls: getPendingOrders, getOrder, executeLimitOrder.
// The Order tuple follows domain.Order's field order (createdAt, expiresAt,
// status at the tail); this differs from the byte layout in
// internal/wireformat, whose tail is expires_at, status, created_at.
const orderBookABIJSON = `[
	{
		"name": "getPendingOrders",
		"type": "function",
		"inputs": [],
		"outputs": [{"name": "orders", "type": "tuple[]", "components": [
			{"name": "orderId", "type": "uint64"},
			{"name": "owner", "type": "address"},
			{"name": "fromToken", "type": "string"},
			{"name": "fromAmount", "type": "uint256"},
			{"name": "toToken", "type": "string"},
			{"name": "targetNum", "type": "uint256"},
			{"name": "targetDenom", "type": "uint256"},
			{"name": "slippageBp", "type": "uint16"},
			{"name": "createdAt", "type": "uint64"},
			{"name": "expiresAt", "type": "uint64"},
			{"name": "status", "type": "uint8"}
		]}]
	},
	{
		"name": "getOrder",
		"type": "function",
		"inputs": [{"name": "orderId", "type": "uint64"}],
		"outputs": [{"name": "order", "type": "tuple", "components": [
			{"name": "orderId", "type": "uint64"},
			{"name": "owner", "type": "address"},
			{"name": "fromToken", "type": "string"},
			{"name": "fromAmount", "type": "uint256"},
			{"name": "toToken", "type": "string"},
			{"name": "targetNum", "type": "uint256"},
			{"name": "targetDenom", "type": "uint256"},
			{"name": "slippageBp", "type": "uint16"},
			{"name": "createdAt", "type": "uint64"},
			{"name": "expiresAt", "type": "uint64"},
			{"name": "status", "type": "uint8"}
		]}]
	},
	{
		"name": "executeLimitOrder",
		"type": "function",
		"inputs": [
			{"name": "orderId", "type": "uint64"},
			{"name": "currentNum", "type": "uint256"},
			{"name": "currentDenom", "type": "uint256"}
		],
		"outputs": []
	}
]`

// OrderBookABI is the parsed order-contract ABI fragment the remote
// client packs and unpacks against.
var OrderBookABI = mustParseOrderBookABI()

func mustParseOrderBookABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(orderBookABIJSON))
	if err != nil {
		panic(fmt.Sprintf("executor: invalid embedded order book ABI: %v", err))
	}
	return parsed
}

// orderTuple mirrors the ABI tuple's field order exactly so abi.Unpack
// can decode into it via reflection.
type orderTuple struct {
	OrderId     uint64
	Owner       common.Address
	FromToken   string
	FromAmount  *big.Int
	ToToken     string
	TargetNum   *big.Int
	TargetDenom *big.Int
	SlippageBp  uint16
	CreatedAt   uint64
	ExpiresAt   uint64
	Status      uint8
}

func (t orderTuple) toDomain() domain.Order {
	var owner [32]byte
	copy(owner[32-20:], t.Owner[:])
	return domain.Order{
		OrderID:     t.OrderId,
		Owner:       owner,
		FromToken:   domain.TokenId(t.FromToken),
		FromAmount:  t.FromAmount,
		ToToken:     domain.TokenId(t.ToToken),
		TargetNum:   t.TargetNum,
		TargetDenom: t.TargetDenom,
		SlippageBp:  t.SlippageBp,
		CreatedAt:   int64(t.CreatedAt),
		ExpiresAt:   int64(t.ExpiresAt),
		Status:      domain.OrderStatus(t.Status),
	}
}

// RemoteOrderBookClient drives a deployed order contract over RPC through
// a contractclient.ContractClient, signing executeLimitOrder submissions
// with the operator key. Grounded on Blackhole.Swap/GetAMMState in
// blackhole.go for the "Call for reads, Send for the state-changing
// transaction" split.
type RemoteOrderBookClient struct {
	client       contractclient.ContractClient
	operatorKey  *ecdsa.PrivateKey
	operatorAddr common.Address
	gasLimit     uint64

	listener txlistener.TxListener
	recorder EventRecorder
}

// EventRecorder appends one entry to an order's durable event log; it is
// the subset of *store.Store's surface RemoteOrderBookClient needs to
// record a submitted transaction's eventual confirmation.
type EventRecorder interface {
	AppendEvent(orderID uint64, kind string, payloadJSON string) error
}

// RemoteClientOption configures optional RemoteOrderBookClient behavior
// at construction time.
type RemoteClientOption func(*RemoteOrderBookClient)

// WithConfirmation arms asynchronous post-submission confirmation: once
// executeLimitOrder's transaction is accepted, a background goroutine
// waits for its receipt via listener and records the outcome through
// recorder, without blocking the sweep loop on the listener's poll
// interval or timeout.
func WithConfirmation(listener txlistener.TxListener, recorder EventRecorder) RemoteClientOption {
	return func(c *RemoteOrderBookClient) {
		c.listener = listener
		c.recorder = recorder
	}
}

// NewRemoteOrderBookClient binds a ContractClient already pointed at the
// deployed order contract to an operator signing key and a gas budget
// sized for the cross-shard async swap + callback (spec default ~80M).
func NewRemoteOrderBookClient(client contractclient.ContractClient, operatorKey *ecdsa.PrivateKey, operatorAddr common.Address, gasLimit uint64, opts ...RemoteClientOption) *RemoteOrderBookClient {
	c := &RemoteOrderBookClient{
		client:       client,
		operatorKey:  operatorKey,
		operatorAddr: operatorAddr,
		gasLimit:     gasLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RemoteOrderBookClient) GetPendingOrders(ctx context.Context) ([]domain.Order, error) {
	values, err := c.client.Call(nil, "getPendingOrders")
	if err != nil {
		return nil, fmt.Errorf("getPendingOrders: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("getPendingOrders: unexpected output arity %d", len(values))
	}

	// abi.Unpack decodes a tuple[] output into its own reflection-generated
	// struct type, not orderTuple directly; abi.ConvertType re-copies the
	// decoded value field-by-field into the named destination type, the
	// same pattern abigen-generated bindings use for tuple outputs.
	tuples, ok := abi.ConvertType(values[0], new([]orderTuple)).(*[]orderTuple)
	if !ok {
		return nil, fmt.Errorf("getPendingOrders: unexpected output type %T", values[0])
	}

	orders := make([]domain.Order, 0, len(*tuples))
	for _, t := range *tuples {
		orders = append(orders, t.toDomain())
	}
	return orders, nil
}

func (c *RemoteOrderBookClient) GetOrder(ctx context.Context, orderID uint64) (domain.Order, error) {
	values, err := c.client.Call(nil, "getOrder", orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("getOrder(%d): %w", orderID, err)
	}
	if len(values) != 1 {
		return domain.Order{}, fmt.Errorf("getOrder(%d): unexpected output arity %d", orderID, len(values))
	}
	tuple, ok := abi.ConvertType(values[0], new(orderTuple)).(*orderTuple)
	if !ok {
		return domain.Order{}, fmt.Errorf("getOrder(%d): unexpected output type %T", orderID, values[0])
	}
	return tuple.toDomain(), nil
}

func (c *RemoteOrderBookClient) ExecuteLimitOrder(ctx context.Context, orderID uint64, currentNum, currentDenom *big.Int) (common.Hash, error) {
	gas := c.gasLimit
	hash, err := c.client.Send(txtypes.CrossShard, &gas, &c.operatorAddr, c.operatorKey, "executeLimitOrder", orderID, currentNum, currentDenom)
	if err != nil {
		return common.Hash{}, fmt.Errorf("executeLimitOrder(%d): %w", orderID, err)
	}
	if c.listener != nil && c.recorder != nil {
		go c.confirmSubmission(orderID, hash)
	}
	return hash, nil
}

// confirmSubmission waits for executeLimitOrder's transaction to be
// mined and records the outcome in the order's event log. It runs off
// the sweep goroutine: phase-A submission already returned, and the
// listener's poll interval/timeout must not hold up the next sweep.
func (c *RemoteOrderBookClient) confirmSubmission(orderID uint64, hash common.Hash) {
	receipt, err := c.listener.WaitForTransaction(context.Background(), hash)
	if err != nil {
		log.Printf("executor: confirm executeLimitOrder(%d) tx %s: %v", orderID, hash.Hex(), err)
		return
	}

	kind := "OrderExecutionConfirmed"
	if receipt.Status != "0x1" {
		kind = "OrderExecutionReverted"
	}
	payload, err := json.Marshal(receipt)
	if err != nil {
		log.Printf("executor: marshal receipt for order %d: %v", orderID, err)
		return
	}
	if err := c.recorder.AppendEvent(orderID, kind, string(payload)); err != nil {
		log.Printf("executor: record confirmation for order %d: %v", orderID, err)
	}
}
