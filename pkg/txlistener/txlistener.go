// Package txlistener polls a chain for a submitted transaction's receipt.
// It is adapted from the teacher repo's referenced-but-unshipped
// pkg/txlistener package, rebuilt to the surface its usage in blackhole.go
// and blackhole_test.go exercises: NewTxListener, WithPollInterval,
// WithTimeout, WaitForTransaction.
package txlistener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Nilupul-byte/limitorderdex/pkg/txtypes"
)

// ErrTimeout is returned when a transaction's receipt does not appear
// before the configured timeout elapses.
var ErrTimeout = errors.New("txlistener: timed out waiting for receipt")

// TxListener waits for transactions to be mined and returns their receipt
// in the string-safe txtypes.TxReceipt shape.
type TxListener interface {
	WaitForTransaction(ctx context.Context, txHash common.Hash) (*txtypes.TxReceipt, error)
}

type receiptClient interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type txListener struct {
	client       receiptClient
	pollInterval time.Duration
	timeout      time.Duration
}

// Option configures a TxListener at construction time.
type Option func(*txListener)

// WithPollInterval overrides the default receipt-polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(l *txListener) {
		l.pollInterval = d
	}
}

// WithTimeout overrides the default maximum wait before giving up on a
// transaction's receipt ever appearing.
func WithTimeout(d time.Duration) Option {
	return func(l *txListener) {
		l.timeout = d
	}
}

// NewTxListener builds a TxListener against an ethclient connection, with
// sane defaults (3s poll interval, 5 minute timeout) matching the teacher's
// cmd/main.go wiring.
func NewTxListener(client *ethclient.Client, opts ...Option) TxListener {
	l := &txListener{
		client:       client,
		pollInterval: 3 * time.Second,
		timeout:      5 * time.Minute,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *txListener) WaitForTransaction(ctx context.Context, txHash common.Hash) (*txtypes.TxReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := l.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return toTxReceipt(receipt), nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			// A real RPC error (not "not mined yet") is surfaced
			// immediately rather than retried to the timeout.
			return nil, fmt.Errorf("fetch receipt for %s: %w", txHash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrTimeout, txHash.Hex())
		case <-ticker.C:
		}
	}
}

func toTxReceipt(r *types.Receipt) *txtypes.TxReceipt {
	logs := make([]txtypes.LogEntry, 0, len(r.Logs))
	for _, l := range r.Logs {
		topics := make([]string, 0, len(l.Topics))
		for _, t := range l.Topics {
			topics = append(topics, t.Hex())
		}
		logs = append(logs, txtypes.LogEntry{
			Address: l.Address.Hex(),
			Topics:  topics,
			Data:    "0x" + common.Bytes2Hex(l.Data),
		})
	}

	status := "0x0"
	if r.Status == types.ReceiptStatusSuccessful {
		status = "0x1"
	}

	return &txtypes.TxReceipt{
		TxHash:            r.TxHash.Hex(),
		BlockNumber:       r.BlockNumber.String(),
		GasUsed:           fmt.Sprintf("%d", r.GasUsed),
		EffectiveGasPrice: effectiveGasPriceString(r),
		Status:            status,
		Logs:              logs,
	}
}

func effectiveGasPriceString(r *types.Receipt) string {
	if r.EffectiveGasPrice == nil {
		return "0"
	}
	return r.EffectiveGasPrice.String()
}
