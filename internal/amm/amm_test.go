package amm

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nilupul-byte/limitorderdex/pkg/contractclient"
	"github.com/Nilupul-byte/limitorderdex/pkg/txtypes"
)

// fakeContractClient implements contractclient.ContractClient for tests
// without depending on a live ethclient connection.
type fakeContractClient struct {
	callResult []interface{}
	callErr    error
}

func (f *fakeContractClient) Call(caller *common.Address, method string, args ...interface{}) ([]interface{}, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.callResult, nil
}

func (f *fakeContractClient) Send(kind txtypes.SendKind, gasLimit *uint64, from *common.Address, pk *ecdsa.PrivateKey, method string, args ...interface{}) (common.Hash, error) {
	return common.Hash{}, nil
}

func (f *fakeContractClient) Abi() abi.ABI                     { return abi.ABI{} }
func (f *fakeContractClient) ContractAddress() common.Address { return common.Address{} }
func (f *fakeContractClient) TransactionData(common.Hash) ([]byte, error) {
	return nil, nil
}
func (f *fakeContractClient) DecodeTransaction([]byte) (*contractclient.DecodedTransaction, error) {
	return nil, nil
}
func (f *fakeContractClient) DecodeTransactionHex(string) (*contractclient.DecodedTransaction, error) {
	return nil, nil
}
func (f *fakeContractClient) ParseReceipt(*txtypes.TxReceipt) (string, error) {
	return "", nil
}

type rpcError struct{}

func (rpcError) Error() string { return "rpc unavailable" }

func TestGetReserves_S1Scenario(t *testing.T) {
	reserveFrom := big.NewInt(1_000_000_000_000)
	reserveTo, _ := new(big.Int).SetString("154000000000000000000", 10)

	pool := &fakeContractClient{
		callResult: []interface{}{reserveFrom, reserveTo},
	}

	registry := StaticDecimalsRegistry{
		"USDC":  6,
		"WEGLD": 18,
	}

	adapter := NewAdapter(pool, registry)
	snapshot, err := adapter.GetReserves(common.Address{}, "USDC", "WEGLD")
	require.NoError(t, err)
	assert.Equal(t, reserveFrom, snapshot.ReserveFrom)
	assert.Equal(t, reserveTo, snapshot.ReserveTo)
	assert.Equal(t, 6, snapshot.DecimalsFrom)
	assert.Equal(t, 18, snapshot.DecimalsTo)
}

func TestGetReserves_PoolUnavailable(t *testing.T) {
	pool := &fakeContractClient{callErr: rpcError{}}
	registry := StaticDecimalsRegistry{"USDC": 6, "WEGLD": 18}

	adapter := NewAdapter(pool, registry)
	_, err := adapter.GetReserves(common.Address{}, "USDC", "WEGLD")
	assert.ErrorIs(t, err, ErrPoolUnavailable)
}

func TestGetReserves_UnknownToken(t *testing.T) {
	pool := &fakeContractClient{
		callResult: []interface{}{big.NewInt(1), big.NewInt(1)},
	}
	registry := StaticDecimalsRegistry{"USDC": 6}

	adapter := NewAdapter(pool, registry)
	_, err := adapter.GetReserves(common.Address{}, "USDC", "UNKNOWN")
	assert.ErrorIs(t, err, ErrPoolUnavailable)
}

func TestBuildSwapPayload(t *testing.T) {
	payload, err := BuildSwapPayload("USDC", big.NewInt(10_000_000), "WEGLD", big.NewInt(1_472_500_000_000_000_000))
	require.NoError(t, err)
	assert.NotEmpty(t, payload)
	assert.True(t, len(payload) > 4)
}

func TestBuildSwapPayload_RejectsZeroInput(t *testing.T) {
	_, err := BuildSwapPayload("USDC", big.NewInt(0), "WEGLD", big.NewInt(1))
	assert.Error(t, err)
}

func TestBuildSwapPayload_RejectsNegativeMinOut(t *testing.T) {
	_, err := BuildSwapPayload("USDC", big.NewInt(10), "WEGLD", big.NewInt(-1))
	assert.Error(t, err)
}
