package store

import (
	"math/big"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/Nilupul-byte/limitorderdex/internal/domain"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return &Store{db: gormDB}, mock
}

func TestStore_UpsertOrder(t *testing.T) {
	s, mock := newMockStore(t)

	// Save with a non-zero order_id tries an UPDATE first; no row matches a
	// new order, so it falls back to an INSERT ... ON DUPLICATE KEY UPDATE.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `orders`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `orders`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	var owner [32]byte
	owner[31] = 9

	order := domain.Order{
		OrderID:     1,
		Owner:       owner,
		FromToken:   "USDC",
		FromAmount:  big.NewInt(10_000_000),
		ToToken:     "WEGLD",
		TargetNum:   big.NewInt(155),
		TargetDenom: big.NewInt(1000),
		SlippageBp:  500,
		Status:      domain.StatusPending,
		CreatedAt:   1_700_000_000,
		ExpiresAt:   1_700_003_600,
	}

	err := s.UpsertOrder(order)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AppendEvent(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `order_events`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := s.AppendEvent(1, "OrderCreated", `{"order_id":1}`)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBigIntToString(t *testing.T) {
	tests := []struct {
		name     string
		input    *big.Int
		expected string
	}{
		{"nil value", nil, "0"},
		{"zero value", big.NewInt(0), "0"},
		{"positive value", big.NewInt(123456789), "123456789"},
		{"large value", new(big.Int).SetBytes([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}), "18446744073709551615"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, bigIntToString(tt.input))
		})
	}
}

func TestOrderRecord_RoundTrip(t *testing.T) {
	var owner [32]byte
	owner[31] = 7

	order := domain.Order{
		OrderID:     42,
		Owner:       owner,
		FromToken:   "USDC",
		FromAmount:  big.NewInt(10_000_000),
		ToToken:     "WEGLD",
		TargetNum:   big.NewInt(155),
		TargetDenom: big.NewInt(1000),
		SlippageBp:  500,
		Status:      domain.StatusPending,
		CreatedAt:   1_700_000_000,
		ExpiresAt:   1_700_003_600,
	}

	record := toOrderRecord(order)
	roundTripped, err := fromOrderRecord(record)
	require.NoError(t, err)

	require.Equal(t, order.OrderID, roundTripped.OrderID)
	require.Equal(t, order.Owner, roundTripped.Owner)
	require.Equal(t, order.FromToken, roundTripped.FromToken)
	require.Equal(t, 0, order.FromAmount.Cmp(roundTripped.FromAmount))
	require.Equal(t, order.Status, roundTripped.Status)
}

func TestOrderRecord_TableName(t *testing.T) {
	require.Equal(t, "orders", OrderRecord{}.TableName())
	require.Equal(t, "order_events", EventRecord{}.TableName())
}
