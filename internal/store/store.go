// Package store persists orders and their events to MySQL via GORM. It is
// adapted from the teacher's internal/db.MySQLRecorder: same
// Open/OpenWithDB/AutoMigrate/Close shape, same big.Int-as-varchar(78)
// column convention, applied to orders and the append-only event log
// instead of strategy asset snapshots.
package store

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Nilupul-byte/limitorderdex/internal/domain"
)

// OrderRecord is the GORM model mirroring domain.Order. Amounts travel as
// varchar to preserve big.Int precision, the same convention the
// teacher's AssetSnapshotRecord uses for TotalValue/AmountWavax/etc.
type OrderRecord struct {
	OrderID     uint64 `gorm:"primaryKey;autoIncrement:false"`
	Owner       string `gorm:"type:varchar(66);not null;index"`
	FromToken   string `gorm:"type:varchar(128);not null"`
	FromAmount  string `gorm:"type:varchar(78);not null"`
	ToToken     string `gorm:"type:varchar(128);not null"`
	TargetNum   string `gorm:"type:varchar(78);not null"`
	TargetDenom string `gorm:"type:varchar(78);not null"`
	SlippageBp  uint16 `gorm:"not null"`
	Status      uint8  `gorm:"not null;index"`
	CreatedAt   int64  `gorm:"not null"`
	ExpiresAt   int64  `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (OrderRecord) TableName() string { return "orders" }

// EventRecord is one append-only entry in the order event log: the sole
// source of truth external indexers rely on, per the spec's event
// taxonomy. Payload carries the JSON-encoded event struct.
type EventRecord struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64 `gorm:"not null;index"`
	Kind      string `gorm:"type:varchar(32);not null;index"`
	Payload   string `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (EventRecord) TableName() string { return "order_events" }

// Store wraps a GORM connection scoped to orders and their events.
type Store struct {
	db *gorm.DB
}

// Open connects to MySQL and migrates the order/event schema. dsn format:
// "user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local".
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	return OpenWithDB(db)
}

// OpenWithDB wraps an already-open GORM connection, migrating the schema.
func OpenWithDB(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&OrderRecord{}, &EventRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// GetDB exposes the underlying GORM handle for advanced queries.
func (s *Store) GetDB() *gorm.DB { return s.db }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	return sqlDB.Close()
}

// UpsertOrder writes the current snapshot of an order, inserting or
// updating by order_id.
func (s *Store) UpsertOrder(o domain.Order) error {
	record := toOrderRecord(o)
	result := s.db.Save(&record)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert order %d: %w", o.OrderID, result.Error)
	}
	return nil
}

// GetOrder reads back one order by id.
func (s *Store) GetOrder(orderID uint64) (domain.Order, error) {
	var record OrderRecord
	result := s.db.First(&record, "order_id = ?", orderID)
	if result.Error != nil {
		return domain.Order{}, fmt.Errorf("failed to get order %d: %w", orderID, result.Error)
	}
	return fromOrderRecord(record)
}

// ListOrdersByStatus returns every stored order with the given status.
func (s *Store) ListOrdersByStatus(status domain.OrderStatus) ([]domain.Order, error) {
	var records []OrderRecord
	result := s.db.Where("status = ?", uint8(status)).Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list orders by status: %w", result.Error)
	}

	orders := make([]domain.Order, 0, len(records))
	for _, r := range records {
		o, err := fromOrderRecord(r)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// AppendEvent appends one event to the order's append-only log. kind
// should be the event's type name (e.g. "OrderCreated").
func (s *Store) AppendEvent(orderID uint64, kind string, payloadJSON string) error {
	record := EventRecord{OrderID: orderID, Kind: kind, Payload: payloadJSON}
	result := s.db.Create(&record)
	if result.Error != nil {
		return fmt.Errorf("failed to append event for order %d: %w", orderID, result.Error)
	}
	return nil
}

// EventsForOrder returns every event recorded for an order, in emission
// (insertion) order.
func (s *Store) EventsForOrder(orderID uint64) ([]EventRecord, error) {
	var records []EventRecord
	result := s.db.Where("order_id = ?", orderID).Order("id ASC").Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load events for order %d: %w", orderID, result.Error)
	}
	return records, nil
}

// CountOrders returns the total number of stored orders.
func (s *Store) CountOrders() (int64, error) {
	var count int64
	result := s.db.Model(&OrderRecord{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count orders: %w", result.Error)
	}
	return count, nil
}

func bigIntToString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func stringToBigInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("store: invalid big.Int string %q", s)
	}
	return v, nil
}

func toOrderRecord(o domain.Order) OrderRecord {
	return OrderRecord{
		OrderID:     o.OrderID,
		Owner:       fmt.Sprintf("0x%x", o.Owner),
		FromToken:   string(o.FromToken),
		FromAmount:  bigIntToString(o.FromAmount),
		ToToken:     string(o.ToToken),
		TargetNum:   bigIntToString(o.TargetNum),
		TargetDenom: bigIntToString(o.TargetDenom),
		SlippageBp:  o.SlippageBp,
		Status:      uint8(o.Status),
		CreatedAt:   o.CreatedAt,
		ExpiresAt:   o.ExpiresAt,
	}
}

func fromOrderRecord(r OrderRecord) (domain.Order, error) {
	fromAmount, err := stringToBigInt(r.FromAmount)
	if err != nil {
		return domain.Order{}, err
	}
	targetNum, err := stringToBigInt(r.TargetNum)
	if err != nil {
		return domain.Order{}, err
	}
	targetDenom, err := stringToBigInt(r.TargetDenom)
	if err != nil {
		return domain.Order{}, err
	}

	var owner [32]byte
	ownerBytes, err := hex.DecodeString(strings.TrimPrefix(r.Owner, "0x"))
	if err != nil {
		return domain.Order{}, fmt.Errorf("store: invalid owner hex %q: %w", r.Owner, err)
	}
	copy(owner[:], ownerBytes)

	return domain.Order{
		OrderID:     r.OrderID,
		Owner:       owner,
		FromToken:   domain.TokenId(r.FromToken),
		FromAmount:  fromAmount,
		ToToken:     domain.TokenId(r.ToToken),
		TargetNum:   targetNum,
		TargetDenom: targetDenom,
		SlippageBp:  r.SlippageBp,
		Status:      domain.OrderStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
	}, nil
}
