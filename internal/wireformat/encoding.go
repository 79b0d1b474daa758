// Package wireformat implements the normative on-chain byte layout for an
// Order. No other package in this repository calls it: the in-process
// order contract emits Go event structs, and the executor's RPC client
// decodes ABI tuples. Field order and widths
// here are part of the external interface, not an implementation detail;
// see the teacher's types_test.go for the same "layout is the contract"
// treatment of abi.Pack argument order.
package wireformat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/Nilupul-byte/limitorderdex/internal/domain"
)

// EncodeOrder serialises an Order in the normative big-endian layout:
// order_id(8) | owner(32) | from_token(4+n) | from_amount(4+n) |
// to_token(4+n) | target_num(4+n) | target_denom(4+n) | slippage_bp(8) |
// expires_at(8) | status(1) | created_at(8).
func EncodeOrder(o domain.Order) ([]byte, error) {
	if o.FromAmount == nil {
		return nil, fmt.Errorf("wireformat: nil from_amount")
	}
	if o.TargetNum == nil || o.TargetDenom == nil {
		return nil, fmt.Errorf("wireformat: nil target fraction")
	}

	var buf bytes.Buffer

	var orderID [8]byte
	binary.BigEndian.PutUint64(orderID[:], o.OrderID)
	buf.Write(orderID[:])

	buf.Write(o.Owner[:])

	if err := writeLengthPrefixed(&buf, []byte(o.FromToken)); err != nil {
		return nil, err
	}
	if err := writeLengthPrefixed(&buf, o.FromAmount.Bytes()); err != nil {
		return nil, err
	}
	if err := writeLengthPrefixed(&buf, []byte(o.ToToken)); err != nil {
		return nil, err
	}
	if err := writeLengthPrefixed(&buf, o.TargetNum.Bytes()); err != nil {
		return nil, err
	}
	if err := writeLengthPrefixed(&buf, o.TargetDenom.Bytes()); err != nil {
		return nil, err
	}

	var slippage [8]byte
	binary.BigEndian.PutUint64(slippage[:], uint64(o.SlippageBp))
	buf.Write(slippage[:])

	var expiresAt [8]byte
	binary.BigEndian.PutUint64(expiresAt[:], uint64(o.ExpiresAt))
	buf.Write(expiresAt[:])

	buf.WriteByte(byte(o.Status))

	var createdAt [8]byte
	binary.BigEndian.PutUint64(createdAt[:], uint64(o.CreatedAt))
	buf.Write(createdAt[:])

	return buf.Bytes(), nil
}

func writeLengthPrefixed(buf *bytes.Buffer, data []byte) error {
	if len(data) > 0xFFFFFFFF {
		return fmt.Errorf("wireformat: field too large: %d bytes", len(data))
	}
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	buf.Write(length[:])
	buf.Write(data)
	return nil
}

// DecodeOrder is the inverse of EncodeOrder.
func DecodeOrder(data []byte) (domain.Order, error) {
	r := bytes.NewReader(data)
	var o domain.Order

	orderID, err := readUint64(r)
	if err != nil {
		return o, fmt.Errorf("wireformat: order_id: %w", err)
	}
	o.OrderID = orderID

	if _, err := io.ReadFull(r, o.Owner[:]); err != nil {
		return o, fmt.Errorf("wireformat: owner: %w", err)
	}

	fromToken, err := readLengthPrefixed(r)
	if err != nil {
		return o, fmt.Errorf("wireformat: from_token: %w", err)
	}
	o.FromToken = domain.TokenId(fromToken)

	fromAmount, err := readLengthPrefixed(r)
	if err != nil {
		return o, fmt.Errorf("wireformat: from_amount: %w", err)
	}
	o.FromAmount = bytesToBigInt(fromAmount)

	toToken, err := readLengthPrefixed(r)
	if err != nil {
		return o, fmt.Errorf("wireformat: to_token: %w", err)
	}
	o.ToToken = domain.TokenId(toToken)

	targetNum, err := readLengthPrefixed(r)
	if err != nil {
		return o, fmt.Errorf("wireformat: target_num: %w", err)
	}
	o.TargetNum = bytesToBigInt(targetNum)

	targetDenom, err := readLengthPrefixed(r)
	if err != nil {
		return o, fmt.Errorf("wireformat: target_denom: %w", err)
	}
	o.TargetDenom = bytesToBigInt(targetDenom)

	slippage, err := readUint64(r)
	if err != nil {
		return o, fmt.Errorf("wireformat: slippage_bp: %w", err)
	}
	o.SlippageBp = uint16(slippage)

	expiresAt, err := readUint64(r)
	if err != nil {
		return o, fmt.Errorf("wireformat: expires_at: %w", err)
	}
	o.ExpiresAt = int64(expiresAt)

	statusByte, err := r.ReadByte()
	if err != nil {
		return o, fmt.Errorf("wireformat: status: %w", err)
	}
	o.Status = domain.OrderStatus(statusByte)

	createdAt, err := readUint64(r)
	if err != nil {
		return o, fmt.Errorf("wireformat: created_at: %w", err)
	}
	o.CreatedAt = int64(createdAt)

	return o, nil
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func readLengthPrefixed(r *bytes.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf[:])

	data := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func bytesToBigInt(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
