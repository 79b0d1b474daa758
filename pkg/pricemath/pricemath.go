// Package pricemath turns human decimal prices into the integer
// numerator/denominator pairs the order contract stores and computes
// minimum-output amounts from them. It is grounded on the teacher's
// pkg/util/calculation.go surface (only its test file survived
// retrieval: pkg/util/calculation_test.go exercises SqrtPriceToPrice-style
// decimal/fraction conversions and slippage-bounded amount math), rebuilt
// here for the two-token decimal-adjusted price the order book needs
// instead of the teacher's sqrt-price concentrated-liquidity domain.
package pricemath

import (
	"errors"
	"math"
	"math/big"
)

// ErrPriceOutOfRange is returned when the decimal-adjustment magnitude
// between the two tokens' decimals would require more precision than the
// safe-integer range affords.
var ErrPriceOutOfRange = errors.New("pricemath: price out of range")

// ErrZeroReserve is returned when a pool reserve used for a spot-price
// computation is zero.
var ErrZeroReserve = errors.New("pricemath: zero reserve")

// ErrZeroInput is returned when an amount computation is given a zero
// input amount.
var ErrZeroInput = errors.New("pricemath: zero input")

// Fraction is a non-negative rational price already adjusted so that
// output_units = input_units * Num / Denom.
type Fraction struct {
	Num   *big.Int
	Denom *big.Int
}

// PriceToFraction converts a human decimal price p (units of to-token per
// one unit of from-token) into a (num, denom) pair, given the base-unit
// decimals of each token.
//
// PRECISION is chosen as min(6, 15-|delta|) where delta = decimalsTo -
// decimalsFrom; it fails with ErrPriceOutOfRange if that would go negative.
func PriceToFraction(p float64, decimalsFrom, decimalsTo int) (Fraction, error) {
	delta := decimalsTo - decimalsFrom
	absDelta := delta
	if absDelta < 0 {
		absDelta = -absDelta
	}

	precision := 15 - absDelta
	if precision > 6 {
		precision = 6
	}
	if precision < 0 {
		return Fraction{}, ErrPriceOutOfRange
	}

	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil)
	if denom.Sign() == 0 {
		return Fraction{}, ErrPriceOutOfRange
	}

	scale := precision + delta
	scaled := p * math.Pow(10, float64(scale))
	num, _ := big.NewFloat(math.Floor(scaled)).Int(nil)
	if num.Sign() < 0 {
		num = big.NewInt(0)
	}

	return Fraction{Num: num, Denom: denom}, nil
}

// MinOut computes expected = floor(fromAmount * num / denom), then
// floor(expected * (10_000 - slippageBp) / 10_000), using arbitrary-precision
// integer arithmetic throughout.
func MinOut(fromAmount *big.Int, num, denom *big.Int, slippageBp uint16) (*big.Int, error) {
	if fromAmount == nil || fromAmount.Sign() == 0 {
		return nil, ErrZeroInput
	}
	if denom == nil || denom.Sign() == 0 {
		return nil, ErrPriceOutOfRange
	}
	if slippageBp > 10_000 {
		return nil, errors.New("pricemath: slippage_bp out of range")
	}

	expected := new(big.Int).Mul(fromAmount, num)
	expected.Quo(expected, denom)

	remaining := big.NewInt(int64(10_000 - slippageBp))
	minOut := new(big.Int).Mul(expected, remaining)
	minOut.Quo(minOut, big.NewInt(10_000))

	return minOut, nil
}

// SpotPrice computes (reserveTo/10^decimalsTo) / (reserveFrom/10^decimalsFrom)
// as a float64, used only for the executor's trigger comparison.
func SpotPrice(reserveFrom, reserveTo *big.Int, decimalsFrom, decimalsTo int) (float64, error) {
	if reserveFrom == nil || reserveFrom.Sign() == 0 {
		return 0, ErrZeroReserve
	}
	if reserveTo == nil || reserveTo.Sign() == 0 {
		return 0, ErrZeroReserve
	}

	fromF := new(big.Float).SetInt(reserveFrom)
	toF := new(big.Float).SetInt(reserveTo)

	fromF.Quo(fromF, pow10(decimalsFrom))
	toF.Quo(toF, pow10(decimalsTo))

	p := new(big.Float).Quo(toF, fromF)
	result, _ := p.Float64()
	return result, nil
}

func pow10(n int) *big.Float {
	if n >= 0 {
		return new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil))
	}
	inv := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n)), nil))
	return new(big.Float).Quo(big.NewFloat(1), inv)
}
