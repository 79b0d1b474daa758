package pricemath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceToFraction_S1Scenario(t *testing.T) {
	frac, err := PriceToFraction(0.155, 6, 18)
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(1_000), frac.Denom)
	assert.Equal(t, "155000000000000", frac.Num.String())
}

func TestPriceToFraction_OutOfRange(t *testing.T) {
	_, err := PriceToFraction(1.0, 0, 20)
	assert.ErrorIs(t, err, ErrPriceOutOfRange)
}

func TestPriceToFraction_ZeroDelta(t *testing.T) {
	frac, err := PriceToFraction(2.5, 18, 18)
	require.NoError(t, err)
	assert.Equal(t, "1000000", frac.Denom.String())
	assert.Equal(t, "2500000", frac.Num.String())
}

func TestMinOut_S1Scenario(t *testing.T) {
	fromAmount := big.NewInt(10_000_000)
	num, _ := new(big.Int).SetString("155000000000000", 10)
	denom := big.NewInt(1_000)

	minOut, err := MinOut(fromAmount, num, denom, 500)
	require.NoError(t, err)
	assert.Equal(t, "1472500000000000000", minOut.String())
}

func TestMinOut_ZeroInput(t *testing.T) {
	_, err := MinOut(big.NewInt(0), big.NewInt(1), big.NewInt(1), 0)
	assert.ErrorIs(t, err, ErrZeroInput)
}

func TestMinOut_ZeroDenomRejected(t *testing.T) {
	_, err := MinOut(big.NewInt(10), big.NewInt(1), big.NewInt(0), 0)
	assert.ErrorIs(t, err, ErrPriceOutOfRange)
}

func TestMinOut_BoundarySlippage(t *testing.T) {
	fromAmount := big.NewInt(1_000_000)
	num := big.NewInt(2)
	denom := big.NewInt(1)

	exact, err := MinOut(fromAmount, num, denom, 0)
	require.NoError(t, err)
	assert.Equal(t, "2000000", exact.String())

	anyOutput, err := MinOut(fromAmount, num, denom, 10_000)
	require.NoError(t, err)
	assert.Equal(t, "0", anyOutput.String())
}

func TestSpotPrice_S1Scenario(t *testing.T) {
	reserveFrom := big.NewInt(1_000_000_000_000)
	reserveTo, _ := new(big.Int).SetString("154000000000000000000", 10)

	p, err := SpotPrice(reserveFrom, reserveTo, 6, 18)
	require.NoError(t, err)
	assert.InDelta(t, 0.154, p, 1e-9)
}

func TestSpotPrice_ZeroReserve(t *testing.T) {
	_, err := SpotPrice(big.NewInt(0), big.NewInt(1), 6, 18)
	assert.ErrorIs(t, err, ErrZeroReserve)

	_, err = SpotPrice(big.NewInt(1), big.NewInt(0), 6, 18)
	assert.ErrorIs(t, err, ErrZeroReserve)
}
