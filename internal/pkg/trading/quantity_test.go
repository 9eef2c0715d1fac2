package trading

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSizeByRisk(t *testing.T) {
	cases := []struct {
		name    string
		balance string
		risk    string
		price   string
		step    string
		want    string
		err     error
	}{
		{name: "exact", balance: "1000", risk: "0.02", price: "50", step: "0.01", want: "0.4"},
		{name: "floors remainder", balance: "1000", risk: "0.02", price: "51", step: "0.01", want: "0.39"},
		{name: "whole lots", balance: "250", risk: "1", price: "3", step: "1", want: "83"},
		{name: "tiny step", balance: "12.5", risk: "0.1", price: "0.337", step: "0.00000001", want: "3.70919881"},
		{name: "below step", balance: "10", risk: "0.02", price: "50", step: "0.01", err: ErrInsufficientQuantity},
		{name: "zero balance", balance: "0", risk: "0.02", price: "50", step: "0.01", err: ErrInsufficientBalance},
		{name: "zero price", balance: "1000", risk: "0.02", price: "0", step: "0.01", err: ErrInvalidPrice},
		{name: "zero step", balance: "1000", risk: "0.02", price: "50", step: "0", err: ErrInvalidStep},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SizeByRisk(dec(tc.balance), dec(tc.risk), dec(tc.price), dec(tc.step))
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.True(t, dec(tc.want).Equal(got), "want %s got %s", tc.want, got)
		})
	}
}

func TestSizeByRiskBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	steps := []string{"1", "0.1", "0.01", "0.001", "0.00001"}
	for i := 0; i < 500; i++ {
		balance := decimal.NewFromFloat(rng.Float64() * 10000).Round(2).Add(dec("0.01"))
		risk := decimal.NewFromFloat(rng.Float64()).Round(4).Add(dec("0.0001"))
		if risk.GreaterThan(decimal.NewFromInt(1)) {
			risk = decimal.NewFromInt(1)
		}
		price := decimal.NewFromFloat(rng.Float64() * 500).Round(4).Add(dec("0.0001"))
		step := dec(steps[rng.Intn(len(steps))])

		got, err := SizeByRisk(balance, risk, price, step)
		if balance.Mul(risk).LessThan(price.Mul(step)) {
			assert.ErrorIs(t, err, ErrInsufficientQuantity, "b=%s r=%s p=%s s=%s", balance, risk, price, step)
			continue
		}
		require.NoError(t, err)
		assert.True(t, got.IsPositive())
		assert.True(t, got.Mul(price).LessThanOrEqual(balance.Mul(risk)), "qty %s exceeds budget", got)
		assert.True(t, got.Mod(step).IsZero(), "qty %s not a multiple of %s", got, step)
	}
}

func TestFloorToStep(t *testing.T) {
	got, err := FloorToStep(dec("1.23456789123"), dec("0.001"))
	require.NoError(t, err)
	assert.Equal(t, "1.234", got.String())

	again, err := FloorToStep(got, dec("0.001"))
	require.NoError(t, err)
	assert.True(t, got.Equal(again))

	dust, err := FloorToStep(dec("0.0009"), dec("0.001"))
	require.NoError(t, err)
	assert.True(t, dust.IsZero())

	neg, err := FloorToStep(dec("-3"), dec("0.001"))
	require.NoError(t, err)
	assert.True(t, neg.IsZero())

	_, err = FloorToStep(dec("1"), decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestFloorToStepIdempotent(t *testing.T) {
	step := dec("0.01")
	for _, in := range []string{"0.4", "17.99", "0.01", "123456.78"} {
		once, err := FloorToStep(dec(in), step)
		require.NoError(t, err)
		twice, err := FloorToStep(once, step)
		require.NoError(t, err)
		assert.True(t, once.Equal(twice), in)
		assert.True(t, once.Equal(dec(in)), in)
	}
}
