package indicator

import (
	"testing"

	"crossbot/internal/market"

	"github.com/stretchr/testify/assert"
)

func trend(n int, start, step float64) market.Series {
	out := make(market.Series, n)
	price := start
	for i := range out {
		out[i] = market.Candle{Open: price, High: price + 1, Low: price - 1, Close: price}
		price += step
	}
	return out
}

func TestComputeNotReady(t *testing.T) {
	snap := Compute(trend(10, 100, 1), Settings{})
	assert.False(t, snap.Ready)
	assert.Equal(t, "rsi=n/a atr=n/a", snap.String())
}

func TestComputeUptrend(t *testing.T) {
	snap := Compute(trend(60, 100, 1), Settings{})
	assert.True(t, snap.Ready)
	assert.Equal(t, "overbought", snap.RSIState)
	assert.InDelta(t, 100, snap.RSI, 0.01)
	assert.InDelta(t, 2, snap.ATR, 0.01)
	assert.Positive(t, snap.ATRPct)
}

func TestComputeDowntrend(t *testing.T) {
	snap := Compute(trend(60, 200, -1), Settings{RSIPeriod: 7, ATRPeriod: 7})
	assert.True(t, snap.Ready)
	assert.Equal(t, "oversold", snap.RSIState)
	assert.Contains(t, snap.String(), "oversold")
}
