package signal

import (
	"testing"

	"crossbot/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesOf(closes ...float64) market.Series {
	out := make(market.Series, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{
			OpenTime:  int64(i) * 900_000,
			CloseTime: int64(i+1)*900_000 - 1,
			Close:     c,
		}
	}
	return out
}

func TestEMASeededByFirstClose(t *testing.T) {
	got := EMA([]float64{10, 20, 30}, 3)
	// alpha = 0.5
	assert.InDeltaSlice(t, []float64{10, 15, 22.5}, got, 1e-12)

	last, ok := LastEMA([]float64{10, 20, 30}, 3)
	require.True(t, ok)
	assert.InDelta(t, 22.5, last, 1e-12)

	assert.Nil(t, EMA(nil, 3))
	_, ok = LastEMA(nil, 3)
	assert.False(t, ok)
	_, ok = LastEMA([]float64{1}, 0)
	assert.False(t, ok)
}

func TestEMASingleClose(t *testing.T) {
	assert.Equal(t, []float64{42}, EMA([]float64{42}, 9))
}

func TestEMAMatchesSeriesTail(t *testing.T) {
	closes := []float64{101.2, 100.8, 102.5, 103.1, 99.9, 104.4, 105.0, 103.3}
	series := EMA(closes, 5)
	last, _ := LastEMA(closes, 5)
	assert.InDelta(t, series[len(series)-1], last, 1e-12)
}

func TestComputeDeterministic(t *testing.T) {
	s := seriesOf(100, 101, 103, 102, 106, 108, 107, 110)
	before := append(market.Series(nil), s...)

	a, err := Compute(s, Periods{Fast: 3, Slow: 5})
	require.NoError(t, err)
	b, err := Compute(s, Periods{Fast: 3, Slow: 5})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, before, s)
	assert.Equal(t, 110.0, a.Price)
	assert.Equal(t, s[len(s)-1].CloseTime, a.CloseTime)
	assert.Equal(t, 8, a.Candles)
}

func TestComputeCross(t *testing.T) {
	rising, err := Compute(seriesOf(100, 101, 102, 103, 104, 105, 106), Periods{Fast: 2, Slow: 5})
	require.NoError(t, err)
	assert.Equal(t, Bullish, rising.Cross())

	falling, err := Compute(seriesOf(106, 105, 104, 103, 102, 101, 100), Periods{Fast: 2, Slow: 5})
	require.NoError(t, err)
	assert.Equal(t, Bearish, falling.Cross())

	flat, err := Compute(seriesOf(100, 100, 100), Periods{Fast: 1, Slow: 3})
	require.NoError(t, err)
	assert.Equal(t, Neutral, flat.Cross())

	single, err := Compute(seriesOf(100), Periods{Fast: 9, Slow: 21})
	require.NoError(t, err)
	assert.Equal(t, Neutral, single.Cross())
}

func TestComputeErrors(t *testing.T) {
	_, err := Compute(nil, Periods{Fast: 9, Slow: 21})
	assert.ErrorIs(t, err, ErrNoCandles)

	_, err = Compute(seriesOf(1, 2), Periods{Fast: 0, Slow: 21})
	assert.Error(t, err)
}

func TestCrossString(t *testing.T) {
	assert.Equal(t, "bullish", Bullish.String())
	assert.Equal(t, "bearish", Bearish.String())
	assert.Equal(t, "neutral", Neutral.String())
	r := Report{Fast: 105, Slow: 102, Price: 50}
	assert.Equal(t, Bullish, r.Cross())
	assert.Contains(t, r.String(), "cross=bullish")
}
