package market

import "time"

// Candle times are milliseconds since epoch, as Binance reports them.
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	CloseTime int64   `json:"close_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Trades    int64   `json:"trades"`
}

func (c Candle) OpenAt() time.Time {
	return time.UnixMilli(c.OpenTime)
}

func (c Candle) CloseAt() time.Time {
	return time.UnixMilli(c.CloseTime)
}

// Series is a chronological window of candles, oldest first.
type Series []Candle

func (s Series) Len() int { return len(s) }

func (s Series) Empty() bool { return len(s) == 0 }

// Last returns the newest candle.
func (s Series) Last() (Candle, bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[len(s)-1], true
}

// Closes copies the closing prices in order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// Tail keeps at most the newest n candles.
func (s Series) Tail(n int) Series {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
