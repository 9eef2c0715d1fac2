// Package signal derives the dual EMA crossover signal from a candle series.
package signal

import (
	"errors"
	"fmt"

	"crossbot/internal/market"
)

var ErrNoCandles = errors.New("no candles to compute signal")

type Cross int

const (
	Neutral Cross = iota
	Bullish
	Bearish
)

func (c Cross) String() string {
	switch c {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "neutral"
	}
}

// Periods of the fast and slow averages.
type Periods struct {
	Fast int
	Slow int
}

func (p Periods) Validate() error {
	if p.Fast <= 0 || p.Slow <= 0 {
		return fmt.Errorf("ema periods must be positive (fast=%d slow=%d)", p.Fast, p.Slow)
	}
	return nil
}

// Report holds the latest averages and the price they were computed against.
type Report struct {
	Fast      float64
	Slow      float64
	Price     float64
	CloseTime int64
	Candles   int
}

// Cross compares the averages; exact equality is neutral.
func (r Report) Cross() Cross {
	switch {
	case r.Fast > r.Slow:
		return Bullish
	case r.Fast < r.Slow:
		return Bearish
	default:
		return Neutral
	}
}

func (r Report) String() string {
	return fmt.Sprintf("fast=%.4f slow=%.4f price=%.4f cross=%s", r.Fast, r.Slow, r.Price, r.Cross())
}

// Compute is a pure function of the closes and periods.
func Compute(series market.Series, p Periods) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	last, ok := series.Last()
	if !ok {
		return Report{}, ErrNoCandles
	}
	closes := series.Closes()
	fast, _ := LastEMA(closes, p.Fast)
	slow, _ := LastEMA(closes, p.Slow)
	return Report{
		Fast:      fast,
		Slow:      slow,
		Price:     last.Close,
		CloseTime: last.CloseTime,
		Candles:   len(closes),
	}, nil
}
