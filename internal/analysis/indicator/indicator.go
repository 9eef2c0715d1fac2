package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"crossbot/internal/market"
)

const (
	defaultRSIPeriod  = 14
	defaultATRPeriod  = 14
	defaultOverbought = 70
	defaultOversold   = 30
)

// Settings 描述诊断指标参数，零值使用默认。
type Settings struct {
	RSIPeriod  int
	ATRPeriod  int
	Overbought float64
	Oversold   float64
}

func (s Settings) withDefaults() Settings {
	if s.RSIPeriod <= 0 {
		s.RSIPeriod = defaultRSIPeriod
	}
	if s.ATRPeriod <= 0 {
		s.ATRPeriod = defaultATRPeriod
	}
	if s.Overbought == 0 {
		s.Overbought = defaultOverbought
	}
	if s.Oversold == 0 {
		s.Oversold = defaultOversold
	}
	return s
}

// Snapshot is context logged next to the crossover; it never drives a trade.
type Snapshot struct {
	RSI      float64 `json:"rsi"`
	RSIState string  `json:"rsi_state"`
	ATR      float64 `json:"atr"`
	ATRPct   float64 `json:"atr_pct"`
	Ready    bool    `json:"ready"`
}

func (s Snapshot) String() string {
	if !s.Ready {
		return "rsi=n/a atr=n/a"
	}
	return fmt.Sprintf("rsi=%.2f(%s) atr=%.4f(%.2f%%)", s.RSI, s.RSIState, s.ATR, s.ATRPct)
}

// Compute needs more candles than the longest period; otherwise Ready is false.
func Compute(series market.Series, cfg Settings) Snapshot {
	cfg = cfg.withDefaults()
	need := cfg.RSIPeriod
	if cfg.ATRPeriod > need {
		need = cfg.ATRPeriod
	}
	if len(series) <= need {
		return Snapshot{}
	}
	closes := make([]float64, len(series))
	highs := make([]float64, len(series))
	lows := make([]float64, len(series))
	for i, c := range series {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	rsi := lastValid(talib.Rsi(closes, cfg.RSIPeriod))
	atr := lastValid(talib.Atr(highs, lows, closes, cfg.ATRPeriod))
	snap := Snapshot{
		RSI:      round4(rsi),
		RSIState: rsiState(rsi, cfg),
		ATR:      round4(atr),
		Ready:    true,
	}
	if last := closes[len(closes)-1]; last > 0 {
		snap.ATRPct = round4(atr / last * 100)
	}
	return snap
}

func rsiState(v float64, cfg Settings) string {
	switch {
	case v >= cfg.Overbought:
		return "overbought"
	case v <= cfg.Oversold:
		return "oversold"
	default:
		return "neutral"
	}
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) && !math.IsInf(series[i], 0) {
			return series[i]
		}
	}
	return 0
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
