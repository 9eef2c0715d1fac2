package trader

import (
	"time"

	"crossbot/internal/analysis/indicator"
	"crossbot/internal/executor"
	"crossbot/internal/gateway/exchange"
	"crossbot/internal/strategy/risk"
	"crossbot/internal/strategy/signal"

	"github.com/shopspring/decimal"
)

type State string

const (
	StateFlat State = "FLAT"
	StateOpen State = "OPEN"
)

// Position is the single long position on the traded pair.
// EntryPrice is set iff Open.
type Position struct {
	Open       bool
	EntryPrice decimal.Decimal
}

func (p Position) State() State {
	if p.Open {
		return StateOpen
	}
	return StateFlat
}

func opened(entry decimal.Decimal) Position { return Position{Open: true, EntryPrice: entry} }

var flat = Position{}

// Action taken in a cycle.
type Action string

const (
	ActionNone Action = "none"
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Reason names why an order was attempted.
const (
	ReasonBullishCross = "bullish_cross"
	ReasonBearishCross = "bearish_cross"
)

// CycleOutcome summarizes one decision cycle.
type CycleOutcome struct {
	At     time.Time
	Action Action
	Reason string
	// Report is nil when candles were unavailable or risk management pre-empted the signal.
	Report   *signal.Report
	Verdict  *risk.Verdict
	Order    *executor.OrderResult
	Position Position
	// LastCloseMs is zero when no candle data was obtained.
	LastCloseMs int64
	Err         error
}

// Succeeded reports whether the attempted order went through.
func (o CycleOutcome) Succeeded() bool {
	return o.Action != ActionNone && o.Err == nil
}

// Snapshot is a read-only copy of trader state published after every cycle.
type Snapshot struct {
	Symbol     string             `json:"symbol"`
	Interval   string             `json:"interval"`
	Mode       string             `json:"mode"`
	State      State              `json:"state"`
	EntryPrice string             `json:"entry_price,omitempty"`
	Cycles     int64              `json:"cycles"`
	LastCycle  time.Time          `json:"last_cycle,omitempty"`
	LastAction Action             `json:"last_action,omitempty"`
	LastReason string             `json:"last_reason,omitempty"`
	LastError  string             `json:"last_error,omitempty"`
	Signal     *SignalView        `json:"signal,omitempty"`
	Indicators indicator.Snapshot `json:"indicators"`
	Balances   map[string]string  `json:"balances"`
	NextWakeAt time.Time          `json:"next_wake_at,omitempty"`
}

type SignalView struct {
	Fast  float64 `json:"fast"`
	Slow  float64 `json:"slow"`
	Price float64 `json:"price"`
	Cross string  `json:"cross"`
}

func balancesView(b exchange.Balances) map[string]string {
	out := make(map[string]string)
	for _, asset := range b.NonZero() {
		out[asset] = b[asset].String()
	}
	return out
}
