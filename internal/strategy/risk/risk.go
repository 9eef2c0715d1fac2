// Package risk evaluates stop-loss and take-profit thresholds of an open long position.
package risk

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var decOne = decimal.NewFromInt(1)

type Reason string

const (
	ReasonNone       Reason = ""
	ReasonStopLoss   Reason = "stop_loss"
	ReasonTakeProfit Reason = "take_profit"
)

// Rules are fractions of the entry price, e.g. 0.05 for 5%.
type Rules struct {
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
}

func NewRules(stopLoss, takeProfit float64) Rules {
	return Rules{StopLoss: decFromFloat(stopLoss), TakeProfit: decFromFloat(takeProfit)}
}

func (r Rules) Validate() error {
	if !r.StopLoss.IsPositive() || r.StopLoss.GreaterThanOrEqual(decOne) {
		return fmt.Errorf("stop loss fraction must be in (0,1), got %s", r.StopLoss)
	}
	if !r.TakeProfit.IsPositive() {
		return fmt.Errorf("take profit fraction must be > 0, got %s", r.TakeProfit)
	}
	return nil
}

// Levels returns entry*(1-stopLoss) and entry*(1+takeProfit).
func (r Rules) Levels(entry decimal.Decimal) (stopLoss, takeProfit decimal.Decimal) {
	return entry.Mul(decOne.Sub(r.StopLoss)), entry.Mul(decOne.Add(r.TakeProfit))
}

// Verdict is the outcome of one evaluation. Close is set iff Reason is not empty.
type Verdict struct {
	Close      bool
	Reason     Reason
	Entry      decimal.Decimal
	Price      decimal.Decimal
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
}

func (v Verdict) String() string {
	action := "hold"
	if v.Close {
		action = "close:" + string(v.Reason)
	}
	return fmt.Sprintf("%s entry=%s price=%s stop_loss=%s take_profit=%s",
		action, v.Entry.StringFixed(4), v.Price.StringFixed(4), v.StopLoss.StringFixed(4), v.TakeProfit.StringFixed(4))
}

// Evaluate checks price against both thresholds; boundaries are inclusive and the
// stop-loss wins when a gap crosses both.
func Evaluate(entry, price decimal.Decimal, rules Rules) Verdict {
	sl, tp := rules.Levels(entry)
	v := Verdict{Entry: entry, Price: price, StopLoss: sl, TakeProfit: tp}
	switch {
	case price.LessThanOrEqual(sl):
		v.Close, v.Reason = true, ReasonStopLoss
	case price.GreaterThanOrEqual(tp):
		v.Close, v.Reason = true, ReasonTakeProfit
	}
	return v
}

func decFromFloat(val float64) decimal.Decimal {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(val)
}
