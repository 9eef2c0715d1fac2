// Package trader runs the candle-paced decision loop and owns the position state.
package trader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"crossbot/internal/analysis/indicator"
	"crossbot/internal/executor"
	"crossbot/internal/gateway/exchange"
	"crossbot/internal/gateway/notifier"
	"crossbot/internal/logger"
	"crossbot/internal/market"
	symbolpkg "crossbot/internal/pkg/symbol"
	"crossbot/internal/scheduler"
	"crossbot/internal/strategy/risk"
	"crossbot/internal/strategy/signal"

	"github.com/shopspring/decimal"
)

// Orders is the order surface the loop needs; *executor.Executor implements it.
type Orders interface {
	BuyWithRisk(ctx context.Context, quoteBalance, riskFraction decimal.Decimal) (executor.OrderResult, error)
	Sell(ctx context.Context, quantity decimal.Decimal) (executor.OrderResult, error)
}

var _ Orders = (*executor.Executor)(nil)

// defaultNotifyTimeout caps one trade notification including retries.
const defaultNotifyTimeout = 10 * time.Second

type Config struct {
	Symbol       symbolpkg.Symbol
	Interval     string
	CandleLimit  int
	Periods      signal.Periods
	Rules        risk.Rules
	RiskFraction decimal.Decimal
	Fallback     time.Duration
	Location     *time.Location
	Indicators   indicator.Settings
	Mode         string
}

type Deps struct {
	Source   market.Source
	Account  exchange.Account
	Orders   Orders
	Notifier notifier.TextNotifier
}

// Trader is not safe for concurrent cycles; only Snapshot may be called from
// other goroutines.
type Trader struct {
	cfg      Config
	period   time.Duration
	source   market.Source
	account  exchange.Account
	orders   Orders
	notifier notifier.TextNotifier

	position Position
	balances exchange.Balances

	mu     sync.RWMutex
	snap   Snapshot
	cycles int64

	notifyTimeout time.Duration
	nowFn         func() time.Time
}

func New(cfg Config, deps Deps, initial exchange.Balances) (*Trader, error) {
	if deps.Source == nil || deps.Account == nil || deps.Orders == nil {
		return nil, fmt.Errorf("trader requires source, account and orders")
	}
	if !cfg.Symbol.IsValid() {
		return nil, fmt.Errorf("trader requires a valid symbol")
	}
	if err := cfg.Periods.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	period, ok := scheduler.ParseIntervalDuration(cfg.Interval)
	if !ok {
		return nil, fmt.Errorf("invalid interval %q", cfg.Interval)
	}
	if cfg.Fallback <= 0 {
		cfg.Fallback = scheduler.DefaultFallbackWait
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	n := deps.Notifier
	if n == nil {
		n = notifier.Nop{}
	}
	t := &Trader{
		cfg:      cfg,
		period:   period,
		source:   deps.Source,
		account:  deps.Account,
		orders:   deps.Orders,
		notifier: n,
		balances: initial.Clone(),

		notifyTimeout: defaultNotifyTimeout,
		nowFn:         time.Now,
	}
	t.snap = Snapshot{
		Symbol:   cfg.Symbol.Internal(),
		Interval: cfg.Interval,
		Mode:     cfg.Mode,
		State:    StateFlat,
		Balances: balancesView(t.balances),
	}
	return t, nil
}

// Position returns the current position. Call only from the loop goroutine or tests.
func (t *Trader) Position() Position { return t.position }

// Balances returns the last balance snapshot. Same caveat as Position.
func (t *Trader) Balances() exchange.Balances { return t.balances.Clone() }

// Run blocks until ctx is cancelled, running one cycle per candle period.
func (t *Trader) Run(ctx context.Context) error {
	s := scheduler.NewCandleScheduler(ctx, t.period, t.cfg.Fallback, t.cfg.Location)
	s.OnWait = func(at time.Time) {
		t.mu.Lock()
		t.snap.NextWakeAt = at
		t.mu.Unlock()
	}
	s.Start(func(ctx context.Context) scheduler.Tick {
		out := t.RunCycle(ctx)
		return scheduler.Tick{LastCloseMs: out.LastCloseMs}
	})
	logger.Infof("Trader: loop stopped state=%s", t.position.State())
	return nil
}

// RunCycle performs one decision cycle: fetch, decide, act, refresh balances.
func (t *Trader) RunCycle(ctx context.Context) CycleOutcome {
	out := CycleOutcome{At: t.nowFn(), Action: ActionNone}
	series, err := t.source.FetchCandles(ctx, t.cfg.Symbol.Internal(), t.cfg.Interval, t.cfg.CandleLimit)
	var diag indicator.Snapshot
	switch {
	case err != nil:
		logger.Errorf("Trader: fetch candles symbol=%s interval=%s failed: %v", t.cfg.Symbol, t.cfg.Interval, err)
		out.Err = fmt.Errorf("fetch candles: %w", err)
	case series.Empty():
		logger.Warnf("Trader: no candles returned for symbol=%s", t.cfg.Symbol)
		out.Err = signal.ErrNoCandles
	default:
		last, _ := series.Last()
		out.LastCloseMs = last.CloseTime
		diag = indicator.Compute(series, t.cfg.Indicators)
		t.decide(ctx, series, &out)
	}

	t.refreshBalances(ctx)
	out.Position = t.position
	t.publish(out, diag)
	return out
}

func (t *Trader) decide(ctx context.Context, series market.Series, out *CycleOutcome) {
	if t.position.Open && t.position.EntryPrice.IsPositive() {
		last, _ := series.Last()
		verdict := risk.Evaluate(t.position.EntryPrice, decimal.NewFromFloat(last.Close), t.cfg.Rules)
		out.Verdict = &verdict
		if verdict.Close {
			switch verdict.Reason {
			case risk.ReasonStopLoss:
				logger.Warnf("Trader: STOP LOSS triggered %s", verdict)
			default:
				logger.Infof("Trader: TAKE PROFIT triggered %s", verdict)
			}
			t.closePosition(ctx, string(verdict.Reason), out)
			return
		}
	}

	report, err := signal.Compute(series, t.cfg.Periods)
	if err != nil {
		out.Err = err
		logger.Warnf("Trader: signal skipped: %v", err)
		return
	}
	out.Report = &report
	logger.Infof("Trader: %s state=%s", report, t.position.State())

	switch cross := report.Cross(); {
	case cross == signal.Bullish && !t.position.Open:
		t.openPosition(ctx, out)
	case cross == signal.Bearish && t.position.Open:
		t.closePosition(ctx, ReasonBearishCross, out)
	}
}

func (t *Trader) openPosition(ctx context.Context, out *CycleOutcome) {
	out.Action, out.Reason = ActionBuy, ReasonBullishCross
	quote := t.balances.Free(t.cfg.Symbol.Quote)
	res, err := t.orders.BuyWithRisk(ctx, quote, t.cfg.RiskFraction)
	if err != nil {
		out.Err = err
		return
	}
	out.Order = &res
	t.position = opened(res.AverageFillPrice)
	logger.Infof("Trader: position OPEN symbol=%s entry=%s qty=%s", t.cfg.Symbol, res.AverageFillPrice.StringFixed(4), res.FilledQuantity)
	t.notify(ctx, notifier.TradeEvent{
		Kind:     notifier.TradeOpened,
		Symbol:   t.cfg.Symbol.Internal(),
		Side:     string(exchange.SideBuy),
		Reason:   out.Reason,
		OrderID:  res.OrderID,
		Quantity: res.FilledQuantity,
		Price:    res.AverageFillPrice,
		At:       out.At,
	})
}

// closePosition sells the whole free base balance; a failed sell keeps the position.
func (t *Trader) closePosition(ctx context.Context, reason string, out *CycleOutcome) {
	out.Action, out.Reason = ActionSell, reason
	qty := t.balances.Free(t.cfg.Symbol.Base)
	entry := t.position.EntryPrice
	res, err := t.orders.Sell(ctx, qty)
	if err != nil {
		out.Err = err
		logger.Errorf("Trader: close failed, position stays OPEN symbol=%s reason=%s entry=%s: %v",
			t.cfg.Symbol, reason, entry.StringFixed(4), err)
		t.notify(ctx, notifier.TradeEvent{
			Kind:     notifier.TradeCloseFailed,
			Symbol:   t.cfg.Symbol.Internal(),
			Side:     string(exchange.SideSell),
			Reason:   reason,
			Quantity: qty,
			Entry:    entry,
			Err:      err,
			At:       out.At,
		})
		return
	}
	out.Order = &res
	t.position = flat
	logger.Infof("Trader: position FLAT symbol=%s reason=%s", t.cfg.Symbol, reason)
	if res.Skipped {
		return
	}
	t.notify(ctx, notifier.TradeEvent{
		Kind:     notifier.TradeClosed,
		Symbol:   t.cfg.Symbol.Internal(),
		Side:     string(exchange.SideSell),
		Reason:   reason,
		OrderID:  res.OrderID,
		Quantity: res.FilledQuantity,
		Price:    res.AverageFillPrice,
		Entry:    entry,
		At:       out.At,
	})
}

func (t *Trader) refreshBalances(ctx context.Context) {
	balances, err := t.account.FetchBalances(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Errorf("Trader: balance refresh failed, keeping previous snapshot: %v", err)
		}
		return
	}
	t.balances = balances.Clone()
}

// notify bounds delivery by notifyTimeout so a slow channel cannot stall the cycle.
func (t *Trader) notify(ctx context.Context, evt notifier.TradeEvent) {
	ctx, cancel := context.WithTimeout(ctx, t.notifyTimeout)
	defer cancel()
	if err := t.notifier.SendText(ctx, evt.Message().RenderMarkdown()); err != nil {
		logger.Warnf("Trader: notify %s failed: %v", evt.Kind, err)
	}
}

func (t *Trader) publish(out CycleOutcome, diag indicator.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cycles++
	t.snap.Cycles = t.cycles
	t.snap.LastCycle = out.At
	t.snap.State = t.position.State()
	t.snap.EntryPrice = ""
	if t.position.Open {
		t.snap.EntryPrice = t.position.EntryPrice.String()
	}
	t.snap.LastAction = out.Action
	t.snap.LastReason = out.Reason
	t.snap.LastError = ""
	if out.Err != nil {
		t.snap.LastError = out.Err.Error()
	}
	if out.Report != nil {
		t.snap.Signal = &SignalView{
			Fast:  out.Report.Fast,
			Slow:  out.Report.Slow,
			Price: out.Report.Price,
			Cross: out.Report.Cross().String(),
		}
	}
	if diag.Ready {
		t.snap.Indicators = diag
		logger.Debugf("Trader: diagnostics %s", diag)
	}
	t.snap.Balances = balancesView(t.balances)
}

// Snapshot returns a copy of the state published by the last cycle.
func (t *Trader) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := t.snap
	if t.snap.Signal != nil {
		sig := *t.snap.Signal
		out.Signal = &sig
	}
	out.Balances = make(map[string]string, len(t.snap.Balances))
	for k, v := range t.snap.Balances {
		out.Balances[k] = v
	}
	return out
}
