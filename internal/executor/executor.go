// Package executor submits market orders for the traded pair and normalizes fills.
package executor

import (
	"context"
	"errors"
	"fmt"

	"crossbot/internal/gateway/exchange"
	"crossbot/internal/logger"
	symbolpkg "crossbot/internal/pkg/symbol"
	"crossbot/internal/pkg/trading"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrBelowMinNotional = errors.New("order notional below exchange minimum")
	ErrBelowMinQty      = errors.New("order quantity below exchange minimum")
)

// OrderResult describes an executed (or skipped) market order.
type OrderResult struct {
	OrderID          string
	ClientOrderID    string
	Side             exchange.Side
	RequestedQty     decimal.Decimal
	FilledQuantity   decimal.Decimal
	AverageFillPrice decimal.Decimal
	// Skipped marks a sell whose quantity floored to zero; nothing was sent.
	Skipped bool
}

type Params struct {
	Account exchange.Account
	Symbol  symbolpkg.Symbol
	Lot     exchange.LotConstraint
	// NewClientOrderID defaults to a random UUID.
	NewClientOrderID func() string
}

type Executor struct {
	account exchange.Account
	symbol  symbolpkg.Symbol
	lot     exchange.LotConstraint
	newID   func() string
}

func New(p Params) (*Executor, error) {
	if p.Account == nil {
		return nil, fmt.Errorf("executor requires an account")
	}
	if !p.Symbol.IsValid() {
		return nil, fmt.Errorf("executor requires a symbol")
	}
	if !p.Lot.StepSize.IsPositive() {
		return nil, fmt.Errorf("executor requires a positive step size")
	}
	newID := p.NewClientOrderID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	return &Executor{account: p.Account, symbol: p.Symbol, lot: p.Lot, newID: newID}, nil
}

// Buy submits a market buy of quantity. Failures are logged and returned, never retried.
func (e *Executor) Buy(ctx context.Context, quantity decimal.Decimal) (OrderResult, error) {
	if !quantity.IsPositive() {
		return OrderResult{}, trading.ErrInsufficientQuantity
	}
	res, err := e.submit(ctx, exchange.SideBuy, quantity)
	if err != nil {
		logger.Errorf("BUY failed symbol=%s qty=%s err=%v", e.symbol, quantity.StringFixed(trading.QuantityPlaces), err)
		return OrderResult{}, err
	}
	logger.Infof("BUY filled symbol=%s qty=%s filled=%s avg_price=%s order_id=%s",
		e.symbol, quantity.StringFixed(trading.QuantityPlaces), res.FilledQuantity, res.AverageFillPrice.StringFixed(4), res.OrderID)
	return res, nil
}

// BuyWithRisk sizes a buy from quoteBalance*riskFraction at the current ticker price.
// Sizing, min-quantity and min-notional failures return before any order is sent.
func (e *Executor) BuyWithRisk(ctx context.Context, quoteBalance, riskFraction decimal.Decimal) (OrderResult, error) {
	if !quoteBalance.IsPositive() {
		logger.Warnf("BUY skipped symbol=%s: %s balance %s is not positive", e.symbol, e.symbol.Quote, quoteBalance)
		return OrderResult{}, trading.ErrInsufficientBalance
	}
	quote, err := e.account.FetchTickerPrice(ctx, e.symbol.Internal())
	if err != nil {
		logger.Errorf("BUY skipped symbol=%s: ticker price unavailable: %v", e.symbol, err)
		return OrderResult{}, fmt.Errorf("fetch ticker price: %w", err)
	}
	qty, err := trading.SizeByRisk(quoteBalance, riskFraction, quote.Value, e.lot.StepSize)
	if err != nil {
		logger.Warnf("BUY skipped symbol=%s balance=%s risk=%s price=%s step=%s: %v",
			e.symbol, quoteBalance, riskFraction, quote.Value, e.lot.StepSize, err)
		return OrderResult{}, err
	}
	if e.lot.MinQty.IsPositive() && qty.LessThan(e.lot.MinQty) {
		logger.Warnf("BUY skipped symbol=%s qty=%s below min_qty=%s", e.symbol, qty, e.lot.MinQty)
		return OrderResult{}, ErrBelowMinQty
	}
	if notional := qty.Mul(quote.Value); e.lot.MinNotional.IsPositive() && notional.LessThan(e.lot.MinNotional) {
		logger.Warnf("BUY skipped symbol=%s qty=%s notional=%s below min_notional=%s",
			e.symbol, qty, notional.StringFixed(4), e.lot.MinNotional)
		return OrderResult{}, ErrBelowMinNotional
	}
	res, err := e.Buy(ctx, qty)
	if err != nil {
		return OrderResult{}, err
	}
	if !res.AverageFillPrice.IsPositive() {
		logger.Warnf("BUY order_id=%s reported no fills, using ticker price %s as entry", res.OrderID, quote.Value)
		res.AverageFillPrice = quote.Value
	}
	return res, nil
}

// Sell floors quantity to the lot step and submits a market sell. A quantity that
// floors to zero is a successful no-op so dust never blocks closing.
func (e *Executor) Sell(ctx context.Context, quantity decimal.Decimal) (OrderResult, error) {
	qty, err := trading.FloorToStep(quantity, e.lot.StepSize)
	if err != nil {
		return OrderResult{}, err
	}
	if !qty.IsPositive() {
		logger.Infof("SELL skipped symbol=%s balance=%s floors to zero with step=%s", e.symbol, quantity, e.lot.StepSize)
		return OrderResult{Side: exchange.SideSell, RequestedQty: quantity, Skipped: true}, nil
	}
	res, err := e.submit(ctx, exchange.SideSell, qty)
	if err != nil {
		logger.Errorf("SELL failed symbol=%s qty=%s err=%v", e.symbol, qty.StringFixed(trading.QuantityPlaces), err)
		return OrderResult{}, err
	}
	logger.Infof("SELL filled symbol=%s qty=%s filled=%s avg_price=%s order_id=%s",
		e.symbol, qty.StringFixed(trading.QuantityPlaces), res.FilledQuantity, res.AverageFillPrice.StringFixed(4), res.OrderID)
	return res, nil
}

// submit detaches from ctx cancellation so shutdown never abandons a request mid-flight.
func (e *Executor) submit(ctx context.Context, side exchange.Side, qty decimal.Decimal) (OrderResult, error) {
	req := exchange.OrderRequest{
		Symbol:        e.symbol.Internal(),
		Side:          side,
		Quantity:      qty,
		ClientOrderID: e.newID(),
	}
	ack, err := e.account.SubmitMarketOrder(context.WithoutCancel(ctx), req)
	if err != nil {
		return OrderResult{}, err
	}
	clientID := ack.ClientOrderID
	if clientID == "" {
		clientID = req.ClientOrderID
	}
	return OrderResult{
		OrderID:          ack.OrderID,
		ClientOrderID:    clientID,
		Side:             side,
		RequestedQty:     qty,
		FilledQuantity:   ack.ExecutedQty,
		AverageFillPrice: AverageFillPrice(ack),
	}, nil
}

// AverageFillPrice is sum(price*qty) over fills divided by the executed quantity.
// Zero when there are no fills or nothing executed.
func AverageFillPrice(ack exchange.OrderAck) decimal.Decimal {
	if len(ack.Fills) == 0 || !ack.ExecutedQty.IsPositive() {
		return decimal.Zero
	}
	notional := decimal.Zero
	for _, f := range ack.Fills {
		notional = notional.Add(f.Price.Mul(f.Quantity))
	}
	return notional.Div(ack.ExecutedQty)
}
