// Package paper simulates spot order fills against live public prices.
package paper

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"crossbot/internal/gateway/exchange"
	"crossbot/internal/logger"
	symbolpkg "crossbot/internal/pkg/symbol"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("paper: insufficient free balance")
	ErrMinNotional       = errors.New("paper: order notional below minimum")
)

// Quotes is the public half of an exchange: filters and ticker price.
type Quotes interface {
	FetchSymbolFilters(ctx context.Context, symbol string) (exchange.LotConstraint, error)
	FetchTickerPrice(ctx context.Context, symbol string) (exchange.Price, error)
}

var _ exchange.Account = (*Account)(nil)

// Account is an in-memory spot wallet. Market orders fill in full at the
// current ticker price with no fees.
type Account struct {
	quotes Quotes

	mu       sync.Mutex
	balances exchange.Balances
	lots     map[string]exchange.LotConstraint
	seq      int64
}

func New(quotes Quotes, seed exchange.Balances) (*Account, error) {
	if quotes == nil {
		return nil, fmt.Errorf("paper account requires a quote source")
	}
	balances := make(exchange.Balances, len(seed))
	for asset, qty := range seed {
		if qty.IsNegative() {
			return nil, fmt.Errorf("paper balance %s is negative", asset)
		}
		balances[asset] = qty
	}
	return &Account{quotes: quotes, balances: balances, lots: make(map[string]exchange.LotConstraint)}, nil
}

func (a *Account) Name() string { return "paper" }

func (a *Account) FetchSymbolFilters(ctx context.Context, symbol string) (exchange.LotConstraint, error) {
	lot, err := a.quotes.FetchSymbolFilters(ctx, symbol)
	if err != nil {
		return exchange.LotConstraint{}, err
	}
	a.mu.Lock()
	a.lots[symbolpkg.Normalize(symbol)] = lot
	a.mu.Unlock()
	return lot, nil
}

func (a *Account) FetchBalances(context.Context) (exchange.Balances, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balances.Clone(), nil
}

func (a *Account) FetchTickerPrice(ctx context.Context, symbol string) (exchange.Price, error) {
	return a.quotes.FetchTickerPrice(ctx, symbol)
}

func (a *Account) SubmitMarketOrder(ctx context.Context, req exchange.OrderRequest) (exchange.OrderAck, error) {
	sym := symbolpkg.Parse(req.Symbol)
	if !sym.IsValid() {
		return exchange.OrderAck{}, fmt.Errorf("paper: unknown symbol %q", req.Symbol)
	}
	if !req.Quantity.IsPositive() {
		return exchange.OrderAck{}, fmt.Errorf("paper: quantity must be positive")
	}
	price, err := a.quotes.FetchTickerPrice(ctx, req.Symbol)
	if err != nil {
		return exchange.OrderAck{}, fmt.Errorf("paper: ticker price: %w", err)
	}
	if !price.Value.IsPositive() {
		return exchange.OrderAck{}, fmt.Errorf("paper: invalid ticker price %s", price.Value)
	}
	notional := req.Quantity.Mul(price.Value)

	a.mu.Lock()
	defer a.mu.Unlock()
	if lot, ok := a.lots[sym.Internal()]; ok && lot.MinNotional.IsPositive() && notional.LessThan(lot.MinNotional) {
		return exchange.OrderAck{}, ErrMinNotional
	}
	switch req.Side {
	case exchange.SideBuy:
		if a.balances.Free(sym.Quote).LessThan(notional) {
			return exchange.OrderAck{}, fmt.Errorf("%w: need %s %s", ErrInsufficientFunds, notional, sym.Quote)
		}
		a.move(sym.Quote, notional.Neg())
		a.move(sym.Base, req.Quantity)
	case exchange.SideSell:
		if a.balances.Free(sym.Base).LessThan(req.Quantity) {
			return exchange.OrderAck{}, fmt.Errorf("%w: need %s %s", ErrInsufficientFunds, req.Quantity, sym.Base)
		}
		a.move(sym.Base, req.Quantity.Neg())
		a.move(sym.Quote, notional)
	default:
		return exchange.OrderAck{}, fmt.Errorf("paper: unsupported side %q", req.Side)
	}
	a.seq++
	ack := exchange.OrderAck{
		OrderID:       "paper-" + strconv.FormatInt(a.seq, 10),
		ClientOrderID: req.ClientOrderID,
		ExecutedQty:   req.Quantity,
		Fills:         []exchange.Fill{{Price: price.Value, Quantity: req.Quantity}},
	}
	logger.Infof("paper: filled %s %s %s @ %s order_id=%s", req.Side, req.Quantity, sym, price.Value, ack.OrderID)
	return ack, nil
}

func (a *Account) move(asset string, delta decimal.Decimal) {
	a.balances[asset] = a.balances.Free(asset).Add(delta)
}
