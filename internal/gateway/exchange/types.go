// Package exchange defines the spot exchange abstraction consumed by the trading loop.
// Gateways (binance, paper) normalize their wire responses into these types.
package exchange

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrLotSizeUnavailable = errors.New("lot size filter unavailable")

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// LotConstraint is the quantity granularity of a pair. MinQty and MinNotional are
// zero when the exchange does not report them.
type LotConstraint struct {
	StepSize    decimal.Decimal
	MinQty      decimal.Decimal
	MinNotional decimal.Decimal
}

// Price is a ticker quote.
type Price struct {
	Symbol string
	Value  decimal.Decimal
}

// Balances maps asset symbol to free quantity.
type Balances map[string]decimal.Decimal

// Free returns the free quantity of asset, zero when unknown.
func (b Balances) Free(asset string) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	if v, ok := b[strings.ToUpper(strings.TrimSpace(asset))]; ok {
		return v
	}
	return decimal.Zero
}

func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// NonZero lists assets with a positive free balance, sorted.
func (b Balances) NonZero() []string {
	out := make([]string, 0, len(b))
	for k, v := range b {
		if v.IsPositive() {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

type OrderRequest struct {
	Symbol        string
	Side          Side
	Quantity      decimal.Decimal
	ClientOrderID string
}

// Fill is one partial execution of an order.
type Fill struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// OrderAck is the exchange acknowledgement of a market order.
type OrderAck struct {
	OrderID       string
	ClientOrderID string
	ExecutedQty   decimal.Decimal
	Fills         []Fill
}
