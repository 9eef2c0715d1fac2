package binance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"crossbot/internal/gateway/exchange"
	"crossbot/internal/pkg/convert"
	symbolpkg "crossbot/internal/pkg/symbol"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
)

// ErrMissingCredentials is returned by signed endpoints when no API key pair is configured.
var ErrMissingCredentials = errors.New("binance api key/secret not configured")

func (c *Client) FetchSymbolFilters(ctx context.Context, symbol string) (exchange.LotConstraint, error) {
	cleanSymbol := symbolpkg.ToBinance(symbol)
	if cleanSymbol == "" {
		return exchange.LotConstraint{}, fmt.Errorf("symbol is required")
	}
	info, err := c.client.NewExchangeInfoService().Symbol(cleanSymbol).Do(ctx)
	if err != nil {
		return exchange.LotConstraint{}, describe(err)
	}
	for i := range info.Symbols {
		sym := &info.Symbols[i]
		if !strings.EqualFold(sym.Symbol, cleanSymbol) {
			continue
		}
		return lotConstraintFromSymbol(sym)
	}
	return exchange.LotConstraint{}, fmt.Errorf("%w: %s not listed", exchange.ErrLotSizeUnavailable, cleanSymbol)
}

func lotConstraintFromSymbol(sym *binance.Symbol) (exchange.LotConstraint, error) {
	lot := sym.LotSizeFilter()
	if lot == nil {
		return exchange.LotConstraint{}, fmt.Errorf("%w: %s has no LOT_SIZE", exchange.ErrLotSizeUnavailable, sym.Symbol)
	}
	step, err := decimal.NewFromString(strings.TrimSpace(lot.StepSize))
	if err != nil || !step.IsPositive() {
		return exchange.LotConstraint{}, fmt.Errorf("%w: %s stepSize=%q", exchange.ErrLotSizeUnavailable, sym.Symbol, lot.StepSize)
	}
	out := exchange.LotConstraint{
		StepSize: step,
		MinQty:   parseDecimal(lot.MinQuantity),
	}
	// NOTIONAL replaced MIN_NOTIONAL on spot; accept whichever is present.
	for _, f := range sym.Filters {
		switch f["filterType"] {
		case "NOTIONAL", "MIN_NOTIONAL":
			if v, ok := convert.DecimalFromKeys(f, "minNotional"); ok {
				out.MinNotional = v
			}
		}
	}
	return out, nil
}

func (c *Client) FetchBalances(ctx context.Context) (exchange.Balances, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	acct, err := c.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, describe(err)
	}
	out := make(exchange.Balances, len(acct.Balances))
	for _, b := range acct.Balances {
		asset := strings.ToUpper(strings.TrimSpace(b.Asset))
		if asset == "" {
			continue
		}
		out[asset] = parseDecimal(b.Free)
	}
	return out, nil
}

func (c *Client) FetchTickerPrice(ctx context.Context, symbol string) (exchange.Price, error) {
	cleanSymbol := symbolpkg.ToBinance(symbol)
	prices, err := c.client.NewListPricesService().Symbol(cleanSymbol).Do(ctx)
	if err != nil {
		return exchange.Price{}, describe(err)
	}
	for _, p := range prices {
		if p == nil || !strings.EqualFold(p.Symbol, cleanSymbol) {
			continue
		}
		val, err := decimal.NewFromString(strings.TrimSpace(p.Price))
		if err != nil {
			return exchange.Price{}, fmt.Errorf("parse price %q: %w", p.Price, err)
		}
		return exchange.Price{Symbol: symbol, Value: val}, nil
	}
	return exchange.Price{}, fmt.Errorf("ticker price not available for %s", symbol)
}

func (c *Client) SubmitMarketOrder(ctx context.Context, req exchange.OrderRequest) (exchange.OrderAck, error) {
	if !c.HasCredentials() {
		return exchange.OrderAck{}, ErrMissingCredentials
	}
	side, err := toSideType(req.Side)
	if err != nil {
		return exchange.OrderAck{}, err
	}
	if !req.Quantity.IsPositive() {
		return exchange.OrderAck{}, fmt.Errorf("quantity must be positive, got %s", req.Quantity)
	}
	svc := c.client.NewCreateOrderService().
		Symbol(symbolpkg.ToBinance(req.Symbol)).
		Side(side).
		Type(binance.OrderTypeMarket).
		Quantity(req.Quantity.String()).
		NewOrderRespType(binance.NewOrderRespTypeFULL)
	if req.ClientOrderID != "" {
		svc = svc.NewClientOrderID(req.ClientOrderID)
	}
	res, err := svc.Do(ctx)
	if err != nil {
		return exchange.OrderAck{}, describe(err)
	}
	ack := exchange.OrderAck{
		OrderID:       strconv.FormatInt(res.OrderID, 10),
		ClientOrderID: res.ClientOrderID,
		ExecutedQty:   parseDecimal(res.ExecutedQuantity),
		Fills:         make([]exchange.Fill, 0, len(res.Fills)),
	}
	for _, f := range res.Fills {
		if f == nil {
			continue
		}
		ack.Fills = append(ack.Fills, exchange.Fill{
			Price:    parseDecimal(f.Price),
			Quantity: parseDecimal(f.Quantity),
		})
	}
	return ack, nil
}

func toSideType(side exchange.Side) (binance.SideType, error) {
	switch side {
	case exchange.SideBuy:
		return binance.SideTypeBuy, nil
	case exchange.SideSell:
		return binance.SideTypeSell, nil
	default:
		return "", fmt.Errorf("unsupported order side %q", side)
	}
}

func parseDecimal(v string) decimal.Decimal {
	return convert.DecimalOrZero(v)
}

// describe keeps the Binance error code and message visible in logs.
func describe(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("binance api error code=%d msg=%s: %w", apiErr.Code, apiErr.Message, err)
	}
	return err
}
