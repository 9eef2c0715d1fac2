package exchange

import "context"

// Account is the authenticated side of a spot exchange used by the trading loop.
type Account interface {
	Name() string

	// FetchSymbolFilters returns the lot constraint of symbol. Called once at startup.
	FetchSymbolFilters(ctx context.Context, symbol string) (LotConstraint, error)

	FetchBalances(ctx context.Context) (Balances, error)

	FetchTickerPrice(ctx context.Context, symbol string) (Price, error)

	SubmitMarketOrder(ctx context.Context, req OrderRequest) (OrderAck, error)
}
