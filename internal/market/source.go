package market

import "context"

// Source supplies recent candles for a pair.
type Source interface {
	FetchCandles(ctx context.Context, symbol, interval string, limit int) (Series, error)
}
