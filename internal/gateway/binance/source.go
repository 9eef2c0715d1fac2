package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"crossbot/internal/gateway/exchange"
	"crossbot/internal/market"
	symbolpkg "crossbot/internal/pkg/symbol"

	"github.com/adshao/go-binance/v2"
)

const maxHistoryLimit = 1000

var (
	_ market.Source    = (*Client)(nil)
	_ exchange.Account = (*Client)(nil)
)

// Client 基于 go-binance SDK 的现货网关，同时实现 market.Source 与 exchange.Account。
type Client struct {
	cfg    Config
	client *binance.Client
}

func New(cfg Config) (*Client, error) {
	final := cfg.withDefaults()
	client := binance.NewClient(final.APIKey, final.SecretKey)
	client.BaseURL = final.RESTBaseURL
	httpClient := &http.Client{Timeout: final.HTTPTimeout}
	if final.ProxyEnabled && final.RESTProxyURL != "" {
		proxyURL, err := url.Parse(final.RESTProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REST proxy url: %w", err)
		}
		baseTransport, ok := http.DefaultTransport.(*http.Transport)
		if !ok || baseTransport == nil {
			return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
		}
		transport := baseTransport.Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		httpClient.Transport = transport
	}
	client.HTTPClient = httpClient
	return &Client{
		cfg:    final,
		client: client,
	}, nil
}

func (c *Client) Name() string { return "binance" }

// Close releases idle keep-alive connections.
func (c *Client) Close() error {
	if c == nil || c.client == nil || c.client.HTTPClient == nil {
		return nil
	}
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// HasCredentials reports whether signed endpoints can be called.
func (c *Client) HasCredentials() bool {
	return c != nil && c.cfg.APIKey != "" && c.cfg.SecretKey != ""
}

func (c *Client) FetchCandles(ctx context.Context, symbol, interval string, limit int) (market.Series, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	cleanSymbol := symbolpkg.ToBinance(symbol)

	interval = strings.TrimSpace(interval)
	if interval == "" {
		return nil, fmt.Errorf("interval is required")
	}
	kls, err := c.client.NewKlinesService().Symbol(cleanSymbol).Interval(interval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, describe(err)
	}
	out := make(market.Series, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		out = append(out, market.Candle{
			OpenTime:  kl.OpenTime,
			CloseTime: kl.CloseTime,
			Open:      parseFloat(kl.Open),
			High:      parseFloat(kl.High),
			Low:       parseFloat(kl.Low),
			Close:     parseFloat(kl.Close),
			Volume:    parseFloat(kl.Volume),
			Trades:    kl.TradeNum,
		})
	}
	return out, nil
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}
