package app

import (
	"context"
	"fmt"
	"io"

	"crossbot/internal/analysis/indicator"
	"crossbot/internal/config"
	"crossbot/internal/executor"
	binancegw "crossbot/internal/gateway/binance"
	"crossbot/internal/gateway/exchange"
	"crossbot/internal/gateway/notifier"
	"crossbot/internal/gateway/paper"
	"crossbot/internal/logger"
	"crossbot/internal/market"
	symbolpkg "crossbot/internal/pkg/symbol"
	"crossbot/internal/strategy/risk"
	"crossbot/internal/strategy/signal"
	statushttp "crossbot/internal/transport/http/status"
	"crossbot/internal/trader"

	"github.com/shopspring/decimal"
)

// MarketGateway is the exchange client used for both candles and the account.
type MarketGateway interface {
	market.Source
	exchange.Account
}

type AppBuilder struct {
	cfg *config.Config

	logFn        func(config.AppConfig) (io.Closer, error)
	gatewayFn    func(config.ExchangeConfig) (MarketGateway, error)
	notifierFn   func(config.NotifyConfig) notifier.TextNotifier
	statusHTTPFn func(config.AppConfig, statushttp.StatusProvider) (*statushttp.Server, error)
	clientIDFn   func() string
}

type AppBuilderOption func(*AppBuilder)

// WithGateway replaces the Binance client (tests, alternative venues).
func WithGateway(gw MarketGateway) AppBuilderOption {
	return func(b *AppBuilder) {
		b.gatewayFn = func(config.ExchangeConfig) (MarketGateway, error) { return gw, nil }
	}
}

func WithNotifier(n notifier.TextNotifier) AppBuilderOption {
	return func(b *AppBuilder) {
		b.notifierFn = func(config.NotifyConfig) notifier.TextNotifier { return n }
	}
}

func WithClientOrderIDs(fn func() string) AppBuilderOption {
	return func(b *AppBuilder) { b.clientIDFn = fn }
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:          cfg,
		logFn:        setupLogFile,
		gatewayFn:    buildBinanceGateway,
		notifierFn:   buildNotifier,
		statusHTTPFn: buildStatusHTTPServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build wires every component and performs the startup exchange calls. Missing
// lot constraints or initial balances are fatal.
func (b *AppBuilder) Build(ctx context.Context) (built *App, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)
	logger.SetLocation(cfg.App.Location())

	out := &App{cfg: cfg}
	defer func() {
		if err != nil {
			_ = out.Close()
		}
	}()

	logFile, err := b.logFn(cfg.App)
	if err != nil {
		return nil, fmt.Errorf("初始化日志文件失败: %w", err)
	}
	if logFile != nil {
		out.closers = append(out.closers, logFile)
	}

	sym := symbolpkg.Parse(cfg.Strategy.Symbol)
	gw, err := b.gatewayFn(cfg.Exchange)
	if err != nil {
		return nil, fmt.Errorf("build exchange gateway: %w", err)
	}
	if c, ok := gw.(io.Closer); ok {
		out.closers = append(out.closers, c)
	}

	var account exchange.Account = gw
	if cfg.Trading.IsPaper() {
		account, err = paper.New(gw, paperSeed(cfg.Trading.PaperBalances))
		if err != nil {
			return nil, err
		}
		logger.Infof("✓ paper trading enabled, orders are simulated at ticker price")
	}

	lot, err := account.FetchSymbolFilters(ctx, sym.Internal())
	if err != nil {
		return nil, fmt.Errorf("fetch symbol filters for %s: %w", sym, err)
	}
	logger.Infof("✓ %s step_size=%s min_qty=%s min_notional=%s", sym, lot.StepSize, lot.MinQty, lot.MinNotional)

	balances, err := account.FetchBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch initial balances: %w", err)
	}
	logger.Infof("✓ initial balances %s=%s %s=%s",
		sym.Base, balances.Free(sym.Base), sym.Quote, balances.Free(sym.Quote))

	exec, err := executor.New(executor.Params{
		Account:          account,
		Symbol:           sym,
		Lot:              lot,
		NewClientOrderID: b.clientIDFn,
	})
	if err != nil {
		return nil, err
	}

	tr, err := trader.New(trader.Config{
		Symbol:       sym,
		Interval:     cfg.Strategy.Interval,
		CandleLimit:  cfg.Strategy.CandleLimit,
		Periods:      signal.Periods{Fast: cfg.Strategy.FastPeriod, Slow: cfg.Strategy.SlowPeriod},
		Rules:        risk.NewRules(cfg.Risk.StopLossFraction, cfg.Risk.TakeProfitFraction),
		RiskFraction: decimal.NewFromFloat(cfg.Risk.RiskFraction),
		Fallback:     cfg.Strategy.FallbackWait(),
		Location:     cfg.App.Location(),
		Indicators:   indicator.Settings{RSIPeriod: cfg.Strategy.RSIPeriod, ATRPeriod: cfg.Strategy.ATRPeriod},
		Mode:         cfg.Trading.Mode,
	}, trader.Deps{
		Source:   gw,
		Account:  account,
		Orders:   exec,
		Notifier: b.notifierFn(cfg.Notify),
	}, balances)
	if err != nil {
		return nil, err
	}
	out.trader = tr

	if cfg.App.HTTPAddr != "" {
		srv, err := b.statusHTTPFn(cfg.App, tr)
		if err != nil {
			return nil, err
		}
		out.statusHTTP = srv
	}

	out.Summary = &StartupSummary{
		Mode:        cfg.Trading.Mode,
		Exchange:    account.Name(),
		Symbol:      sym,
		Interval:    cfg.Strategy.Interval,
		CandleLimit: cfg.Strategy.CandleLimit,
		FastPeriod:  cfg.Strategy.FastPeriod,
		SlowPeriod:  cfg.Strategy.SlowPeriod,
		Risk:        cfg.Risk,
		Lot:         lot,
		Balances:    balances.Clone(),
		Timezone:    cfg.App.Timezone,
		HTTPAddr:    cfg.App.HTTPAddr,
	}
	return out, nil
}

func setupLogFile(cfg config.AppConfig) (io.Closer, error) {
	return logger.SetupFile(logger.FileOptions{
		Path:       cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
}

func buildBinanceGateway(cfg config.ExchangeConfig) (MarketGateway, error) {
	return binancegw.New(binancegw.Config{
		RESTBaseURL:  cfg.RESTBaseURL,
		Testnet:      cfg.Testnet,
		HTTPTimeout:  cfg.HTTPTimeout(),
		APIKey:       cfg.APIKey,
		SecretKey:    cfg.SecretKey,
		ProxyEnabled: cfg.Proxy.Enabled,
		RESTProxyURL: cfg.Proxy.RESTURL,
	})
}

func buildNotifier(cfg config.NotifyConfig) notifier.TextNotifier {
	if !cfg.Telegram.Enabled {
		return notifier.Nop{}
	}
	return notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
}

func buildStatusHTTPServer(cfg config.AppConfig, status statushttp.StatusProvider) (*statushttp.Server, error) {
	return statushttp.NewServer(statushttp.ServerConfig{Addr: cfg.HTTPAddr, Status: status})
}

func paperSeed(raw map[string]float64) exchange.Balances {
	out := make(exchange.Balances, len(raw))
	for asset, qty := range raw {
		out[asset] = decimal.NewFromFloat(qty)
	}
	return out
}
