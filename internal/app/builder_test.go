package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"crossbot/internal/config"
	"crossbot/internal/gateway/exchange"
	"crossbot/internal/market"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
	closed int
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) Close() error {
	m.closed++
	return nil
}

func (m *MockGateway) FetchCandles(ctx context.Context, symbol, interval string, limit int) (market.Series, error) {
	args := m.Called(ctx, symbol, interval, limit)
	return args.Get(0).(market.Series), args.Error(1)
}

func (m *MockGateway) FetchSymbolFilters(ctx context.Context, symbol string) (exchange.LotConstraint, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(exchange.LotConstraint), args.Error(1)
}

func (m *MockGateway) FetchBalances(ctx context.Context) (exchange.Balances, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(exchange.Balances), args.Error(1)
}

func (m *MockGateway) FetchTickerPrice(ctx context.Context, symbol string) (exchange.Price, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(exchange.Price), args.Error(1)
}

func (m *MockGateway) SubmitMarketOrder(ctx context.Context, req exchange.OrderRequest) (exchange.OrderAck, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(exchange.OrderAck), args.Error(1)
}

func testConfig(mode string) *config.Config {
	return &config.Config{
		App: config.AppConfig{LogLevel: "info", Timezone: "America/Sao_Paulo"},
		Exchange: config.ExchangeConfig{
			Name:               "binance",
			RESTBaseURL:        "https://api.binance.com",
			HTTPTimeoutSeconds: 15,
		},
		Strategy: config.StrategyConfig{
			Symbol:              "SOL/BRL",
			Interval:            "15m",
			CandleLimit:         100,
			FastPeriod:          9,
			SlowPeriod:          21,
			FallbackWaitSeconds: 30,
		},
		Risk:    config.RiskConfig{RiskFraction: 0.02, StopLossFraction: 0.05, TakeProfitFraction: 0.10},
		Trading: config.TradingConfig{Mode: mode, PaperBalances: map[string]float64{"BRL": 500}},
	}
}

var lot = exchange.LotConstraint{StepSize: decimal.RequireFromString("0.01"), MinQty: decimal.RequireFromString("0.01")}

func TestBuildLive(t *testing.T) {
	gw := new(MockGateway)
	gw.On("FetchSymbolFilters", mock.Anything, "SOL/BRL").Return(lot, nil)
	gw.On("FetchBalances", mock.Anything).Return(exchange.Balances{"BRL": decimal.NewFromInt(1000)}, nil)

	app, err := NewAppBuilder(testConfig(config.TradingModeLive), WithGateway(gw)).Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, app.Trader())
	assert.Nil(t, app.statusHTTP)
	assert.True(t, app.Trader().Balances().Free("BRL").Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, app.Summary)
	assert.Equal(t, "mock", app.Summary.Exchange)

	require.NoError(t, app.Close())
	assert.Equal(t, 1, gw.closed)
	gw.AssertExpectations(t)
}

func TestBuildWritesLogFile(t *testing.T) {
	gw := new(MockGateway)
	gw.On("FetchSymbolFilters", mock.Anything, "SOL/BRL").Return(lot, nil)
	gw.On("FetchBalances", mock.Anything).Return(exchange.Balances{"BRL": decimal.NewFromInt(1000)}, nil)

	cfg := testConfig(config.TradingModeLive)
	cfg.App.LogPath = filepath.Join(t.TempDir(), "logs", "crossbot.log")
	cfg.App.LogMaxSizeMB = 1

	app, err := NewAppBuilder(cfg, WithGateway(gw)).Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, app.Close())

	data, err := os.ReadFile(cfg.App.LogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "initial balances")
}

func TestBuildPaperUsesSeededBalances(t *testing.T) {
	gw := new(MockGateway)
	gw.On("FetchSymbolFilters", mock.Anything, "SOL/BRL").Return(lot, nil)
	cfg := testConfig(config.TradingModePaper)
	cfg.App.HTTPAddr = "127.0.0.1:0"

	app, err := NewAppBuilder(cfg, WithGateway(gw)).Build(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, app.statusHTTP)
	assert.Equal(t, "paper", app.Summary.Exchange)
	assert.True(t, app.Trader().Balances().Free("BRL").Equal(decimal.NewFromInt(500)))
	gw.AssertNotCalled(t, "FetchBalances", mock.Anything)
}

func TestBuildFailsWithoutLotConstraint(t *testing.T) {
	gw := new(MockGateway)
	gw.On("FetchSymbolFilters", mock.Anything, "SOL/BRL").Return(exchange.LotConstraint{}, exchange.ErrLotSizeUnavailable)

	_, err := NewAppBuilder(testConfig(config.TradingModeLive), WithGateway(gw)).Build(context.Background())
	assert.ErrorIs(t, err, exchange.ErrLotSizeUnavailable)
	assert.Equal(t, 1, gw.closed, "gateway is released when startup fails")
}

func TestBuildFailsWithoutBalances(t *testing.T) {
	gw := new(MockGateway)
	gw.On("FetchSymbolFilters", mock.Anything, "SOL/BRL").Return(lot, nil)
	gw.On("FetchBalances", mock.Anything).Return(nil, errors.New("invalid api key"))

	_, err := NewAppBuilder(testConfig(config.TradingModeLive), WithGateway(gw)).Build(context.Background())
	assert.ErrorContains(t, err, "fetch initial balances")
}

func TestNewAppRejectsNilConfig(t *testing.T) {
	_, err := NewApp(context.Background(), nil)
	assert.Error(t, err)
}

type failingCloser struct{ err error }

func (f failingCloser) Close() error { return f.err }

func TestCloseAggregatesErrors(t *testing.T) {
	app := &App{closers: []io.Closer{failingCloser{errors.New("a")}, nil, failingCloser{errors.New("b")}}}
	err := app.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
	assert.NoError(t, app.Close())
}

func TestSummaryFprint(t *testing.T) {
	gw := new(MockGateway)
	gw.On("FetchSymbolFilters", mock.Anything, "SOL/BRL").Return(lot, nil)
	gw.On("FetchBalances", mock.Anything).Return(exchange.Balances{"BRL": decimal.NewFromInt(1000), "SOL": decimal.RequireFromString("0.5")}, nil)
	app, err := NewAppBuilder(testConfig(config.TradingModeLive), WithGateway(gw)).Build(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	app.Summary.Fprint(&buf)
	out := buf.String()
	assert.Contains(t, out, "SOL/BRL  base=SOL quote=BRL")
	assert.Contains(t, out, "EMA: fast=9 slow=21")
	assert.Contains(t, out, "risk=2.00% stop_loss=5.00% take_profit=10.00%")
	assert.Contains(t, out, "step_size=0.01 min_qty=0.01 min_notional=-")
	assert.Contains(t, out, "SOL: 0.5")
	assert.Contains(t, out, "BRL: 1000")
}
