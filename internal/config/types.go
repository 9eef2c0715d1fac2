package config

import (
	"strings"
	"time"
	_ "time/tzdata"

	"crossbot/internal/scheduler"
)

// Config 是 crossbot 的主配置载体。
type Config struct {
	App      AppConfig      `toml:"app"`
	Exchange ExchangeConfig `toml:"exchange"`
	Strategy StrategyConfig `toml:"strategy"`
	Risk     RiskConfig     `toml:"risk"`
	Trading  TradingConfig  `toml:"trading"`
	Notify   NotifyConfig   `toml:"notify"`
}

type AppConfig struct {
	Env           string `toml:"env"`
	LogLevel      string `toml:"log_level"`
	LogPath       string `toml:"log_path"`
	LogMaxSizeMB  int    `toml:"log_max_size_mb"`
	LogMaxBackups int    `toml:"log_max_backups"`
	LogMaxAgeDays int    `toml:"log_max_age_days"`
	// HTTPAddr empty disables the status server.
	HTTPAddr string `toml:"http_addr"`
	Timezone string `toml:"timezone"`
}

// Location loads Timezone; validation guarantees it resolves.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type ExchangeConfig struct {
	Name               string      `toml:"name"`
	RESTBaseURL        string      `toml:"rest_base_url"`
	Testnet            bool        `toml:"testnet"`
	HTTPTimeoutSeconds int         `toml:"http_timeout_seconds"`
	APIKey             string      `toml:"api_key"`
	SecretKey          string      `toml:"secret_key"`
	Proxy              ProxyConfig `toml:"proxy"`
}

func (e ExchangeConfig) HTTPTimeout() time.Duration {
	return time.Duration(e.HTTPTimeoutSeconds) * time.Second
}

type ProxyConfig struct {
	Enabled bool   `toml:"enabled"`
	RESTURL string `toml:"rest_url"`
}

func (p *ProxyConfig) normalize() {
	if p == nil {
		return
	}
	p.RESTURL = strings.TrimSpace(p.RESTURL)
}

// StrategyConfig 描述交易对、K线周期与 EMA 参数。
type StrategyConfig struct {
	Symbol              string `toml:"symbol"`
	Interval            string `toml:"interval"`
	CandleLimit         int    `toml:"candle_limit"`
	FastPeriod          int    `toml:"fast_period"`
	SlowPeriod          int    `toml:"slow_period"`
	FallbackWaitSeconds int    `toml:"fallback_wait_seconds"`
	RSIPeriod           int    `toml:"rsi_period"`
	ATRPeriod           int    `toml:"atr_period"`
}

func (s StrategyConfig) IntervalDuration() time.Duration {
	d, _ := scheduler.ParseIntervalDuration(s.Interval)
	return d
}

func (s StrategyConfig) FallbackWait() time.Duration {
	return time.Duration(s.FallbackWaitSeconds) * time.Second
}

type RiskConfig struct {
	RiskFraction       float64 `toml:"risk_fraction"`
	StopLossFraction   float64 `toml:"stop_loss_fraction"`
	TakeProfitFraction float64 `toml:"take_profit_fraction"`
}

const (
	TradingModeLive  = "live"
	TradingModePaper = "paper"
)

// TradingConfig 控制实盘/模拟资金来源。
type TradingConfig struct {
	Mode string `toml:"mode"`
	// PaperBalances seeds the simulated wallet, asset -> free quantity.
	PaperBalances map[string]float64 `toml:"paper_balances"`
}

func (t TradingConfig) IsPaper() bool { return t.Mode == TradingModePaper }

func (t *TradingConfig) normalize() {
	t.Mode = strings.ToLower(strings.TrimSpace(t.Mode))
	if len(t.PaperBalances) == 0 {
		return
	}
	// viper lower-cases map keys; assets are upper case everywhere else.
	out := make(map[string]float64, len(t.PaperBalances))
	for asset, qty := range t.PaperBalances {
		out[strings.ToUpper(strings.TrimSpace(asset))] = qty
	}
	t.PaperBalances = out
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
