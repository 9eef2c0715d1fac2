package config

import (
	"fmt"
	"time"

	"crossbot/internal/logger"
	symbolpkg "crossbot/internal/pkg/symbol"
	"crossbot/internal/scheduler"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Trading.validate(); err != nil {
		return err
	}
	if err := c.Exchange.validate(c.Trading.IsPaper()); err != nil {
		return err
	}
	if err := c.Strategy.validate(); err != nil {
		return err
	}
	if err := c.Risk.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	if _, err := time.LoadLocation(a.Timezone); err != nil {
		return fmt.Errorf("app.timezone %q cannot be loaded: %w", a.Timezone, err)
	}
	if _, ok := logger.ParseLevel(a.LogLevel); !ok {
		return fmt.Errorf("app.log_level %q is not one of debug/info/warn/error", a.LogLevel)
	}
	return nil
}

func (e *ExchangeConfig) validate(paper bool) error {
	if e.Name != defaultExchangeName {
		return fmt.Errorf("exchange.name %q is not supported", e.Name)
	}
	if e.RESTBaseURL == "" {
		return fmt.Errorf("exchange.rest_base_url cannot be empty")
	}
	if e.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("exchange.http_timeout_seconds must be > 0")
	}
	if e.Proxy.Enabled && e.Proxy.RESTURL == "" {
		return fmt.Errorf("exchange.proxy enabled but rest_url is empty")
	}
	if !paper && (e.APIKey == "" || e.SecretKey == "") {
		return fmt.Errorf("live trading requires exchange api_key and secret_key (or KEY_BINANCE/SECRET_BINANCE)")
	}
	return nil
}

func (s *StrategyConfig) validate() error {
	if !symbolpkg.IsValid(s.Symbol) {
		return fmt.Errorf("strategy.symbol %q is not a recognised pair", s.Symbol)
	}
	if !scheduler.IsKlineInterval(s.Interval) {
		return fmt.Errorf("strategy.interval %q is not a supported kline interval", s.Interval)
	}
	if s.CandleLimit <= 0 || s.CandleLimit > 1000 {
		return fmt.Errorf("strategy.candle_limit must be within 1..1000")
	}
	if s.FastPeriod <= 0 || s.SlowPeriod <= 0 {
		return fmt.Errorf("strategy.fast_period and slow_period must be > 0")
	}
	if s.FastPeriod >= s.SlowPeriod {
		return fmt.Errorf("strategy.fast_period (%d) must be below slow_period (%d)", s.FastPeriod, s.SlowPeriod)
	}
	if s.FallbackWaitSeconds <= 0 {
		return fmt.Errorf("strategy.fallback_wait_seconds must be > 0")
	}
	return nil
}

func (r *RiskConfig) validate() error {
	if r.RiskFraction <= 0 || r.RiskFraction > 1 {
		return fmt.Errorf("risk.risk_fraction must be within (0, 1]")
	}
	if r.StopLossFraction <= 0 || r.StopLossFraction >= 1 {
		return fmt.Errorf("risk.stop_loss_fraction must be within (0, 1)")
	}
	if r.TakeProfitFraction <= 0 {
		return fmt.Errorf("risk.take_profit_fraction must be > 0")
	}
	return nil
}

func (t *TradingConfig) validate() error {
	switch t.Mode {
	case TradingModeLive:
		return nil
	case TradingModePaper:
		for asset, qty := range t.PaperBalances {
			if qty < 0 {
				return fmt.Errorf("trading.paper_balances.%s must be >= 0", asset)
			}
		}
		return nil
	default:
		return fmt.Errorf("trading.mode %q must be live or paper", t.Mode)
	}
}

func (n *NotifyConfig) validate() error {
	if n.Telegram.Enabled {
		if n.Telegram.BotToken == "" || n.Telegram.ChatID == "" {
			return fmt.Errorf("telegram notification enabled but missing bot_token or chat_id")
		}
	}
	return nil
}
