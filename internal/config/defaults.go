package config

import (
	"strings"

	"crossbot/internal/scheduler"
)

// 默认值常量
const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppHTTPAddr     = ":9991"
	defaultAppLogPath      = "logs/crossbot.log"
	defaultLogMaxSizeMB    = 50
	defaultLogMaxBackups   = 5
	defaultLogMaxAgeDays   = 14
	defaultAppTimezone     = "America/Sao_Paulo"
	defaultExchangeName    = "binance"
	defaultExchangeREST    = "https://api.binance.com"
	defaultTestnetREST     = "https://testnet.binance.vision"
	defaultExchangeTimeout = 15
	defaultSymbol          = "SOL/BRL"
	defaultInterval        = "15m"
	defaultCandleLimit     = 100
	defaultFastPeriod      = 9
	defaultSlowPeriod      = 21
	defaultFallbackWait    = 30
	defaultRSIPeriod       = 14
	defaultATRPeriod       = 14
	defaultRiskFraction    = 0.02
	defaultStopLoss        = 0.05
	defaultTakeProfit      = 0.10
	defaultTradingMode     = TradingModeLive
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Exchange.applyDefaults(keys)
	c.Strategy.applyDefaults(keys)
	c.Risk.applyDefaults(keys)
	c.Trading.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
		stringFieldDefault("app.timezone", &a.Timezone, defaultAppTimezone),
		intFieldDefault("app.log_max_size_mb", &a.LogMaxSizeMB, defaultLogMaxSizeMB),
		intFieldDefault("app.log_max_backups", &a.LogMaxBackups, defaultLogMaxBackups),
		intFieldDefault("app.log_max_age_days", &a.LogMaxAgeDays, defaultLogMaxAgeDays),
	)
}

func (e *ExchangeConfig) applyDefaults(keys keySet) {
	if e == nil {
		return
	}
	rest := defaultExchangeREST
	if e.Testnet {
		rest = defaultTestnetREST
	}
	applyFieldDefaults(keys,
		stringFieldDefault("exchange.name", &e.Name, defaultExchangeName),
		// An empty base URL is never useful; fill it even when written explicitly.
		stringFieldDefault("", &e.RESTBaseURL, rest),
		intFieldDefault("exchange.http_timeout_seconds", &e.HTTPTimeoutSeconds, defaultExchangeTimeout),
	)
	e.Name = strings.ToLower(strings.TrimSpace(e.Name))
	e.APIKey = strings.TrimSpace(e.APIKey)
	e.SecretKey = strings.TrimSpace(e.SecretKey)
	e.Proxy.normalize()
}

func (s *StrategyConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("strategy.symbol", &s.Symbol, defaultSymbol),
		stringFieldDefault("strategy.interval", &s.Interval, defaultInterval),
		intFieldDefault("strategy.candle_limit", &s.CandleLimit, defaultCandleLimit),
		intFieldDefault("strategy.fast_period", &s.FastPeriod, defaultFastPeriod),
		intFieldDefault("strategy.slow_period", &s.SlowPeriod, defaultSlowPeriod),
		intFieldDefault("strategy.fallback_wait_seconds", &s.FallbackWaitSeconds, defaultFallbackWait),
		intFieldDefault("strategy.rsi_period", &s.RSIPeriod, defaultRSIPeriod),
		intFieldDefault("strategy.atr_period", &s.ATRPeriod, defaultATRPeriod),
	)
	s.Interval = scheduler.NormalizeInterval(s.Interval)
}

func (r *RiskConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		floatFieldDefault("risk.risk_fraction", &r.RiskFraction, defaultRiskFraction),
		floatFieldDefault("risk.stop_loss_fraction", &r.StopLossFraction, defaultStopLoss),
		floatFieldDefault("risk.take_profit_fraction", &r.TakeProfitFraction, defaultTakeProfit),
	)
}

func (t *TradingConfig) applyDefaults(keys keySet) {
	if t == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("trading.mode", &t.Mode, defaultTradingMode),
	)
	t.normalize()
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func floatFieldDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target == 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
