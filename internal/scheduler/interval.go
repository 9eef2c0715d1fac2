package scheduler

import (
	"strings"
	"time"
)

// klineIntervals 是 Binance 现货 K 线支持的周期（月线 1M 无固定时长，未收录）。
var klineIntervals = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"6h":  6 * time.Hour,
	"8h":  8 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
	"3d":  3 * 24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

// NormalizeInterval trims and lowercases a kline interval label.
func NormalizeInterval(interval string) string {
	return strings.ToLower(strings.TrimSpace(interval))
}

// ParseIntervalDuration maps a Binance kline interval ("15m", "4h", "1d") to its period.
// Returns (0, false) when the exchange does not serve that interval.
func ParseIntervalDuration(interval string) (time.Duration, bool) {
	d, ok := klineIntervals[NormalizeInterval(interval)]
	return d, ok
}

// IsKlineInterval reports whether interval is accepted by the kline endpoint.
func IsKlineInterval(interval string) bool {
	_, ok := ParseIntervalDuration(interval)
	return ok
}
