package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"crossbot/internal/config"
	"crossbot/internal/gateway/exchange"
	symbolpkg "crossbot/internal/pkg/symbol"
)

type StartupSummary struct {
	Mode        string
	Exchange    string
	Symbol      symbolpkg.Symbol
	Interval    string
	CandleLimit int
	FastPeriod  int
	SlowPeriod  int
	Risk        config.RiskConfig
	Lot         exchange.LotConstraint
	Balances    exchange.Balances
	Timezone    string
	HTTPAddr    string
}

func (s *StartupSummary) Print() {
	s.Fprint(os.Stdout)
}

func (s *StartupSummary) Fprint(w io.Writer) {
	title := "启动配置摘要 (STARTUP SUMMARY)"
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "%*s\n", 40+len(title)/2, title)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	fmt.Fprintln(w, "[交易对 (MARKET)]")
	fmt.Fprintf(w, "  模式: %s (%s)\n", s.Mode, s.Exchange)
	fmt.Fprintf(w, "  交易对: %s  base=%s quote=%s\n", s.Symbol, s.Symbol.Base, s.Symbol.Quote)
	fmt.Fprintf(w, "  K线周期: %s  历史长度: %d  时区: %s\n", s.Interval, s.CandleLimit, s.Timezone)
	fmt.Fprintf(w, "  step_size=%s min_qty=%s min_notional=%s\n",
		s.Lot.StepSize, formatDecimalOrDash(s.Lot.MinQty.String(), s.Lot.MinQty.IsZero()),
		formatDecimalOrDash(s.Lot.MinNotional.String(), s.Lot.MinNotional.IsZero()))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[策略与风控 (STRATEGY / RISK)]")
	fmt.Fprintf(w, "  EMA: fast=%d slow=%d\n", s.FastPeriod, s.SlowPeriod)
	fmt.Fprintf(w, "  risk=%.2f%% stop_loss=%.2f%% take_profit=%.2f%%\n",
		s.Risk.RiskFraction*100, s.Risk.StopLossFraction*100, s.Risk.TakeProfitFraction*100)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[账户余额 (BALANCES)]")
	fmt.Fprintf(w, "  %s: %s\n", s.Symbol.Base, s.Balances.Free(s.Symbol.Base))
	fmt.Fprintf(w, "  %s: %s\n", s.Symbol.Quote, s.Balances.Free(s.Symbol.Quote))
	if s.HTTPAddr != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "[状态接口 (STATUS API)] http://%s/api/status\n", strings.TrimPrefix(s.HTTPAddr, "http://"))
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func formatDecimalOrDash(v string, zero bool) string {
	if zero {
		return "-"
	}
	return v
}
