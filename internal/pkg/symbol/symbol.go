package symbol

import (
	"strings"
)

// knownQuotes are tried in order when a pair has no separator; first suffix match wins.
var knownQuotes = []string{"FDUSD", "USDT", "USDC", "BUSD", "TUSD", "BRL", "EUR", "TRY", "BTC", "ETH", "BNB"}

// Symbol is a spot pair split into its base (held) and quote (spent) assets.
type Symbol struct {
	Base  string
	Quote string
}

func (s Symbol) Internal() string {
	if s.Base == "" || s.Quote == "" {
		return ""
	}
	return s.Base + "/" + s.Quote
}

func (s Symbol) Binance() string {
	if s.Base == "" || s.Quote == "" {
		return ""
	}
	return s.Base + s.Quote
}

func (s Symbol) IsValid() bool {
	return s.Base != "" && s.Quote != ""
}

func (s Symbol) String() string {
	return s.Internal()
}

// Parse accepts "SOL/BRL", "sol-brl", "SOLBRL" and futures style "SOL/USDT:USDT".
func Parse(s string) Symbol {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Symbol{}
	}

	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}

	for _, sep := range []string{"/", "-", "_"} {
		if parts := strings.SplitN(s, sep, 2); len(parts) == 2 {
			base := strings.TrimSpace(parts[0])
			quote := strings.TrimSpace(parts[1])
			if base == "" || quote == "" {
				return Symbol{}
			}
			return Symbol{Base: base, Quote: quote}
		}
	}

	for _, quote := range knownQuotes {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return Symbol{
				Base:  s[:len(s)-len(quote)],
				Quote: quote,
			}
		}
	}

	return Symbol{}
}

func Normalize(s string) string {
	return Parse(s).Internal()
}

func IsValid(s string) bool {
	return Parse(s).IsValid()
}
