package symbol

import "strings"

// ToBinance strips separators: "SOL/BRL" -> "SOLBRL".
func ToBinance(internal string) string {
	if sym := Parse(internal); sym.IsValid() {
		return sym.Binance()
	}
	s := strings.ToUpper(strings.TrimSpace(internal))
	return strings.ReplaceAll(s, "/", "")
}

// FromBinance restores the internal form: "SOLBRL" -> "SOL/BRL".
func FromBinance(raw string) string {
	return Parse(raw).Internal()
}
