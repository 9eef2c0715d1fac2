// Package convert turns loosely typed exchange payload values into decimals.
package convert

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ToDecimal converts strings, json.Number and Go numerics to a decimal.
// Returns (zero, false) for unsupported types or parse failures.
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return t, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(t), true
	case float32:
		return decimal.NewFromFloat32(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case int32:
		return decimal.NewFromInt32(t), true
	default:
		return decimal.Zero, false
	}
}

// DecimalOrZero is ToDecimal without the ok flag.
func DecimalOrZero(v any) decimal.Decimal {
	d, _ := ToDecimal(v)
	return d
}

// DecimalFromKeys returns the first key of m that converts.
func DecimalFromKeys(m map[string]any, keys ...string) (decimal.Decimal, bool) {
	if len(m) == 0 {
		return decimal.Zero, false
	}
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if d, ok := ToDecimal(v); ok {
				return d, true
			}
		}
	}
	return decimal.Zero, false
}
