package convert

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToDecimal(t *testing.T) {
	cases := []struct {
		in   any
		want string
		ok   bool
	}{
		{" 10.00000000 ", "10", true},
		{json.Number("0.001"), "0.001", true},
		{float64(2.5), "2.5", true},
		{int(3), "3", true},
		{int64(-4), "-4", true},
		{"abc", "0", false},
		{nil, "0", false},
		{[]int{1}, "0", false},
	}
	for _, tc := range cases {
		got, ok := ToDecimal(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "%v -> %s", tc.in, got)
	}
	assert.True(t, DecimalOrZero("bad").IsZero())
}

func TestDecimalFromKeys(t *testing.T) {
	m := map[string]any{"filterType": "NOTIONAL", "minNotional": "5.00", "maxNotional": "9000000"}
	got, ok := DecimalFromKeys(m, "missing", "minNotional")
	assert.True(t, ok)
	assert.Equal(t, "5", got.String())

	_, ok = DecimalFromKeys(m, "filterType")
	assert.False(t, ok)
	_, ok = DecimalFromKeys(nil, "minNotional")
	assert.False(t, ok)
}
