package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	rules := NewRules(0.05, 0.10)
	require.NoError(t, rules.Validate())
	entry := decimal.NewFromInt(100)

	cases := []struct {
		price  string
		close  bool
		reason Reason
	}{
		{"94", true, ReasonStopLoss},
		{"95", true, ReasonStopLoss},
		{"95.0001", false, ReasonNone},
		{"100", false, ReasonNone},
		{"109.99", false, ReasonNone},
		{"110", true, ReasonTakeProfit},
		{"111", true, ReasonTakeProfit},
	}
	for _, tc := range cases {
		v := Evaluate(entry, decimal.RequireFromString(tc.price), rules)
		assert.Equal(t, tc.close, v.Close, tc.price)
		assert.Equal(t, tc.reason, v.Reason, tc.price)
	}
}

func TestEvaluateLevels(t *testing.T) {
	v := Evaluate(decimal.NewFromInt(50), decimal.NewFromInt(47), NewRules(0.05, 0.10))
	assert.True(t, decimal.RequireFromString("47.5").Equal(v.StopLoss))
	assert.True(t, decimal.NewFromInt(55).Equal(v.TakeProfit))
	assert.True(t, v.Close)
	assert.Equal(t, ReasonStopLoss, v.Reason)
	assert.Contains(t, v.String(), "close:stop_loss")
}

func TestStopLossWinsOnOverlap(t *testing.T) {
	// A negative take-profit puts both thresholds below the entry; stop-loss is checked first.
	rules := Rules{StopLoss: decimal.RequireFromString("0.05"), TakeProfit: decimal.RequireFromString("-0.5")}
	v := Evaluate(decimal.NewFromInt(100), decimal.NewFromInt(90), rules)
	assert.Equal(t, ReasonStopLoss, v.Reason)
}

func TestEvaluateDoesNotMutateRules(t *testing.T) {
	rules := NewRules(0.05, 0.10)
	before := rules
	_ = Evaluate(decimal.NewFromInt(100), decimal.NewFromInt(94), rules)
	assert.True(t, before.StopLoss.Equal(rules.StopLoss))
	assert.True(t, before.TakeProfit.Equal(rules.TakeProfit))
}

func TestRulesValidate(t *testing.T) {
	assert.Error(t, NewRules(0, 0.1).Validate())
	assert.Error(t, NewRules(1, 0.1).Validate())
	assert.Error(t, NewRules(0.05, 0).Validate())
	assert.Equal(t, "hold entry=100.0000 price=100.0000 stop_loss=95.0000 take_profit=110.0000",
		Evaluate(decimal.NewFromInt(100), decimal.NewFromInt(100), NewRules(0.05, 0.10)).String())
}
