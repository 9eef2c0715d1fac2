package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTelegram(url string) *Telegram {
	tg := NewTelegram("token", "42")
	tg.BaseURL = url
	tg.Backoff = time.Millisecond
	return tg
}

func TestTelegramSendText(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestTelegram(srv.URL).SendText(context.Background(), "hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
}

func TestTelegramRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestTelegram(srv.URL).SendText(context.Background(), "x"))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestTelegramStopsOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestTelegram(srv.URL).SendText(context.Background(), "x")
	assert.EqualError(t, err, "telegram status=401")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestTelegramGivesUpWhenContextDone(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tg := newTestTelegram(srv.URL)
	tg.Backoff = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tg.SendText(ctx, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestTelegramIncompleteConfig(t *testing.T) {
	assert.Error(t, NewTelegram("", "").SendText(context.Background(), "x"))
}

func TestTradeEventMessage(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	closed := TradeEvent{
		Kind:     TradeClosed,
		Symbol:   "SOL/BRL",
		Side:     "SELL",
		Reason:   "stop_loss",
		Quantity: decimal.RequireFromString("0.4"),
		Price:    decimal.RequireFromString("47"),
		Entry:    decimal.RequireFromString("50"),
		At:       at,
	}.Message().RenderMarkdown()
	assert.True(t, strings.HasPrefix(closed, "🔴 SELL SOL/BRL"))
	assert.Contains(t, closed, "- reason: stop_loss")
	assert.Contains(t, closed, "- pnl: -6.00%")
	assert.Contains(t, closed, "time: 2024-03-01 12:00:00 UTC")

	failed := TradeEvent{Kind: TradeCloseFailed, Symbol: "SOL/BRL", Side: "SELL", Err: errors.New("rejected")}.Message().RenderMarkdown()
	assert.Contains(t, failed, "error: rejected (position kept open)")
}

func TestCloseFailedFooterIsEscaped(t *testing.T) {
	out := TradeEvent{
		Kind:   TradeCloseFailed,
		Symbol: "SOL/BRL",
		Side:   "SELL",
		Reason: "stop_loss",
		Err:    errors.New("binance api error code=-1013 msg=Filter failure: MARKET_LOT_SIZE *x* [y] `z`"),
	}.Message().RenderMarkdown()

	assert.Contains(t, out, `MARKET\_LOT\_SIZE \*x\* \[y] \`+"`z\\`")
	// reason stays verbatim inside the code block
	assert.Contains(t, out, "- reason: stop_loss")

	fence := strings.LastIndex(out, "```")
	require.NotEqual(t, -1, fence)
	outside := strings.ReplaceAll(out[fence+3:], `\_`, "")
	assert.NotContains(t, outside, "_")
}

func TestRenderMarkdownTruncates(t *testing.T) {
	msg := StructuredMessage{Title: "t", Sections: []MessageSection{{Lines: []string{strings.Repeat("a", 5000)}}}}
	out := msg.RenderMarkdown()
	assert.Len(t, out, maxStructuredMessageLen+3)
	assert.True(t, strings.HasSuffix(out, "..."))
}
