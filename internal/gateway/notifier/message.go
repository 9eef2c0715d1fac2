package notifier

import (
	"fmt"
	"strings"
	"time"

	"crossbot/internal/pkg/text"

	"github.com/shopspring/decimal"
)

const maxStructuredMessageLen = 3800

// MessageSection 表示通知中的一个段落。
type MessageSection struct {
	Title string
	Lines []string
}

// StructuredMessage 描述统一格式的 Telegram 推送。
type StructuredMessage struct {
	Icon      string
	Title     string
	Sections  []MessageSection
	Footer    string
	Timestamp time.Time
}

// RenderMarkdown 生成 Markdown 文本，自动裁剪长度。
func (m StructuredMessage) RenderMarkdown() string {
	var b strings.Builder
	header := strings.TrimSpace(strings.TrimSpace(m.Icon + " " + m.Title))
	if header != "" {
		b.WriteString(escapeMarkdown(header) + "\n\n")
	}
	if block := renderSections(m.Sections); block != "" {
		b.WriteString(block)
	}
	if footer := strings.TrimSpace(m.Footer); footer != "" {
		b.WriteString(escapeMarkdown(footer))
		b.WriteString("\n")
	}
	if !m.Timestamp.IsZero() {
		b.WriteString("time: " + m.Timestamp.Format("2006-01-02 15:04:05 MST"))
	}
	return text.Truncate(strings.TrimSpace(b.String()), maxStructuredMessageLen)
}

func renderSections(secs []MessageSection) string {
	hasContent := false
	for _, sec := range secs {
		if len(sanitizeLines(sec.Lines)) > 0 {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return ""
	}
	var b strings.Builder
	b.WriteString("```\n")
	for idx, sec := range secs {
		lines := sanitizeLines(sec.Lines)
		if len(lines) == 0 {
			continue
		}
		title := strings.TrimSpace(sec.Title)
		if title != "" {
			b.WriteString(sanitize(title))
			b.WriteString("\n")
		}
		for _, line := range lines {
			b.WriteString("- ")
			b.WriteString(sanitize(line))
			b.WriteString("\n")
		}
		if idx != len(secs)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("```\n\n")
	return b.String()
}

func sanitizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// markdownEscaper covers the legacy Markdown entities Telegram parses outside code blocks.
var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "[", `\[`, "`", "\\`")

// escapeMarkdown keeps exchange error text such as LOT_SIZE from opening an
// unterminated entity, which Telegram rejects with 400.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "```", "'''")
	return s
}

// TradeKind classifies a trade notification.
type TradeKind string

const (
	TradeOpened      TradeKind = "opened"
	TradeClosed      TradeKind = "closed"
	TradeCloseFailed TradeKind = "close_failed"
)

// TradeEvent is a filled or failed order worth telling a human about.
type TradeEvent struct {
	Kind     TradeKind
	Symbol   string
	Side     string
	Reason   string
	OrderID  string
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Entry    decimal.Decimal
	Err      error
	At       time.Time
}

func (e TradeEvent) Message() StructuredMessage {
	msg := StructuredMessage{Timestamp: e.At}
	order := MessageSection{Title: "order"}
	order.Lines = append(order.Lines, "symbol: "+e.Symbol, "side: "+e.Side)
	if e.Reason != "" {
		order.Lines = append(order.Lines, "reason: "+e.Reason)
	}
	if !e.Quantity.IsZero() {
		order.Lines = append(order.Lines, "qty: "+e.Quantity.String())
	}
	if !e.Price.IsZero() {
		order.Lines = append(order.Lines, "price: "+e.Price.StringFixed(4))
	}
	if e.OrderID != "" {
		order.Lines = append(order.Lines, "order_id: "+e.OrderID)
	}
	msg.Sections = append(msg.Sections, order)

	switch e.Kind {
	case TradeOpened:
		msg.Icon, msg.Title = "🟢", "BUY "+e.Symbol
	case TradeClosed:
		msg.Icon, msg.Title = "🔴", "SELL "+e.Symbol
		if e.Entry.IsPositive() && e.Price.IsPositive() {
			pnl := e.Price.Sub(e.Entry).Div(e.Entry).Mul(decimal.NewFromInt(100))
			msg.Sections = append(msg.Sections, MessageSection{
				Title: "result",
				Lines: []string{"entry: " + e.Entry.StringFixed(4), "pnl: " + pnl.StringFixed(2) + "%"},
			})
		}
	case TradeCloseFailed:
		msg.Icon, msg.Title = "⚠️", "SELL failed "+e.Symbol
		if e.Err != nil {
			msg.Footer = fmt.Sprintf("error: %v (position kept open)", e.Err)
		}
	}
	return msg
}
