package notifier

import "context"

// TextNotifier defines a minimal text notification interface.
type TextNotifier interface {
	SendText(ctx context.Context, text string) error
}

// Nop drops every message. Used when no channel is configured.
type Nop struct{}

func (Nop) SendText(context.Context, string) error { return nil }
