package service

import (
	"context"

	"alchemy_webapp/internal/domain"
)

// Notifier delivers user-facing events (websocket, telegram chat).
// Delivery is best effort and must not block the caller for long.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, domain.Event) {}

// MultiNotifier fans an event out to several notifiers.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, event domain.Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, event)
		}
	}
}
