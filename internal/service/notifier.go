package service

import "context"

// Notifier delivers short text messages to a user.
type Notifier interface {
	Notify(ctx context.Context, userID uint, text string) error
}

// NopNotifier drops every message. Used when no delivery channel is set up.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, uint, string) error { return nil }
