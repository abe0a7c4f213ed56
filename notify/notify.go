// Package notify defines the user-notification surface the mutation layer
// reports through. The rendering of toasts is a presentation concern owned
// by the host application; this package only carries the contract and a
// slog-backed default for headless use.
package notify

import (
	"context"
	"log/slog"
)

// Kind classifies a notification.
type Kind string

// Notification kinds.
const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notifier is the toast surface consumed by the mutation orchestrator.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, title, description string)
}

// LogNotifier writes notifications to a structured logger. It is the
// default collaborator when no UI surface is wired in.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, kind Kind, title, description string) {
	switch kind {
	case KindError:
		n.log.Error(title, "description", description)
	default:
		n.log.Info(title, "kind", string(kind), "description", description)
	}
}
