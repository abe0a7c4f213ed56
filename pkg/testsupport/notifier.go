package testsupport

import (
	"context"
	"sync"

	"github.com/dokumatek/erpkit/notify"
)

// Notification is one recorded notifier call.
type Notification struct {
	Kind        notify.Kind
	Title       string
	Description string
}

// RecordingNotifier captures notifications for assertions.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []Notification
}

// Notify implements notify.Notifier.
func (n *RecordingNotifier) Notify(ctx context.Context, kind notify.Kind, title, description string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, Notification{Kind: kind, Title: title, Description: description})
}

// Events returns the notifications recorded so far.
func (n *RecordingNotifier) Events() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.events...)
}

// Last returns the most recent notification, if any.
func (n *RecordingNotifier) Last() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return Notification{}, false
	}
	return n.events[len(n.events)-1], true
}
