// Package events defines the notification sink informed of ledger changes.
// Notifications are fire-and-forget: implementations must never block or
// fail the operation that triggered them.
package events

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Event names published by the transaction service.
const (
	TransactionCreated = "TransactionCreated"
	TransactionDeleted = "TransactionDeleted"
)

// Notifier receives created/deleted notifications for downstream consumers.
// The payload carries the transaction fields relevant to the event.
type Notifier interface {
	NotifyCreated(payload map[string]any)
	NotifyDeleted(payload map[string]any)
}

// LogNotifier publishes events to the structured log.
type LogNotifier struct{}

// NewLogNotifier creates a Notifier backed by the global logger.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// NotifyCreated logs a TransactionCreated event.
func (n *LogNotifier) NotifyCreated(payload map[string]any) {
	log.Info().Str("event", TransactionCreated).Fields(payload).Msg("event published")
}

// NotifyDeleted logs a TransactionDeleted event.
func (n *LogNotifier) NotifyDeleted(payload map[string]any) {
	log.Info().Str("event", TransactionDeleted).Fields(payload).Msg("event published")
}

// Event is a captured notification, used by MemoryNotifier.
type Event struct {
	Name    string
	Payload map[string]any
}

// MemoryNotifier accumulates events in memory. Tests substitute it for the
// log-backed notifier to assert on what was published.
type MemoryNotifier struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryNotifier creates an empty capturing notifier.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

// NotifyCreated records a TransactionCreated event.
func (n *MemoryNotifier) NotifyCreated(payload map[string]any) {
	n.append(Event{Name: TransactionCreated, Payload: payload})
}

// NotifyDeleted records a TransactionDeleted event.
func (n *MemoryNotifier) NotifyDeleted(payload map[string]any) {
	n.append(Event{Name: TransactionDeleted, Payload: payload})
}

// Events returns a copy of everything captured so far.
func (n *MemoryNotifier) Events() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Event, len(n.events))
	copy(out, n.events)
	return out
}

func (n *MemoryNotifier) append(e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}
