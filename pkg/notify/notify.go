package notify

import (
	"sync"
	"time"
)

// Level classifies a notification for presentation.
type Level int

const (
	LevelSuccess Level = iota
	LevelInfo
	LevelError
)

// Notification is one short human-readable message surfaced to the user.
// Raw transport errors never travel on the bus; stores translate them first.
type Notification struct {
	Level   Level
	Message string
	Time    time.Time
}

// Bus is an in-process publish/subscribe channel for user notifications.
// Every store publishes the outcome of its operations here and the UI
// renders them as toasts.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Notification
	closed bool
}

// subscriber buffer size. Publish never blocks: a subscriber that falls
// this far behind starts losing the oldest-pending messages.
const subscriberBuffer = 16

// NewBus creates a new notification bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new subscriber and returns its receive channel.
// The channel is closed when the bus closes.
func (b *Bus) Subscribe() <-chan Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Notification, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers a notification to every subscriber without blocking.
func (b *Bus) Publish(level Level, message string) {
	n := Notification{Level: level, Message: message, Time: time.Now()}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
			// Subscriber is not draining; drop rather than stall a store.
		}
	}
}

// Success publishes a success-level notification.
func (b *Bus) Success(message string) { b.Publish(LevelSuccess, message) }

// Info publishes an info-level notification.
func (b *Bus) Info(message string) { b.Publish(LevelInfo, message) }

// Error publishes an error-level notification.
func (b *Bus) Error(message string) { b.Publish(LevelError, message) }

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
