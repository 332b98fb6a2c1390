// Package notify holds the console's single-slot notification: the newest
// message replaces any earlier one and clears itself after a fixed window.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

// EventType distinguishes slot changes delivered to subscribers.
type EventType string

const (
	EventSet   EventType = "notification.set"
	EventClear EventType = "notification.clear"
)

// Event is a change of the slot. Notification is nil for EventClear.
type Event struct {
	Type         EventType            `json:"type"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// Channel is the process-wide notification slot.
type Channel struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	current *models.Notification
	timer   *time.Timer
	subs    map[int]chan Event
	nextSub int
	logger  *zap.Logger
}

// New creates a Channel whose notifications expire after ttl.
func New(ttl time.Duration, logger *zap.Logger) *Channel {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel{
		ttl:    ttl,
		now:    time.Now,
		subs:   make(map[int]chan Event),
		logger: logger,
	}
}

// Success shows a success notification.
func (c *Channel) Success(message string) models.Notification {
	return c.Notify(models.KindSuccess, message)
}

// Error shows an error notification.
func (c *Channel) Error(message string) models.Notification {
	return c.Notify(models.KindError, message)
}

// Notify replaces the slot with a new notification and schedules its expiry.
func (c *Channel) Notify(kind models.NotificationKind, message string) models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := models.Notification{
		ID:        uuid.New().String(),
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.stopTimer()
	c.current = &n
	id := n.ID
	c.timer = time.AfterFunc(c.ttl, func() { c.expire(id) })

	c.logger.Debug("notification", zap.String("kind", string(kind)), zap.String("message", message))
	c.publish(Event{Type: EventSet, Notification: &n})
	return n
}

// Current returns the live notification, if any.
func (c *Channel) Current() (models.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.Expired(c.now()) {
		return models.Notification{}, false
	}
	return *c.current, true
}

// Dismiss clears the slot immediately and cancels the pending expiry.
func (c *Channel) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimer()
	if c.current == nil {
		return
	}
	c.current = nil
	c.publish(Event{Type: EventClear})
}

// Subscribe returns a channel of slot changes and a function that ends the
// subscription. Slow subscribers miss events rather than block the slot.
func (c *Channel) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan Event, 8)
	c.subs[id] = ch
	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

func (c *Channel) expire(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// A newer notification owns the slot; its own timer will clear it.
	if c.current == nil || c.current.ID != id {
		return
	}
	c.current = nil
	c.timer = nil
	c.publish(Event{Type: EventClear})
}

func (c *Channel) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// publish must be called with mu held.
func (c *Channel) publish(ev Event) {
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
