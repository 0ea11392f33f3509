package projection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/spiritcast/internal/content"
)

// Channel delivers the current frame to every subscriber, local or in
// another process sharing the same Port.
//
// Thread-safety model:
//   - Publish, Clear, Subscribe: safe from any goroutine; serialized with
//     deliveries so local subscribers observe publishes in call order
//   - Run: call from one goroutine per Channel
//   - Unsubscribe, Current: safe from anywhere, never block on delivery
type Channel struct {
	port   Port
	clock  *Clock
	logger *slog.Logger

	// dispatchMu serializes stamping, persistence and callback delivery.
	dispatchMu sync.Mutex

	// mu guards the registry and the current frame.
	mu      sync.Mutex
	subs    []*Subscription // registration order, copy-on-write
	current content.Frame
	nextID  uint64
}

// Option configures a Channel.
type Option func(*Channel)

// WithClock sets the sequence clock. Channels in one process that publish
// to the same Port should share a clock.
func WithClock(c *Clock) Option {
	return func(ch *Channel) {
		ch.clock = c
	}
}

// WithLogger sets the logger for recovered failures.
func WithLogger(l *slog.Logger) Option {
	return func(ch *Channel) {
		ch.logger = l
	}
}

// New creates a Channel over port. The current frame starts blank.
func New(port Port, opts ...Option) *Channel {
	ch := &Channel{
		port:    port,
		clock:   NewClock(),
		logger:  slog.Default(),
		current: content.Blank(),
	}
	for _, opt := range opts {
		opt(ch)
	}
	return ch
}

// Subscription is a registered frame callback.
type Subscription struct {
	id     uint64
	ch     *Channel
	fn     func(content.Frame)
	active atomic.Bool
	last   int64 // last accepted sequence, guarded by ch.dispatchMu
	err    error
}

// Unsubscribe stops all further notification. Idempotent; safe to call
// during an in-flight notification, including from the callback itself.
func (s *Subscription) Unsubscribe() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	s.ch.remove(s.id)
}

// Err returns the error recovered while bootstrapping the subscription,
// if the stored frame was unavailable or corrupt.
func (s *Subscription) Err() error {
	return s.err
}

// Publish stamps f with the next sequence, persists it and notifies local
// subscribers. Returns the stamped frame.
//
// A persistence failure is logged and returned, but local subscribers are
// still notified: the operator's own views keep working when the store is
// down.
func (c *Channel) Publish(ctx context.Context, f content.Frame) (content.Frame, error) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	f.Sequence = c.clock.Next()
	payload, err := content.EncodeFrame(f)
	if err != nil {
		return content.Frame{}, fmt.Errorf("publish: %w", err)
	}

	var storeErr error
	if err := c.port.Store(ctx, f.Sequence, payload); err != nil {
		c.logger.Error("projection store write failed", "kind", f.Kind, "seq", f.Sequence, "error", err)
		storeErr = fmt.Errorf("publish: persist frame: %w", err)
	}

	c.deliverLocked(f)
	return f, storeErr
}

// Clear publishes the blank frame.
func (c *Channel) Clear(ctx context.Context) (content.Frame, error) {
	return c.Publish(ctx, content.Blank())
}

// Current returns the newest frame this channel has published or received.
func (c *Channel) Current() content.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Refresh reads the stored frame so the clock stamps above it and Current
// reflects it, without registering a subscriber. Returns the newest known
// frame; on a load failure that frame is still returned with the error.
func (c *Channel) Refresh(ctx context.Context) (content.Frame, error) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	return c.bootstrap(ctx)
}

// Subscribe registers fn and calls it once immediately with the last known
// frame (content.Blank() if none), then on every newer frame.
//
// The stored frame is consulted first; if it cannot be read or decoded the
// failure is logged, kept in Subscription.Err, and the subscription starts
// from content.Blank(). A frame this channel saw earlier is never replayed
// in that case, since the store may hold something newer.
func (c *Channel) Subscribe(ctx context.Context, fn func(content.Frame)) *Subscription {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	initial, err := c.bootstrap(ctx)
	if err != nil {
		initial = content.Blank()
	}

	c.mu.Lock()
	c.nextID++
	sub := &Subscription{id: c.nextID, ch: c, fn: fn, last: initial.Sequence, err: err}
	sub.active.Store(true)
	subs := make([]*Subscription, 0, len(c.subs)+1)
	subs = append(subs, c.subs...)
	c.subs = append(subs, sub)
	c.mu.Unlock()

	fn(initial)
	return sub
}

// Run delivers frames written to the Port by other writers until ctx is
// done. Returns ctx.Err().
func (c *Channel) Run(ctx context.Context) error {
	return c.port.Watch(ctx, func(payload []byte) {
		c.receive(payload)
	})
}

// receive handles one cross-context notification.
func (c *Channel) receive(payload []byte) {
	f, err := content.DecodeFrame(payload)
	if err != nil {
		c.logger.Warn("dropping corrupt projection notification", "error", err)
		return
	}
	c.clock.Observe(f.Sequence)

	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	c.deliverLocked(f)
}

// bootstrap resolves the frame a new subscriber starts from.
// Called with dispatchMu held.
func (c *Channel) bootstrap(ctx context.Context) (content.Frame, error) {
	stored, err := c.loadStored(ctx)
	if err != nil {
		c.logger.Warn("projection store unavailable, starting from idle frame", "error", err)
	} else {
		c.clock.Observe(stored.Sequence)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if stored.Sequence > c.current.Sequence {
		c.current = stored
	}
	return c.current, err
}

func (c *Channel) loadStored(ctx context.Context) (content.Frame, error) {
	payload, err := c.port.Load(ctx)
	if err != nil {
		return content.Blank(), fmt.Errorf("load stored frame: %w", err)
	}
	if payload == nil {
		return content.Blank(), nil
	}
	f, err := content.DecodeFrame(payload)
	if err != nil {
		return content.Blank(), err
	}
	return f, nil
}

// deliverLocked passes f through every subscription's gate.
// Called with dispatchMu held.
func (c *Channel) deliverLocked(f content.Frame) {
	c.mu.Lock()
	if f.Sequence > c.current.Sequence {
		c.current = f
	}
	subs := c.subs
	c.mu.Unlock()

	for _, s := range subs {
		if !s.active.Load() || f.Sequence <= s.last {
			continue
		}
		s.last = f.Sequence
		s.fn(f)
	}
}

func (c *Channel) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	subs := make([]*Subscription, 0, len(c.subs))
	for _, s := range c.subs {
		if s.id != id {
			subs = append(subs, s)
		}
	}
	c.subs = subs
}
