package projection

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/spiritcast/internal/store"
)

// Port is the shared-state slot behind a Channel.
//
// Load returns the stored payload, or nil when the slot is empty.
// Store persists payload when seq is newer than the stored value; an older
// write is silently ignored. Watch blocks until ctx is done, calling fn
// with the payload stored when it starts and then with each payload written
// by any writer; it returns ctx.Err().
type Port interface {
	Load(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, seq int64, payload []byte) error
	Watch(ctx context.Context, fn func(payload []byte)) error
}

// StorePort is the cross-process Port backed by the SQLite store.
type StorePort struct {
	store  *store.Store
	key    string
	opts   store.WatchOptions
	logger *slog.Logger
}

var _ Port = (*StorePort)(nil)

// NewStorePort returns a Port over store.ProjectionKey in s.
func NewStorePort(s *store.Store, opts store.WatchOptions) *StorePort {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StorePort{store: s, key: store.ProjectionKey, opts: opts, logger: logger}
}

// Load implements Port.
func (p *StorePort) Load(ctx context.Context) ([]byte, error) {
	slot, ok, err := p.store.ReadSlot(ctx, p.key)
	if err != nil || !ok {
		return nil, err
	}
	return slot.Payload, nil
}

// Store implements Port.
func (p *StorePort) Store(ctx context.Context, seq int64, payload []byte) error {
	applied, err := p.store.WriteSlot(ctx, p.key, seq, payload)
	if err != nil {
		return err
	}
	if !applied {
		p.logger.Debug("projection slot holds a newer frame, write ignored", "seq", seq)
	}
	return nil
}

// Watch implements Port.
func (p *StorePort) Watch(ctx context.Context, fn func(payload []byte)) error {
	return p.store.WatchSlot(ctx, p.key, p.opts, func(s store.Slot) {
		fn(s.Payload)
	})
}

// MemoryPort is an in-process Port. Channels sharing one MemoryPort behave
// like separate windows sharing a durable store: each sees the others'
// writes only through Watch.
//
// The Fail*, SetRaw and Inject methods let tests model an unavailable
// store, corrupt persisted values and late or duplicated notifications.
type MemoryPort struct {
	mu       sync.Mutex
	seq      int64
	payload  []byte
	loadErr  error
	storeErr error
	boxes    map[*mailbox]struct{}
}

var _ Port = (*MemoryPort)(nil)

// NewMemoryPort returns an empty MemoryPort.
func NewMemoryPort() *MemoryPort {
	return &MemoryPort{boxes: make(map[*mailbox]struct{})}
}

// Load implements Port.
func (p *MemoryPort) Load(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	if p.payload == nil {
		return nil, nil
	}
	return append([]byte(nil), p.payload...), nil
}

// Store implements Port.
func (p *MemoryPort) Store(ctx context.Context, seq int64, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.storeErr != nil {
		return p.storeErr
	}
	if p.payload != nil && seq <= p.seq {
		return nil
	}
	p.seq = seq
	p.payload = append([]byte(nil), payload...)
	p.broadcastLocked(p.payload)
	return nil
}

// Watch implements Port.
func (p *MemoryPort) Watch(ctx context.Context, fn func(payload []byte)) error {
	box := newMailbox()
	p.mu.Lock()
	p.boxes[box] = struct{}{}
	if p.payload != nil {
		box.put(p.payload)
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.boxes, box)
		p.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-box.wait():
			for {
				payload, ok := box.take()
				if !ok {
					break
				}
				fn(payload)
			}
		}
	}
}

// Watchers returns the number of active Watch calls.
func (p *MemoryPort) Watchers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.boxes)
}

// FailLoad makes Load return err until called again with nil.
func (p *MemoryPort) FailLoad(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadErr = err
}

// FailStore makes Store return err until called again with nil.
func (p *MemoryPort) FailStore(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.storeErr = err
}

// SetRaw overwrites the stored value without notifying watchers.
func (p *MemoryPort) SetRaw(seq int64, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq = seq
	p.payload = append([]byte(nil), payload...)
}

// Inject delivers payload to every watcher without storing it.
func (p *MemoryPort) Inject(payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcastLocked(append([]byte(nil), payload...))
}

func (p *MemoryPort) broadcastLocked(payload []byte) {
	for box := range p.boxes {
		box.put(payload)
	}
}

// mailbox is an unbounded FIFO of payloads with a coalescing signal, so
// Store never blocks on a slow watcher.
type mailbox struct {
	mu     sync.Mutex
	items  [][]byte
	signal chan struct{} // buffered, size 1
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (m *mailbox) put(payload []byte) {
	m.mu.Lock()
	m.items = append(m.items, payload)
	m.mu.Unlock()

	// Non-blocking - buffer of 1 coalesces multiple signals
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) take() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return nil, false
	}
	p := m.items[0]
	m.items[0] = nil
	m.items = m.items[1:]
	return p, true
}

func (m *mailbox) wait() <-chan struct{} {
	return m.signal
}
