package suggest

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/roach88/spiritcast/internal/content"
)

// sinkTimeout bounds one activity journal write.
const sinkTimeout = 2 * time.Second

// Timing bounds a sampling cycle: the pause between cycles and the
// simulated recognition delay within one.
type Timing struct {
	MinInterval   time.Duration
	MaxInterval   time.Duration
	MinProcessing time.Duration
	MaxProcessing time.Duration
}

// DefaultTiming is 3-10s between cycles and 1-3s of processing.
var DefaultTiming = Timing{
	MinInterval:   3 * time.Second,
	MaxInterval:   10 * time.Second,
	MinProcessing: 1 * time.Second,
	MaxProcessing: 3 * time.Second,
}

// ActivitySink journals activity records outside the in-memory log.
// *store.Store implements it.
type ActivitySink interface {
	RecordActivity(ctx context.Context, rec content.ActivityRecord) error
}

// EventType identifies an Engine notification.
type EventType int

const (
	// EventListening reports a change of the Listening flag.
	EventListening EventType = iota + 1
	// EventProcessing reports a change of the Processing flag.
	EventProcessing
	// EventActivity reports a new activity record.
	EventActivity
	// EventSuggestion reports a suggestion added to the queue.
	EventSuggestion
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventListening:
		return "listening"
	case EventProcessing:
		return "processing"
	case EventActivity:
		return "activity"
	case EventSuggestion:
		return "suggestion"
	default:
		return "unknown"
	}
}

// Event is delivered to observers registered with OnEvent.
type Event struct {
	Type       EventType
	Listening  bool
	Processing bool
	Activity   *content.ActivityRecord
	Suggestion *content.Suggestion
}

// Snapshot is a consistent copy of the Engine state.
type Snapshot struct {
	Listening   bool                     `json:"listening"`
	Processing  bool                     `json:"processing"`
	Suggestions []content.Suggestion     `json:"suggestions"`
	Activity    []content.ActivityRecord `json:"activity"`
}

// Engine periodically samples utterances while listening and queues
// suggestions for the operator.
//
// Thread-safety: all methods are safe for concurrent use. Observers run
// outside the lock, on whichever goroutine fired the cycle, and may call
// back into the Engine.
type Engine struct {
	matcher *Matcher
	source  UtteranceSource
	sched   Scheduler
	rand    Rand
	ids     IDGenerator
	now     func() time.Time
	sink    ActivitySink
	logger  *slog.Logger
	timing  Timing

	mu         sync.Mutex
	listening  bool
	processing bool
	epoch      uint64 // bumped on every start and stop; stale timers compare against it
	timer      Timer
	queue      *Queue
	activity   *ActivityLog
	observers  map[uint64]func(Event)
	nextObs    uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource sets the utterance source. Defaults to DefaultUtterances.
func WithSource(src UtteranceSource) Option {
	return func(e *Engine) { e.source = src }
}

// WithScheduler sets the timer source. Defaults to RealScheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithRand sets the randomness source.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rand = r }
}

// WithIDGenerator sets the generator for suggestion and activity ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithNow sets the wall clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSink journals every activity record to sink.
func WithSink(sink ActivitySink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTiming overrides the cycle timing.
func WithTiming(t Timing) Option {
	return func(e *Engine) { e.timing = t }
}

// WithCapacity overrides the queue and activity log bounds.
func WithCapacity(queue, activity int) Option {
	return func(e *Engine) {
		e.queue = NewQueue(queue)
		e.activity = NewActivityLog(activity)
	}
}

// New creates an idle Engine matching with m.
func New(m *Matcher, opts ...Option) *Engine {
	e := &Engine{
		matcher:   m,
		source:    DefaultUtterances,
		sched:     RealScheduler{},
		rand:      globalRand{},
		ids:       UUIDv7Generator{},
		now:       time.Now,
		logger:    slog.Default(),
		timing:    DefaultTiming,
		queue:     NewQueue(DefaultQueueCapacity),
		activity:  NewActivityLog(DefaultActivityCapacity),
		observers: make(map[uint64]func(Event)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnEvent registers fn for engine notifications and returns a function
// that removes it.
func (e *Engine) OnEvent(fn func(Event)) (remove func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextObs++
	id := e.nextObs
	e.observers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.observers, id)
	}
}

// StartListening begins sampling. Starting from idle clears the activity
// log; starting while already listening does nothing.
func (e *Engine) StartListening() {
	e.mu.Lock()
	if e.listening {
		e.mu.Unlock()
		return
	}
	e.listening = true
	e.epoch++
	e.activity.Clear()
	e.scheduleIntervalLocked()
	obs := e.observersLocked()
	e.mu.Unlock()

	e.logger.Info("listening started")
	emit(obs, Event{Type: EventListening, Listening: true})
}

// StopListening cancels pending cycles and resets Processing. A cycle
// already resolving may still log its sample. Idempotent.
func (e *Engine) StopListening() {
	e.mu.Lock()
	if !e.listening {
		e.mu.Unlock()
		return
	}
	wasProcessing := e.processing
	e.listening = false
	e.processing = false
	e.epoch++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	obs := e.observersLocked()
	e.mu.Unlock()

	e.logger.Info("listening stopped")
	emit(obs, Event{Type: EventListening, Listening: false})
	if wasProcessing {
		emit(obs, Event{Type: EventProcessing, Listening: false, Processing: false})
	}
}

// Listening reports whether the engine is sampling.
func (e *Engine) Listening() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listening
}

// scheduleIntervalLocked arms the pause before the next cycle.
func (e *Engine) scheduleIntervalLocked() {
	d := between(e.rand, e.timing.MinInterval, e.timing.MaxInterval)
	epoch := e.epoch
	e.timer = e.sched.AfterFunc(d, func() { e.beginCycle(epoch) })
}

func (e *Engine) beginCycle(epoch uint64) {
	e.mu.Lock()
	if epoch != e.epoch || !e.listening {
		e.mu.Unlock()
		return
	}
	e.processing = true
	d := between(e.rand, e.timing.MinProcessing, e.timing.MaxProcessing)
	e.timer = e.sched.AfterFunc(d, func() { e.resolveCycle(epoch) })
	obs := e.observersLocked()
	e.mu.Unlock()

	emit(obs, Event{Type: EventProcessing, Listening: true, Processing: true})
}

func (e *Engine) resolveCycle(epoch uint64) {
	e.mu.Lock()
	if epoch != e.epoch || !e.listening {
		e.mu.Unlock()
		return
	}
	text := e.source.Next(e.rand)
	rec, sug, added := e.ingestLocked(text)
	e.processing = false
	e.scheduleIntervalLocked()
	obs := e.observersLocked()
	e.mu.Unlock()

	e.journal(rec)
	emit(obs, Event{Type: EventActivity, Listening: true, Activity: &rec})
	if added {
		emit(obs, Event{Type: EventSuggestion, Listening: true, Suggestion: &sug})
	}
	emit(obs, Event{Type: EventProcessing, Listening: true, Processing: false})
}

// Ingest matches text immediately, independent of the sampling cycle,
// logging it and queueing any suggestion. It serves live transcripts and
// operator-typed phrases. Returns the suggestion when one was queued.
func (e *Engine) Ingest(text string) (content.Suggestion, bool) {
	e.mu.Lock()
	rec, sug, added := e.ingestLocked(text)
	listening := e.listening
	obs := e.observersLocked()
	e.mu.Unlock()

	e.journal(rec)
	emit(obs, Event{Type: EventActivity, Listening: listening, Activity: &rec})
	if added {
		emit(obs, Event{Type: EventSuggestion, Listening: listening, Suggestion: &sug})
	}
	return sug, added
}

func (e *Engine) ingestLocked(text string) (content.ActivityRecord, content.Suggestion, bool) {
	now := e.now()
	m, ok := e.matcher.Match(text, e.rand)
	rec := content.ActivityRecord{
		ID:          e.ids.Generate(),
		SampledText: text,
		ObservedAt:  now,
		Matched:     ok,
	}
	e.activity.Add(rec)
	if !ok {
		return rec, content.Suggestion{}, false
	}

	sug := content.Suggestion{
		ID:         e.ids.Generate(),
		Kind:       m.Kind,
		Body:       m.Body,
		Caption:    m.Caption,
		Confidence: m.Confidence,
		CreatedAt:  now,
		Song:       m.Song,
	}
	if !e.queue.Add(sug) {
		e.logger.Debug("duplicate suggestion dropped", "caption", sug.Caption)
		return rec, content.Suggestion{}, false
	}
	e.logger.Debug("suggestion queued", "caption", sug.Caption, "confidence", sug.Confidence)
	return rec, sug, true
}

func (e *Engine) journal(rec content.ActivityRecord) {
	if e.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := e.sink.RecordActivity(ctx, rec); err != nil {
		e.logger.Warn("activity journal write failed", "id", rec.ID, "error", err)
	}
}

// Accept removes the suggestion with the given id and returns it so the
// caller can project it.
func (e *Engine) Accept(id string) (content.Suggestion, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Remove(id)
}

// Reject discards the suggestion with the given id.
func (e *Engine) Reject(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.queue.Remove(id)
	return ok
}

// Suggestions returns the pending suggestions, newest first.
func (e *Engine) Suggestions() []content.Suggestion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Items()
}

// Activity returns the activity log, newest first.
func (e *Engine) Activity() []content.ActivityRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activity.Items()
}

// ClearActivity empties the activity log.
func (e *Engine) ClearActivity() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activity.Clear()
}

// Snapshot returns a consistent copy of the engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Listening:   e.listening,
		Processing:  e.processing,
		Suggestions: e.queue.Items(),
		Activity:    e.activity.Items(),
	}
}

func (e *Engine) observersLocked() []func(Event) {
	if len(e.observers) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(e.observers))
	for id := range e.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(Event), len(ids))
	for i, id := range ids {
		out[i] = e.observers[id]
	}
	return out
}

func emit(obs []func(Event), ev Event) {
	for _, fn := range obs {
		fn(ev)
	}
}
