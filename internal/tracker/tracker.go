// Package tracker maintains bonding curve lifecycle state keyed by mint.
package tracker

import (
	"sort"
	"sync"
	"time"

	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/idhash"
)

// DefaultMaxQueuedEvents bounds the queue returned by DrainEvents.
const DefaultMaxQueuedEvents = 100

// Options configures a Tracker.
type Options struct {
	Target              float64 // Default: domain.DefaultTargetQuote
	NearCompletionRatio float64 // Default: domain.DefaultNearCompletionRatio
	MaxQueuedEvents     int     // Default: 100; oldest events are dropped first
	// TradeTracking enables ApplyTrade. Disabled by default.
	TradeTracking bool
	Now           func() time.Time
}

// Tracker is the registry of curve states. Mutations are expected from a
// single goroutine; queries may run concurrently.
type Tracker struct {
	mu     sync.RWMutex
	opts   Options
	curves map[string]*domain.CurveState
	events []domain.Event
}

// New creates a tracker, filling zero options with defaults.
func New(opts Options) *Tracker {
	if opts.Target <= 0 {
		opts.Target = domain.DefaultTargetQuote
	}
	if opts.NearCompletionRatio <= 0 {
		opts.NearCompletionRatio = domain.DefaultNearCompletionRatio
	}
	if opts.MaxQueuedEvents <= 0 {
		opts.MaxQueuedEvents = DefaultMaxQueuedEvents
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Tracker{
		opts:   opts,
		curves: make(map[string]*domain.CurveState),
	}
}

// RegisterLaunch creates the curve state for launch.Mint if absent and queues
// a launch event. Returns the state and whether it was created.
func (t *Tracker) RegisterLaunch(signature string, launch domain.Launch) (*domain.CurveState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.curves[launch.Mint]; ok {
		return existing.Clone(), false
	}

	now := t.now()
	createdAt := launch.Timestamp
	if createdAt == 0 {
		createdAt = now
	}

	state := &domain.CurveState{
		Mint:         launch.Mint,
		Name:         launch.Name,
		Symbol:       launch.Symbol,
		URI:          launch.URI,
		Source:       launch.Source,
		BondingCurve: launch.BondingCurve,
		Pool:         launch.Pool,
		Creator:      launch.Creator,
		Target:       t.opts.Target,
		Active:       true,
		CreatedAt:    createdAt,
		LastActivity: now,
	}
	t.curves[launch.Mint] = state

	l := launch
	t.push(domain.Event{
		Kind:      domain.EventLaunch,
		Priority:  domain.PriorityNormal,
		Mint:      launch.Mint,
		Signature: signature,
		Timestamp: now,
		Launch:    &l,
	})

	return state.Clone(), true
}

// ApplyTrade updates reserves and progress from trade. It is a no-op returning
// false when trade tracking is disabled, the mint is unknown, or the curve has
// completed. Crossing the near-completion threshold queues a one-shot alert.
func (t *Tracker) ApplyTrade(signature string, trade domain.Trade) bool {
	if !t.opts.TradeTracking {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.curves[trade.Mint]
	if !ok || state.Completed {
		return false
	}

	state.VirtualQuoteReserves = trade.VirtualQuoteReserves
	state.VirtualBaseReserves = trade.VirtualBaseReserves
	state.RealQuoteReserves = trade.RealQuoteReserves
	state.RealBaseReserves = trade.RealBaseReserves
	state.Progress = domain.ComputeProgress(trade.RealQuoteReserves, state.Target)
	state.TradeCount++
	state.LastActivity = t.now()

	tr := trade
	t.push(domain.Event{
		Kind:      domain.EventTrade,
		Priority:  domain.PriorityLow,
		Mint:      trade.Mint,
		Signature: signature,
		Timestamp: state.LastActivity,
		Trade:     &tr,
	})

	if !state.NearCompletion && state.Progress >= t.opts.NearCompletionRatio*100 {
		state.NearCompletion = true
		t.push(domain.Event{
			Kind:      domain.EventNearCompletion,
			Priority:  domain.PriorityHigh,
			Mint:      trade.Mint,
			Timestamp: state.LastActivity,
			Curve:     state.Clone(),
		})
	}
	return true
}

// MarkCompleted moves the curve for mint to its terminal state and queues a
// high-priority completion event. Unknown or already completed mints are a
// no-op returning false.
func (t *Tracker) MarkCompleted(signature string, completion domain.Completion) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.curves[completion.Mint]
	if !ok || state.Completed {
		return false
	}

	state.Completed = true
	state.Active = false
	state.Progress = 100
	state.LastActivity = t.now()

	c := completion
	t.push(domain.Event{
		Kind:       domain.EventCompletion,
		Priority:   domain.PriorityHigh,
		Mint:       completion.Mint,
		Signature:  signature,
		Timestamp:  state.LastActivity,
		Completion: &c,
		Curve:      state.Clone(),
	})
	return true
}

// Get returns a copy of the state for mint.
func (t *Tracker) Get(mint string) (*domain.CurveState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, ok := t.curves[mint]
	if !ok {
		return nil, false
	}
	return state.Clone(), true
}

// All returns copies of every tracked state, most progressed first.
func (t *Tracker) All() []domain.CurveState {
	return t.collect(func(*domain.CurveState) bool { return true })
}

// ActiveByProgress returns active, uncompleted curves by descending progress.
func (t *Tracker) ActiveByProgress() []domain.CurveState {
	return t.collect(func(s *domain.CurveState) bool {
		return s.Active && !s.Completed
	})
}

// NearCompletion returns active curves flagged near completion by descending progress.
func (t *Tracker) NearCompletion() []domain.CurveState {
	return t.collect(func(s *domain.CurveState) bool {
		return s.Active && !s.Completed && s.NearCompletion
	})
}

// Len returns the number of tracked curves.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.curves)
}

// DrainEvents returns queued events in order and empties the queue.
func (t *Tracker) DrainEvents() []domain.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.events
	t.events = nil
	return out
}

// HighPriority returns the queued high-priority events without removing them.
func (t *Tracker) HighPriority() []domain.Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []domain.Event
	for _, e := range t.events {
		if e.Priority == domain.PriorityHigh {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops all state and queued events.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.curves = make(map[string]*domain.CurveState)
	t.events = nil
}

func (t *Tracker) collect(keep func(*domain.CurveState) bool) []domain.CurveState {
	t.mu.RLock()
	out := make([]domain.CurveState, 0, len(t.curves))
	for _, s := range t.curves {
		if keep(s) {
			out = append(out, *s)
		}
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Progress != out[j].Progress {
			return out[i].Progress > out[j].Progress
		}
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].Mint < out[j].Mint
	})
	return out
}

// push appends e, dropping the oldest events beyond the bound. Caller holds mu.
func (t *Tracker) push(e domain.Event) {
	e.ID = idhash.ComputeEventID(e.Kind, e.Signature, e.Mint, 0)
	t.events = append(t.events, e)
	if over := len(t.events) - t.opts.MaxQueuedEvents; over > 0 {
		t.events = append(t.events[:0:0], t.events[over:]...)
	}
}

func (t *Tracker) now() int64 {
	return t.opts.Now().UnixMilli()
}
