package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"solana-launch-monitor/internal/decoder"
	"solana-launch-monitor/internal/dedup"
	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/enrichment"
	"solana-launch-monitor/internal/idhash"
	"solana-launch-monitor/internal/observability"
	"solana-launch-monitor/internal/publish"
	"solana-launch-monitor/internal/solana"
	"solana-launch-monitor/internal/storage"
	"solana-launch-monitor/internal/throttle"
	"solana-launch-monitor/internal/tracker"
)

// Default monitor settings.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultEventBuffer    = 256
	DefaultInitCacheSize  = 256
	DefaultSinkBuffer     = 1024

	sinkTimeout    = 5 * time.Second
	drainTimeout   = 5 * time.Second
	uptimeInterval = time.Second
)

var (
	// ErrAlreadyStarted is returned by Start on a monitor that has run before.
	ErrAlreadyStarted = errors.New("monitor already started")

	// ErrNotStarted is returned by Wait on a monitor that was never started.
	ErrNotStarted = errors.New("monitor not started")

	// ErrFeedClosed is returned by Run when the log source ends on its own.
	ErrFeedClosed = errors.New("log feed closed")
)

// MonitorOptions configures a Monitor. Source and RPC are required.
type MonitorOptions struct {
	Source LogSource
	RPC    solana.RPCClient

	Parser     *decoder.Parser   // Default: decoder.NewParser(nil)
	Guard      *dedup.Guard      // Default: dedup.NewGuard()
	Tracker    *tracker.Tracker  // Default: tracker.New(tracker.Options{})
	Enrichment *enrichment.Queue // Default: enrichment.NewQueue(RPC, ...)

	ThrottleWindow    time.Duration // Default: throttle.DefaultWindow
	LaunchHistory     int           // Default: 200
	CompletionHistory int           // Default: 100
	EnrichmentHistory int           // Default: 50
	EventBuffer       int           // Default: 256; oldest unread events are dropped when full
	InitCacheSize     int           // Default: 256 initialize payloads awaiting resolution
	ConnectTimeout    time.Duration // Default: 10s for the startup GetSlot check

	// Optional sinks, written off the processing loop.
	EventStore    storage.EventStore
	SnapshotStore storage.SnapshotStore
	Publisher     publish.Publisher

	Logger *zap.Logger
	Now    func() time.Time
}

// Stats is a point-in-time view of the monitor counters.
type Stats struct {
	Connected   bool
	Monitoring  bool
	StartedAt   time.Time
	Uptime      time.Duration
	LastEventAt time.Time

	Notifications      int64
	Duplicates         int64
	FailedTransactions int64
	DecodeErrors       int64
	Launches           int64
	Trades             int64
	Completions        int64
	Initializes        int64
	Buys               int64
	Enrichments        int64
	EnrichmentFailures int64
	DroppedEvents      int64

	PendingEnrichments int
	TrackedCurves      int
	NearCompletion     int
}

type sinkItem struct {
	event     *domain.Event
	snapshots []domain.CurveState
	at        int64 // ms
}

// Monitor consumes program log notifications, keeps curve state and emits
// domain events. A Monitor runs once: after Stop it cannot be restarted.
type Monitor struct {
	source     LogSource
	rpc        solana.RPCClient
	parser     *decoder.Parser
	guard      *dedup.Guard
	tracker    *tracker.Tracker
	enrichment *enrichment.Queue
	emitter    *throttle.Emitter[[]domain.CurveState]

	eventStore    storage.EventStore
	snapshotStore storage.SnapshotStore
	publisher     publish.Publisher

	logger         *zap.Logger
	now            func() time.Time
	connectTimeout time.Duration

	events    chan domain.Event
	snapshots chan []domain.CurveState
	sinkCh    chan sinkItem
	resetCh   chan chan struct{}

	launches    *history[domain.Launch]
	completions *history[domain.Completion]
	enrichments *history[domain.LaunchpadBuy]

	// Owned by the loop goroutine.
	initCache     map[string]domain.MintParams
	initOrder     []string
	initCacheSize int

	statsMu sync.RWMutex
	stats   Stats

	runMu    sync.Mutex
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	feed     <-chan domain.RawNotification
	loopDone chan struct{}
	pumpDone chan struct{}
	sinkDone chan struct{}
	loopErr  error
}

// NewMonitor creates a monitor, filling zero options with defaults.
func NewMonitor(opts MonitorOptions) (*Monitor, error) {
	if opts.Source == nil {
		return nil, errors.New("monitor: log source is required")
	}
	if opts.RPC == nil {
		return nil, errors.New("monitor: rpc client is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Parser == nil {
		opts.Parser = decoder.NewParser(nil)
	}
	if opts.Guard == nil {
		opts.Guard = dedup.NewGuard()
	}
	if opts.Tracker == nil {
		opts.Tracker = tracker.New(tracker.Options{})
	}
	if opts.Enrichment == nil {
		opts.Enrichment = enrichment.NewQueue(opts.RPC, enrichment.Options{Logger: logger})
	}
	if opts.ThrottleWindow <= 0 {
		opts.ThrottleWindow = throttle.DefaultWindow
	}
	if opts.LaunchHistory <= 0 {
		opts.LaunchHistory = DefaultLaunchHistory
	}
	if opts.CompletionHistory <= 0 {
		opts.CompletionHistory = DefaultCompletionHistory
	}
	if opts.EnrichmentHistory <= 0 {
		opts.EnrichmentHistory = DefaultEnrichmentHistory
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	if opts.InitCacheSize <= 0 {
		opts.InitCacheSize = DefaultInitCacheSize
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Monitor{
		source:         opts.Source,
		rpc:            opts.RPC,
		parser:         opts.Parser,
		guard:          opts.Guard,
		tracker:        opts.Tracker,
		enrichment:     opts.Enrichment,
		emitter:        throttle.New[[]domain.CurveState](opts.ThrottleWindow),
		eventStore:     opts.EventStore,
		snapshotStore:  opts.SnapshotStore,
		publisher:      opts.Publisher,
		logger:         logger.Named("monitor"),
		now:            opts.Now,
		connectTimeout: opts.ConnectTimeout,
		events:         make(chan domain.Event, opts.EventBuffer),
		snapshots:      make(chan []domain.CurveState, 1),
		sinkCh:         make(chan sinkItem, DefaultSinkBuffer),
		resetCh:        make(chan chan struct{}),
		launches:       newHistory[domain.Launch](opts.LaunchHistory),
		completions:    newHistory[domain.Completion](opts.CompletionHistory),
		enrichments:    newHistory[domain.LaunchpadBuy](opts.EnrichmentHistory),
		initCache:      make(map[string]domain.MintParams),
		initCacheSize:  opts.InitCacheSize,
	}, nil
}

// Start checks RPC connectivity, subscribes to the log source and starts
// processing in the background. A failed connectivity check is fatal.
func (m *Monitor) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.started {
		return ErrAlreadyStarted
	}

	checkCtx, cancelCheck := context.WithTimeout(ctx, m.connectTimeout)
	slot, err := m.rpc.GetSlot(checkCtx)
	cancelCheck()
	if err != nil {
		return fmt.Errorf("rpc connectivity check: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	feed, err := m.source.Subscribe(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe: %w", err)
	}

	m.started = true
	m.cancel = cancel
	m.feed = feed
	m.loopDone = make(chan struct{})
	m.pumpDone = make(chan struct{})
	m.sinkDone = make(chan struct{})

	m.statsMu.Lock()
	m.stats.Connected = true
	m.stats.Monitoring = true
	m.stats.StartedAt = m.now()
	m.statsMu.Unlock()

	m.enrichment.Start(runCtx)
	go m.pumpSnapshots()
	go m.runSinks()
	go m.loop(runCtx)

	m.logger.Info("monitor started", zap.Int64("slot", slot))
	return nil
}

// Run starts the monitor and blocks until ctx is done or the feed ends,
// then stops it. Cancellation is a clean shutdown and returns nil.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	return m.Wait()
}

// Wait blocks until a started monitor's context is done or its feed ends,
// then stops it. It returns ErrFeedClosed when the feed ended on its own.
func (m *Monitor) Wait() error {
	m.runMu.Lock()
	started, done := m.started, m.loopDone
	m.runMu.Unlock()
	if !started {
		return ErrNotStarted
	}
	<-done
	m.Stop()
	return m.loopErr
}

// Stop halts processing, tears down the subscription and closes the Events
// and Snapshots channels. Safe to call more than once.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	if !m.started || m.stopped {
		m.runMu.Unlock()
		return
	}
	m.stopped = true
	m.runMu.Unlock()

	m.cancel()
	<-m.loopDone
	m.drainFeed()

	m.enrichment.Stop()
	m.emitter.Stop()
	<-m.pumpDone
	close(m.sinkCh)
	<-m.sinkDone
	close(m.events)

	m.statsMu.Lock()
	m.stats.Connected = false
	m.stats.Monitoring = false
	m.statsMu.Unlock()

	m.logger.Info("monitor stopped")
}

// drainFeed consumes the source until it closes so its teardown can finish.
func (m *Monitor) drainFeed() {
	timeout := time.NewTimer(drainTimeout)
	defer timeout.Stop()
	for {
		select {
		case _, ok := <-m.feed:
			if !ok {
				return
			}
		case <-timeout.C:
			m.logger.Warn("log source did not close in time")
			return
		}
	}
}

// Reset clears curve state, dedup sets, histories and counters. While
// running the reset is applied on the processing goroutine.
func (m *Monitor) Reset() {
	m.runMu.Lock()
	running := m.started && !m.stopped
	done := m.loopDone
	m.runMu.Unlock()

	if running {
		ack := make(chan struct{})
		select {
		case m.resetCh <- ack:
			<-ack
			return
		case <-done:
		}
	}
	m.reset()
}

func (m *Monitor) reset() {
	m.tracker.Reset()
	m.guard.Clear()
	m.launches.clear()
	m.completions.clear()
	m.enrichments.clear()
	m.initCache = make(map[string]domain.MintParams)
	m.initOrder = nil

	m.statsMu.Lock()
	m.stats = Stats{
		Connected:  m.stats.Connected,
		Monitoring: m.stats.Monitoring,
		StartedAt:  m.stats.StartedAt,
		Uptime:     m.stats.Uptime,
	}
	m.statsMu.Unlock()

	m.emitter.Notify([]domain.CurveState{})
	observability.UpdateCurves(0, 0)
	m.logger.Info("monitor state reset")
}

// Events returns emitted domain events. It is closed by Stop.
func (m *Monitor) Events() <-chan domain.Event {
	return m.events
}

// Snapshots returns throttled curve lists ordered by progress. Only the
// latest list is kept for a slow reader. It is closed by Stop.
func (m *Monitor) Snapshots() <-chan []domain.CurveState {
	return m.snapshots
}

// Curves returns active curves ordered by progress.
func (m *Monitor) Curves() []domain.CurveState {
	return m.tracker.ActiveByProgress()
}

// NearCompletion returns active curves past the near-completion threshold.
func (m *Monitor) NearCompletion() []domain.CurveState {
	return m.tracker.NearCompletion()
}

// RecentLaunches returns retained launches, newest first.
func (m *Monitor) RecentLaunches() []domain.Launch {
	return m.launches.list()
}

// RecentCompletions returns retained completions, newest first.
func (m *Monitor) RecentCompletions() []domain.Completion {
	return m.completions.list()
}

// RecentEnrichments returns retained resolved buys, newest first.
func (m *Monitor) RecentEnrichments() []domain.LaunchpadBuy {
	return m.enrichments.list()
}

// Stats returns a snapshot of the monitor counters.
func (m *Monitor) Stats() Stats {
	m.statsMu.RLock()
	s := m.stats
	m.statsMu.RUnlock()

	s.EnrichmentFailures = m.enrichment.Failures()
	s.PendingEnrichments = m.enrichment.Pending()
	s.TrackedCurves = m.tracker.Len()
	s.NearCompletion = len(m.tracker.NearCompletion())
	return s
}

func (m *Monitor) bump(fn func(s *Stats)) {
	m.statsMu.Lock()
	fn(&m.stats)
	m.statsMu.Unlock()
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.loopDone)

	uptime := time.NewTicker(uptimeInterval)
	defer uptime.Stop()

	results := m.enrichment.Results()
	for {
		select {
		case <-ctx.Done():
			return

		case n, ok := <-m.feed:
			if !ok {
				m.loopErr = ErrFeedClosed
				m.bump(func(s *Stats) { s.Connected = false })
				m.logger.Warn("log feed closed")
				return
			}
			m.handleNotification(n)

		case res, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			m.handleEnrichment(res)

		case ack := <-m.resetCh:
			m.reset()
			close(ack)

		case <-uptime.C:
			m.statsMu.Lock()
			m.stats.Uptime = m.now().Sub(m.stats.StartedAt)
			up := m.stats.Uptime
			m.statsMu.Unlock()
			observability.UpdateUptime(up.Seconds())
		}
	}
}

func (m *Monitor) handleNotification(n domain.RawNotification) {
	observability.RecordNotification(n.Program)
	m.bump(func(s *Stats) { s.Notifications++ })

	if n.Failed {
		observability.RecordFailedTransaction()
		m.bump(func(s *Stats) { s.FailedTransactions++ })
		return
	}
	if !m.guard.MarkProcessed(n.Signature) {
		observability.RecordDuplicate()
		m.bump(func(s *Stats) { s.Duplicates++ })
		return
	}

	log := m.logger.With(zap.String("signature", n.Signature))
	needsEnrichment := false

	for _, res := range m.parser.Parse(n.Logs) {
		if res.Err != nil {
			tag := "unknown"
			var de *decoder.DecodeError
			if errors.As(res.Err, &de) {
				tag = de.Tag.String()
			}
			observability.RecordDecodeError(tag)
			m.bump(func(s *Stats) { s.DecodeErrors++ })
			log.Debug("decode failed", zap.Int("line", res.Line), zap.Error(res.Err))
			continue
		}

		d := res.Decoded
		switch {
		case d.Tag == decoder.TagCreate:
			launch := *d.Launch
			launch.Source = domain.SourcePumpFun
			launch.Timestamp = n.Received
			m.registerLaunch(n.Signature, launch)

		case d.Tag == decoder.TagTrade:
			m.bump(func(s *Stats) { s.Trades++ })
			m.tracker.ApplyTrade(n.Signature, *d.Trade)

		case d.Tag == decoder.TagComplete:
			if m.tracker.MarkCompleted(n.Signature, *d.Completion) {
				m.completions.add(*d.Completion)
				m.bump(func(s *Stats) { s.Completions++ })
			} else {
				log.Debug("completion for untracked curve", zap.String("mint", d.Completion.Mint))
			}

		case d.Tag == decoder.TagInitialize:
			m.bump(func(s *Stats) { s.Initializes++ })
			m.cacheInit(n.Signature, d.Initialize.Mint)
			m.dispatch(domain.Event{
				ID:         idhash.ComputeEventID(domain.EventLaunchpadInitialize, n.Signature, "", res.Line),
				Kind:       domain.EventLaunchpadInitialize,
				Priority:   domain.PriorityNormal,
				Signature:  n.Signature,
				Slot:       n.Slot,
				Timestamp:  m.now().UnixMilli(),
				Initialize: d.Initialize,
			})
			needsEnrichment = true

		case d.Tag.IsBuy():
			m.bump(func(s *Stats) { s.Buys++ })
			needsEnrichment = true
		}
	}

	if !needsEnrichment {
		for _, ix := range decoder.DetectInstructions(n.Logs) {
			if ix.Tag.IsBuy() {
				m.bump(func(s *Stats) { s.Buys++ })
			}
			if ix.Tag.IsBuy() || ix.Tag == decoder.TagInitialize {
				needsEnrichment = true
				break
			}
		}
	}

	if needsEnrichment && m.enrichment.Enqueue(n.Signature) {
		log.Debug("queued for enrichment")
	}

	m.flush(n.Slot)
}

func (m *Monitor) handleEnrichment(res enrichment.Result) {
	buy := res.Buy
	m.enrichments.add(buy)
	m.bump(func(s *Stats) { s.Enrichments++ })

	m.dispatch(domain.Event{
		ID:        idhash.ComputeEventID(domain.EventLaunchpadBuy, buy.Signature, buy.Mint, 0),
		Kind:      domain.EventLaunchpadBuy,
		Priority:  domain.PriorityLow,
		Mint:      buy.Mint,
		Signature: buy.Signature,
		Slot:      res.Slot,
		Timestamp: m.now().UnixMilli(),
		Buy:       &buy,
	})

	launch := domain.Launch{
		Mint:    buy.Mint,
		Pool:    buy.Pool,
		Creator: buy.Buyer,
		Source:  domain.SourceLaunchpad,
	}
	if res.BlockTime > 0 {
		launch.Timestamp = res.BlockTime * 1000
	}
	if meta, ok := m.takeInit(buy.Signature); ok {
		launch.Name = meta.Name
		launch.Symbol = meta.Symbol
		launch.URI = meta.URI
	}
	m.registerLaunch(buy.Signature, launch)

	m.flush(res.Slot)
}

// registerLaunch tracks launch only the first time its mint is seen.
func (m *Monitor) registerLaunch(signature string, launch domain.Launch) {
	if !m.guard.MarkFirstSeen(launch.Mint) {
		return
	}
	if _, created := m.tracker.RegisterLaunch(signature, launch); created {
		m.bump(func(s *Stats) { s.Launches++ })
	}
}

func (m *Monitor) cacheInit(signature string, params domain.MintParams) {
	if _, ok := m.initCache[signature]; !ok {
		m.initOrder = append(m.initOrder, signature)
	}
	m.initCache[signature] = params
	for len(m.initOrder) > m.initCacheSize {
		delete(m.initCache, m.initOrder[0])
		m.initOrder = m.initOrder[1:]
	}
}

func (m *Monitor) takeInit(signature string) (domain.MintParams, bool) {
	params, ok := m.initCache[signature]
	if !ok {
		return domain.MintParams{}, false
	}
	delete(m.initCache, signature)
	for i, sig := range m.initOrder {
		if sig == signature {
			m.initOrder = append(m.initOrder[:i], m.initOrder[i+1:]...)
			break
		}
	}
	return params, true
}

// flush dispatches queued tracker events and, when any were queued,
// schedules a throttled curve list.
func (m *Monitor) flush(slot int64) {
	events := m.tracker.DrainEvents()
	for _, e := range events {
		if e.Slot == 0 {
			e.Slot = slot
		}
		m.dispatch(e)
	}
	if len(events) == 0 {
		return
	}

	curves := m.tracker.ActiveByProgress()
	m.emitter.Notify(curves)
	observability.UpdateCurves(m.tracker.Len(), len(m.tracker.NearCompletion()))
}

func (m *Monitor) dispatch(e domain.Event) {
	if e.ID == "" {
		e.ID = idhash.ComputeEventID(e.Kind, e.Signature, e.Mint, 0)
	}
	observability.RecordEvent(string(e.Kind), e.Timestamp/1000)

	if e.Kind == domain.EventLaunch && e.Launch != nil {
		m.launches.add(*e.Launch)
	}

	select {
	case m.events <- e:
	default:
		// Drop the oldest unread event to make room.
		select {
		case <-m.events:
		default:
		}
		select {
		case m.events <- e:
		default:
		}
		m.bump(func(s *Stats) { s.DroppedEvents++ })
	}
	m.bump(func(s *Stats) { s.LastEventAt = time.UnixMilli(e.Timestamp) })

	if m.eventStore == nil && m.publisher == nil {
		return
	}
	select {
	case m.sinkCh <- sinkItem{event: &e}:
	default:
		m.logger.Warn("sink queue full, event not persisted", zap.String("event_id", e.ID))
	}
}

func (m *Monitor) pumpSnapshots() {
	defer close(m.pumpDone)
	defer close(m.snapshots)

	for curves := range m.emitter.C() {
		observability.RecordSnapshot()

		select {
		case m.snapshots <- curves:
		default:
			select {
			case <-m.snapshots:
			default:
			}
			select {
			case m.snapshots <- curves:
			default:
			}
		}

		if m.snapshotStore == nil || len(curves) == 0 {
			continue
		}
		select {
		case m.sinkCh <- sinkItem{snapshots: curves, at: m.now().UnixMilli()}:
		default:
			m.logger.Warn("sink queue full, snapshot not persisted")
		}
	}
}

// runSinks writes events and snapshots to the configured stores and
// publisher until the sink queue is closed.
func (m *Monitor) runSinks() {
	defer close(m.sinkDone)
	for item := range m.sinkCh {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		if item.event != nil {
			m.storeEvent(ctx, item.event)
			m.publishEvent(ctx, item.event)
		}
		if len(item.snapshots) > 0 {
			m.storeSnapshots(ctx, item.snapshots, item.at)
		}
		cancel()
	}
}

func (m *Monitor) storeEvent(ctx context.Context, e *domain.Event) {
	if m.eventStore == nil {
		return
	}
	start := time.Now()
	err := m.eventStore.Insert(ctx, e)
	observability.RecordDBQuery("events", "insert", time.Since(start).Seconds(), err)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		m.logger.Warn("store event failed", zap.String("event_id", e.ID), zap.Error(err))
	}
}

func (m *Monitor) publishEvent(ctx context.Context, e *domain.Event) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(ctx, e); err != nil {
		m.logger.Warn("publish event failed", zap.String("event_id", e.ID), zap.Error(err))
	}
}

func (m *Monitor) storeSnapshots(ctx context.Context, curves []domain.CurveState, at int64) {
	if m.snapshotStore == nil {
		return
	}
	batch := make([]*domain.CurveSnapshot, 0, len(curves))
	for _, c := range curves {
		s := domain.NewCurveSnapshot(c, at)
		s.SnapshotID = idhash.ComputeSnapshotID(c.Mint, at)
		batch = append(batch, s)
	}
	start := time.Now()
	err := m.snapshotStore.InsertBulk(ctx, batch)
	observability.RecordDBQuery("snapshots", "insert_bulk", time.Since(start).Seconds(), err)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		m.logger.Warn("store snapshots failed", zap.Int("count", len(batch)), zap.Error(err))
	}
}
