// Package monitor aggregates selector cache metrics and flags slow or inefficient caches.
package monitor

import (
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guttosm/selectorcache/internal/logger"
	"github.com/guttosm/selectorcache/internal/metrics"
	"github.com/guttosm/selectorcache/internal/selector"
)

// ErrCollection marks a selector whose metrics could not be read during a pass.
var ErrCollection = errors.New("metrics collection failed")

// Source exposes the metrics of a registered cache.
type Source interface {
	Metrics() selector.Metrics
}

// Resetter is implemented by sources whose counters can be cleared.
type Resetter interface {
	ResetMetrics()
}

// MetricsFunc adapts a function to Source.
type MetricsFunc func() selector.Metrics

// Metrics calls f.
func (f MetricsFunc) Metrics() selector.Metrics {
	return f()
}

// State represents the state of the monitor.
type State int

const (
	// StateDisabled means no periodic collection runs.
	StateDisabled State = iota
	// StateEnabled means a timer triggers a collection pass every interval.
	StateEnabled
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateEnabled:
		return "enabled"
	default:
		return "unknown"
	}
}

// Config holds monitor configuration.
type Config struct {
	// Interval is the collection period used when Enable receives a non-positive value.
	Interval time.Duration
	// SlowThreshold flags caches whose average call time exceeds it.
	SlowThreshold time.Duration
	// InefficientMinCalls is the call count a cache must exceed before it can be flagged inefficient.
	InefficientMinCalls int64
	// InefficientTier is the fraction of active caches, ranked by hit ratio, forming the lowest
	// tier. The tier is rounded up, so it holds at least one cache whenever any cache is active.
	InefficientTier float64
	// InefficientMaxHitRatio is the hit ratio a cache in the lowest tier must stay below to be
	// flagged, so a lone healthy cache is never reported.
	InefficientMaxHitRatio float64
	// HistorySize bounds the per-selector history.
	HistorySize int
}

// DefaultConfig returns a default monitor configuration.
func DefaultConfig() Config {
	return Config{
		Interval:               5 * time.Second,
		SlowThreshold:          time.Millisecond,
		InefficientMinCalls:    10,
		InefficientTier:        0.25,
		InefficientMaxHitRatio: 0.5,
		HistorySize:            100,
	}
}

// SelectorStatus is the per-selector result of a collection pass.
type SelectorStatus struct {
	Name        string           `json:"name"`
	Metrics     selector.Metrics `json:"metrics"`
	HitRatio    float64          `json:"hit_ratio"`
	Active      bool             `json:"active"`
	Slow        bool             `json:"slow"`
	Inefficient bool             `json:"inefficient"`
}

// CollectionFailure records a selector skipped during a pass.
type CollectionFailure struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
	// Message is Err rendered for JSON consumers.
	Message string `json:"error"`
}

// Snapshot is the aggregate produced by a collection pass.
type Snapshot struct {
	Timestamp            time.Time           `json:"timestamp"`
	TotalCalls           int64               `json:"total_calls"`
	TotalHits            int64               `json:"total_hits"`
	TotalMisses          int64               `json:"total_misses"`
	AverageExecutionTime time.Duration       `json:"average_execution_time"`
	ActiveSelectors      int                 `json:"active_selectors"`
	Selectors            []SelectorStatus    `json:"selectors"`
	SlowSelectors        []string            `json:"slow_selectors"`
	InefficientSelectors []string            `json:"inefficient_selectors"`
	Failures             []CollectionFailure `json:"failures"`
}

// HistoryPoint is one entry of a selector's history.
type HistoryPoint struct {
	Timestamp time.Time        `json:"timestamp"`
	Metrics   selector.Metrics `json:"metrics"`
}

// PerformanceMonitor polls registered caches and publishes periodic snapshots.
//
// Collection only reads atomic counters, so it never blocks a cache caller.
type PerformanceMonitor struct {
	cfg Config
	log zerolog.Logger

	mu          sync.RWMutex
	sources     map[string]Source
	previous    map[string]int64
	history     map[string][]HistoryPoint
	current     Snapshot
	subscribers map[uuid.UUID]func(Snapshot)

	collectMu sync.Mutex

	lifecycleMu sync.Mutex
	state       State
	interval    time.Duration
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// New creates a disabled monitor.
func New(cfg Config) *PerformanceMonitor {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = def.SlowThreshold
	}
	if cfg.InefficientMinCalls <= 0 {
		cfg.InefficientMinCalls = def.InefficientMinCalls
	}
	if cfg.InefficientTier <= 0 || cfg.InefficientTier > 1 {
		cfg.InefficientTier = def.InefficientTier
	}
	if cfg.InefficientMaxHitRatio <= 0 || cfg.InefficientMaxHitRatio > 1 {
		cfg.InefficientMaxHitRatio = def.InefficientMaxHitRatio
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = def.HistorySize
	}

	return &PerformanceMonitor{
		cfg:         cfg,
		log:         logger.Component("selector_monitor"),
		sources:     make(map[string]Source),
		previous:    make(map[string]int64),
		history:     make(map[string][]HistoryPoint),
		subscribers: make(map[uuid.UUID]func(Snapshot)),
	}
}

var (
	defaultMonitor     *PerformanceMonitor
	defaultMonitorOnce sync.Once
)

// Default returns the process-wide monitor, creating it with DefaultConfig on first use.
func Default() *PerformanceMonitor {
	defaultMonitorOnce.Do(func() {
		defaultMonitor = New(DefaultConfig())
	})
	return defaultMonitor
}

// Enable starts periodic collection. A running timer is replaced.
func (m *PerformanceMonitor) Enable(interval time.Duration) {
	if interval <= 0 {
		interval = m.cfg.Interval
	}

	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	m.stopLocked()

	m.stopCh = make(chan struct{})
	m.state = StateEnabled
	m.interval = interval
	m.wg.Add(1)
	go m.run(interval, m.stopCh)

	m.log.Info().Dur("interval", interval).Msg("Selector monitor enabled")
}

// Disable stops periodic collection and waits for the timer goroutine to exit.
func (m *PerformanceMonitor) Disable() {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	if m.state == StateDisabled {
		return
	}
	m.stopLocked()
	m.log.Info().Msg("Selector monitor disabled")
}

func (m *PerformanceMonitor) stopLocked() {
	if m.stopCh != nil {
		close(m.stopCh)
		m.wg.Wait()
		m.stopCh = nil
	}
	m.state = StateDisabled
	m.interval = 0
}

// State returns the current lifecycle state.
func (m *PerformanceMonitor) State() State {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()
	return m.state
}

// Enabled reports whether periodic collection is running.
func (m *PerformanceMonitor) Enabled() bool {
	return m.State() == StateEnabled
}

func (m *PerformanceMonitor) run(interval time.Duration, stopCh <-chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Collect()
		case <-stopCh:
			return
		}
	}
}

// Register adds or replaces a cache under name.
func (m *PerformanceMonitor) Register(name string, source Source) {
	if source == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sources[name] = source
	delete(m.previous, name)
	m.log.Debug().Str("selector", name).Msg("Selector registered")
}

// Unregister removes a cache and its history.
func (m *PerformanceMonitor) Unregister(name string) {
	m.mu.Lock()
	_, ok := m.sources[name]
	delete(m.sources, name)
	delete(m.previous, name)
	delete(m.history, name)
	m.mu.Unlock()

	if ok {
		metrics.DeleteSelectorGauges(name)
		m.log.Debug().Str("selector", name).Msg("Selector unregistered")
	}
}

// Registered returns the registered names in sorted order.
func (m *PerformanceMonitor) Registered() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.sources))
	for name := range m.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subscribe registers fn to receive every snapshot. The returned function unsubscribes.
func (m *PerformanceMonitor) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	id := uuid.New()

	m.mu.Lock()
	m.subscribers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subscribers, id)
			m.mu.Unlock()
		})
	}
}

type reading struct {
	name    string
	metrics selector.Metrics
}

// Collect runs one collection pass and returns its snapshot.
//
// A cache whose metrics cannot be read is skipped and listed in Snapshot.Failures;
// the pass always completes.
func (m *PerformanceMonitor) Collect() Snapshot {
	m.collectMu.Lock()
	defer m.collectMu.Unlock()

	m.mu.RLock()
	names := make([]string, 0, len(m.sources))
	sources := make(map[string]Source, len(m.sources))
	previous := make(map[string]int64, len(m.previous))
	for name, src := range m.sources {
		names = append(names, name)
		sources[name] = src
	}
	for name, calls := range m.previous {
		previous[name] = calls
	}
	m.mu.RUnlock()
	sort.Strings(names)

	now := time.Now()
	readings := make([]reading, 0, len(names))
	var failures []CollectionFailure
	for _, name := range names {
		var snapshot selector.Metrics
		err := runSafely(name, func() error {
			snapshot = sources[name].Metrics()
			return nil
		})
		if err != nil {
			failures = append(failures, CollectionFailure{Name: name, Err: err, Message: err.Error()})
			metrics.RecordCollectionFailure(name)
			m.log.Error().Err(err).Str("selector", name).Msg("Skipping selector during collection")
			continue
		}
		readings = append(readings, reading{name: name, metrics: snapshot})
	}

	snap := m.aggregate(now, readings, previous)
	snap.Failures = failures

	m.mu.Lock()
	for _, r := range readings {
		if _, ok := m.sources[r.name]; !ok {
			continue
		}
		m.previous[r.name] = r.metrics.TotalCalls
		m.appendHistory(r.name, HistoryPoint{Timestamp: now, Metrics: r.metrics})
	}
	m.current = snap
	subscribers := make([]func(Snapshot), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subscribers = append(subscribers, fn)
	}
	m.mu.Unlock()

	m.publish(snap)
	for _, fn := range subscribers {
		if err := runSafely("subscriber", func() error {
			fn(snap)
			return nil
		}); err != nil {
			m.log.Error().Err(err).Msg("Selector monitor subscriber failed")
		}
	}
	return snap
}

// aggregate computes totals and classifications from the readings of one pass.
func (m *PerformanceMonitor) aggregate(now time.Time, readings []reading, previous map[string]int64) Snapshot {
	snap := Snapshot{
		Timestamp:            now,
		Selectors:            make([]SelectorStatus, 0, len(readings)),
		SlowSelectors:        []string{},
		InefficientSelectors: []string{},
	}

	var activeAvgSum time.Duration
	var active []int
	for _, r := range readings {
		status := SelectorStatus{
			Name:     r.name,
			Metrics:  r.metrics,
			HitRatio: r.metrics.HitRatio(),
			Active:   r.metrics.TotalCalls > previous[r.name],
			Slow:     r.metrics.TotalCalls > 0 && r.metrics.AverageExecutionTime > m.cfg.SlowThreshold,
		}
		snap.TotalCalls += r.metrics.TotalCalls
		snap.TotalHits += r.metrics.CacheHits
		snap.TotalMisses += r.metrics.CacheMisses
		if status.Active {
			activeAvgSum += r.metrics.AverageExecutionTime
			active = append(active, len(snap.Selectors))
		}
		if status.Slow {
			snap.SlowSelectors = append(snap.SlowSelectors, r.name)
		}
		snap.Selectors = append(snap.Selectors, status)
	}

	snap.ActiveSelectors = len(active)
	if len(active) > 0 {
		snap.AverageExecutionTime = activeAvgSum / time.Duration(len(active))
	}

	// Lowest tier by hit ratio among active caches.
	sort.SliceStable(active, func(i, j int) bool {
		return snap.Selectors[active[i]].HitRatio < snap.Selectors[active[j]].HitRatio
	})
	tier := int(math.Ceil(float64(len(active)) * m.cfg.InefficientTier))
	for _, idx := range active[:tier] {
		status := &snap.Selectors[idx]
		if status.Metrics.TotalCalls > m.cfg.InefficientMinCalls && status.HitRatio < m.cfg.InefficientMaxHitRatio {
			status.Inefficient = true
		}
	}
	for _, status := range snap.Selectors {
		if status.Inefficient {
			snap.InefficientSelectors = append(snap.InefficientSelectors, status.Name)
		}
	}

	return snap
}

func (m *PerformanceMonitor) appendHistory(name string, point HistoryPoint) {
	h := append(m.history[name], point)
	if len(h) > m.cfg.HistorySize {
		h = h[len(h)-m.cfg.HistorySize:]
	}
	m.history[name] = h
}

// publish exports the snapshot to Prometheus and logs flagged selectors.
func (m *PerformanceMonitor) publish(snap Snapshot) {
	metrics.RecordCollection()
	for _, s := range snap.Selectors {
		metrics.UpdateSelectorGauges(s.Name, s.HitRatio, s.Metrics.AverageExecutionTime, s.Metrics.CacheSize, s.Slow, s.Inefficient)
		if s.Slow {
			m.log.Warn().
				Str("selector", s.Name).
				Dur("avg_execution", s.Metrics.AverageExecutionTime).
				Msg("Slow selector")
		}
		if s.Inefficient {
			m.log.Warn().
				Str("selector", s.Name).
				Float64("hit_ratio", s.HitRatio).
				Int64("total_calls", s.Metrics.TotalCalls).
				Msg("Inefficient selector")
		}
	}
}

// CurrentMetrics returns the snapshot of the last collection pass.
func (m *PerformanceMonitor) CurrentMetrics() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SelectorHistory returns the recorded history of name, oldest first.
func (m *PerformanceMonitor) SelectorHistory(name string) []HistoryPoint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h := m.history[name]
	out := make([]HistoryPoint, len(h))
	copy(out, h)
	return out
}

// ResetMetrics clears the counters of every registered cache that supports it.
func (m *PerformanceMonitor) ResetMetrics() {
	m.mu.Lock()
	sources := make(map[string]Source, len(m.sources))
	for name, src := range m.sources {
		sources[name] = src
	}
	m.previous = make(map[string]int64)
	m.history = make(map[string][]HistoryPoint)
	m.current = Snapshot{}
	m.mu.Unlock()

	for name, src := range sources {
		r, ok := src.(Resetter)
		if !ok {
			continue
		}
		if err := runSafely(name, func() error {
			r.ResetMetrics()
			return nil
		}); err != nil {
			m.log.Error().Err(err).Str("selector", name).Msg("Failed to reset selector metrics")
		}
	}
	m.log.Info().Int("selectors", len(sources)).Msg("Selector metrics reset")
}
