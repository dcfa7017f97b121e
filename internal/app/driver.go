package app

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/selectorcache/internal/logger"
	"github.com/guttosm/selectorcache/internal/store"
	"github.com/guttosm/selectorcache/internal/workspace"
)

// Driver simulates user activity: every tick it publishes a mutated snapshot and
// reads it back through the workspace selectors.
type Driver struct {
	store     *store.Store
	selectors *workspace.Selectors
	rng       *rand.Rand
	log       zerolog.Logger

	mu     sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewDriver creates a stopped driver. seed makes the sequence of changes reproducible.
func NewDriver(st *store.Store, sel *workspace.Selectors, seed uint64) *Driver {
	return &Driver{
		store:     st,
		selectors: sel,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		log:       logger.Component("demo_driver"),
	}
}

// Start runs Step every tick until Stop. Calling Start on a running driver is a no-op.
func (d *Driver) Start(tick time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopCh != nil || tick <= 0 {
		return
	}

	d.stopCh = make(chan struct{})
	d.wg.Add(1)
	go d.run(tick, d.stopCh)
	d.log.Info().Dur("tick", tick).Msg("Demo driver started")
}

// Stop halts the driver and waits for the running step to finish.
func (d *Driver) Stop() {
	d.mu.Lock()
	if d.stopCh == nil {
		d.mu.Unlock()
		return
	}
	close(d.stopCh)
	d.stopCh = nil
	d.mu.Unlock()

	d.wg.Wait()
	d.log.Info().Msg("Demo driver stopped")
}

func (d *Driver) run(tick time.Duration, stopCh <-chan struct{}) {
	defer d.wg.Done()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			d.Step(now)
		}
	}
}

// Step applies one random change and evaluates the selectors against the result.
// It must not be called while the driver is running.
func (d *Driver) Step(now time.Time) {
	snap := d.store.Update(func(next *store.Snapshot) {
		store.Mutate(next, d.rng, now)
	})

	if _, err := d.selectors.View(snap); err != nil {
		d.log.Error().Err(err).Uint64("version", snap.Version).Msg("Dashboard selectors failed")
		return
	}
	// Revisit a few agents so the per-agent caches see repeated parameters.
	for i := 0; i < 3 && len(snap.Agents) > 0; i++ {
		id := snap.Agents[d.rng.IntN(len(snap.Agents))].ID
		if _, _, err := d.selectors.Agent(snap, id); err != nil {
			d.log.Error().Err(err).Str("agent_id", id).Msg("Agent selectors failed")
			return
		}
	}
	d.log.Debug().Uint64("version", snap.Version).Msg("Demo step")
}
