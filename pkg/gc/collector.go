package gc

import (
	"log"
	"os"
)

// Collector
//
// The collector owns the young and old pools, the root set, and the mark
// stack; nothing else mutates them. It exposes allocation registration,
// root construction (via Ref[T]'s constructors, which call back into the
// collector), blocking collection, and an incremental step driver.
//
// The collector is single-threaded cooperative: the host program and the
// collector run on the same goroutine, interleaved only at well-defined
// call sites (allocation, reference writes, explicit collection calls).
// No field here is protected by a lock, by design (see spec.md §5).

// Phase is one of the four states the incremental cycle moves through.
type Phase int

const (
	Idle Phase = iota
	MarkRoots
	Marking
	Sweep
)

func (p Phase) String() string {
	switch p {
	case MarkRoots:
		return "mark-roots"
	case Marking:
		return "marking"
	case Sweep:
		return "sweep"
	default:
		return "idle"
	}
}

// Config holds the tunables recognized at Collector construction. A zero
// Config is valid: every zero field falls back to DefaultConfig, so a
// collector used before explicit initialization still behaves sensibly.
type Config struct {
	// MarkBudget caps how many objects are blackened per incremental step.
	MarkBudget int
	// SweepBudget caps how many pool entries are examined per incremental step.
	SweepBudget int
	// AllocationThreshold is the number of allocations between automatic cycle starts.
	AllocationThreshold int
	// PromotionSurvivals is the number of young-generation survivals before promotion to old.
	PromotionSurvivals int
	// Debug, if true, makes the collector emit timestamped trace lines to stdout.
	Debug bool
}

// DefaultConfig returns the tunables spec.md §6 lists as defaults.
func DefaultConfig() Config {
	return Config{
		MarkBudget:          20,
		SweepBudget:         10,
		AllocationThreshold: 100,
		PromotionSurvivals:  50,
		Debug:               false,
	}
}

// Collector is a single, self-contained tracing garbage collector. Host
// programs typically hold one; nothing requires it to be a singleton, but
// nothing prevents it from being used that way either.
type Collector struct {
	young map[Collectable]struct{}
	old   map[Collectable]struct{}
	roots map[refHandle]struct{}

	markStack []Collectable

	phase            Phase
	sweepSnapshot    []Collectable
	oldSweepSnapshot []Collectable
	sweepIndex       int
	sweepingOld      bool

	markBudget          int
	sweepBudget         int
	allocationThreshold int
	promotionSurvivals  int
	allocationCounter   int
	lastMinorFreed      int
	lastMajorFreed      int

	debug  bool
	logger *log.Logger
}

// NewCollector constructs a collector from cfg. Zero fields in cfg fall
// back to DefaultConfig's values.
func NewCollector(cfg Config) *Collector {
	def := DefaultConfig()
	if cfg.MarkBudget <= 0 {
		cfg.MarkBudget = def.MarkBudget
	}
	if cfg.SweepBudget <= 0 {
		cfg.SweepBudget = def.SweepBudget
	}
	if cfg.AllocationThreshold <= 0 {
		cfg.AllocationThreshold = def.AllocationThreshold
	}
	if cfg.PromotionSurvivals <= 0 {
		cfg.PromotionSurvivals = def.PromotionSurvivals
	}
	return &Collector{
		young:               make(map[Collectable]struct{}),
		old:                 make(map[Collectable]struct{}),
		roots:               make(map[refHandle]struct{}),
		markBudget:          cfg.MarkBudget,
		sweepBudget:         cfg.SweepBudget,
		allocationThreshold: cfg.AllocationThreshold,
		promotionSurvivals:  cfg.PromotionSurvivals,
		debug:               cfg.Debug,
		logger:              log.New(os.Stdout, "", log.LstdFlags),
	}
}

// Alloc registers obj with c's young pool and returns it unchanged. It is
// the usual way a managed type's constructor hands its freshly built
// value to the collector, mirroring the teacher pack's New<X>Context +
// Alloc(data) constructor idiom.
func Alloc[T Collectable](c *Collector, obj T) T {
	c.RegisterObject(obj)
	return obj
}

// RegisterObject adds obj to the young pool if it is not already tracked
// in either pool, and advances the allocation counter. Crossing
// AllocationThreshold starts an incremental cycle (a no-op if one is
// already running). Registering an object twice is tolerated as a no-op,
// which Go's map set semantics give for free.
func (c *Collector) RegisterObject(obj Collectable) {
	h := obj.GCHeader()
	if h.collector == nil {
		h.collector = c
	}
	if _, ok := c.young[obj]; ok {
		return
	}
	if _, ok := c.old[obj]; ok {
		return
	}
	h.serial = debugSerial.Add(1)
	c.young[obj] = struct{}{}
	c.allocationCounter++
	c.debugf("alloc", "serial=%d young=%d old=%d counter=%d/%d", h.serial, len(c.young), len(c.old), c.allocationCounter, c.allocationThreshold)
	if c.allocationCounter >= c.allocationThreshold {
		c.allocationCounter = 0
		c.StartIncrementalCollect()
	}
}

// Phase reports the collector's current incremental phase.
func (c *Collector) Phase() Phase { return c.phase }

// LiveCount, YoungCount, OldCount report pool sizes.
func (c *Collector) LiveCount() int  { return len(c.young) + len(c.old) }
func (c *Collector) YoungCount() int { return len(c.young) }
func (c *Collector) OldCount() int   { return len(c.old) }

// LastMinorFreed and LastMajorFreed report how many objects the most
// recently completed cycle reclaimed from each pool.
func (c *Collector) LastMinorFreed() int { return c.lastMinorFreed }
func (c *Collector) LastMajorFreed() int { return c.lastMajorFreed }

// Tuning setters. Non-positive values are ignored, leaving the previous
// setting in place.
func (c *Collector) SetMarkBudget(n int) {
	if n > 0 {
		c.markBudget = n
	}
}

func (c *Collector) SetSweepBudget(n int) {
	if n > 0 {
		c.sweepBudget = n
	}
}

func (c *Collector) SetAllocationThreshold(n int) {
	if n > 0 {
		c.allocationThreshold = n
	}
}

func (c *Collector) SetPromotionSurvivals(n int) {
	if n > 0 {
		c.promotionSurvivals = n
	}
}

func (c *Collector) SetDebug(on bool) {
	c.debug = on
}

// StartIncrementalCollect begins a new incremental cycle. A no-op if a
// cycle is already in progress. Root seeding happens on the first
// IncrementalCollectStep call, not here; this call only transitions
// Idle to MarkRoots and resets the mark stack and sweep cursor.
func (c *Collector) StartIncrementalCollect() {
	if c.phase != Idle {
		return
	}
	c.markStack = c.markStack[:0]
	c.sweepingOld = false
	c.phase = MarkRoots
	c.debugf("cycle", "start incremental collect")
}

// IncrementalCollectStep performs one bounded unit of work and reports
// whether the collector is (or just became) Idle. Calling it while Idle
// is itself a no-op that returns true immediately.
func (c *Collector) IncrementalCollectStep() bool {
	switch c.phase {
	case Idle:
		return true
	case MarkRoots:
		c.seedRoots()
		c.phase = Marking
		// One mark-unit runs eagerly so a single step after start makes
		// forward progress; the stack-empty check that would advance to
		// Sweep is left for the next Marking-phase call, giving the
		// mutator a chance to observe owner.discovered and fire the write
		// barrier before sweep begins.
		c.markStep(1)
	case Marking:
		c.markStep(c.markBudget)
		if len(c.markStack) == 0 {
			c.beginSweep()
		}
	case Sweep:
		c.sweepStep(c.sweepBudget)
	}
	return c.phase == Idle
}

// CollectNow runs a complete collection synchronously. If an incremental
// cycle is already in progress it is drained to completion first, since a
// partial cycle's gray/black flags can never be discarded, only finished.
// major sweeps both pools; !major marks from roots globally but sweeps
// only the young pool, clearing flags on old survivors without reclaiming
// them.
func (c *Collector) CollectNow(major bool) {
	if c.phase != Idle {
		c.drainIncremental()
	}
	c.phase = MarkRoots
	c.markStack = c.markStack[:0]
	c.seedRoots()
	c.phase = Marking
	c.markAllSync()

	c.phase = Sweep
	c.lastMinorFreed = 0
	c.lastMajorFreed = 0
	c.sweepingOld = false
	// Both snapshots are taken before either pool is swept: sweeping young
	// can promote survivors into old, and a snapshot of old taken afterward
	// would catch those same objects a second time.
	youngSnapshot := c.snapshotPool(c.young)
	oldSnapshot := c.snapshotPool(c.old)
	for _, obj := range youngSnapshot {
		c.sweepOne(obj, false)
	}
	if major {
		c.sweepingOld = true
		for _, obj := range oldSnapshot {
			c.sweepOne(obj, true)
		}
	} else {
		c.clearOldFlags()
	}
	c.phase = Idle
	c.sweepSnapshot = nil
	c.sweepIndex = 0
	c.adjustThresholds()
	c.debugf("cycle", "collectNow major=%v minorFreed=%d majorFreed=%d", major, c.lastMinorFreed, c.lastMajorFreed)
}

// Shutdown optionally runs one final blocking major sweep. Destroying the
// collector without calling it leaks whatever is still live but does not
// violate correctness.
func (c *Collector) Shutdown() {
	c.CollectNow(true)
}

func (c *Collector) drainIncremental() {
	for c.phase != Idle {
		c.IncrementalCollectStep()
	}
}

func (c *Collector) markAllSync() {
	for len(c.markStack) > 0 {
		c.markStep(len(c.markStack))
	}
}

func (c *Collector) seedRoots() {
	for r := range c.roots {
		child, ok := r.childCollectable()
		if !ok {
			continue
		}
		h := child.GCHeader()
		if !h.discovered {
			h.discovered = true
			c.markStack = append(c.markStack, child)
		}
	}
}

func (c *Collector) markStep(budget int) {
	for i := 0; i < budget && len(c.markStack) > 0; i++ {
		obj := c.markStack[len(c.markStack)-1]
		c.markStack = c.markStack[:len(c.markStack)-1]
		h := obj.GCHeader()
		h.scanned = true
		obj.EnumerateChildren(func(child Collectable) {
			ch := child.GCHeader()
			if !ch.discovered {
				ch.discovered = true
				c.markStack = append(c.markStack, child)
			}
		})
	}
}

func (c *Collector) beginSweep() {
	c.phase = Sweep
	c.sweepingOld = false
	// Both snapshots are captured now, before sweeping young can promote
	// any survivor into old (see the comment in CollectNow).
	c.sweepSnapshot = c.snapshotPool(c.young)
	c.oldSweepSnapshot = c.snapshotPool(c.old)
	c.sweepIndex = 0
	c.lastMinorFreed = 0
	c.lastMajorFreed = 0
	c.debugf("sweep", "begin sweep young=%d old=%d", len(c.young), len(c.old))
}

func (c *Collector) sweepStep(budget int) {
	examined := 0
	for examined < budget {
		if c.sweepIndex >= len(c.sweepSnapshot) {
			if !c.sweepingOld {
				c.sweepingOld = true
				c.sweepSnapshot = c.oldSweepSnapshot
				c.sweepIndex = 0
				if len(c.sweepSnapshot) == 0 {
					c.finishSweep()
					return
				}
				continue
			}
			c.finishSweep()
			return
		}
		obj := c.sweepSnapshot[c.sweepIndex]
		c.sweepIndex++
		examined++
		c.sweepOne(obj, c.sweepingOld)
	}
}

func (c *Collector) finishSweep() {
	c.phase = Idle
	c.sweepSnapshot = nil
	c.oldSweepSnapshot = nil
	c.sweepIndex = 0
	c.adjustThresholds()
	c.debugf("cycle", "complete minorFreed=%d majorFreed=%d", c.lastMinorFreed, c.lastMajorFreed)
}

func (c *Collector) clearOldFlags() {
	for obj := range c.old {
		h := obj.GCHeader()
		h.discovered = false
		h.scanned = false
	}
}

func (c *Collector) snapshotPool(pool map[Collectable]struct{}) []Collectable {
	out := make([]Collectable, 0, len(pool))
	for obj := range pool {
		out = append(out, obj)
	}
	return out
}

func (c *Collector) registerRootHandle(r refHandle) {
	c.roots[r] = struct{}{}
}

func (c *Collector) unregisterRootHandle(r refHandle) {
	delete(c.roots, r)
}

func (c *Collector) debugf(event string, format string, args ...interface{}) {
	if !c.debug {
		return
	}
	all := append([]interface{}{event}, args...)
	c.logger.Printf("event=%s "+format, all...)
}
