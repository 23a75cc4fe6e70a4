package gc

// Write Barrier and Sweep
//
// writeBarrier implements the Dijkstra insertion barrier: while the
// collector is in MarkRoots or Marking, writing a reference from a gray
// or black (discovered) object to a white (undiscovered) object
// immediately grays the target, so the incremental marker can never miss
// it. Outside that window the barrier is a no-op: Idle has no cycle in
// progress, and Sweep no longer cares about liveness.

// WriteBarrier exposes the barrier for host code that mutates a managed
// graph through something other than Ref[T].Set, e.g. a bespoke
// EnumerateChildren implementation that also needs to register new edges
// by hand. Most callers never need this directly; Ref[T] calls it for
// you.
func WriteBarrier(c *Collector, owner Collectable, newChild Collectable) {
	c.writeBarrier(owner, newChild)
}

func (c *Collector) writeBarrier(owner Collectable, newChild Collectable) {
	if c.phase != MarkRoots && c.phase != Marking {
		return
	}
	if newChild == nil {
		return
	}
	oh := owner.GCHeader()
	if !oh.discovered {
		return
	}
	ch := newChild.GCHeader()
	if ch.discovered {
		return
	}
	ch.discovered = true
	c.markStack = append(c.markStack, newChild)
	c.debugf("barrier", "grayed child of discovered owner")
}

// sweepOne decides obj's fate during sweep: a white (never discovered)
// object is unreachable and is reclaimed; a gray-or-black object
// survived and is kept, with its flags cleared and its generational
// bookkeeping advanced. isOld selects which freed counter and which pool
// removal applies.
func (c *Collector) sweepOne(obj Collectable, isOld bool) {
	h := obj.GCHeader()
	if !h.discovered {
		c.reclaim(obj, isOld)
		return
	}
	h.discovered = false
	h.scanned = false
	h.survivalCount++
	if !isOld && h.survivalCount >= c.promotionSurvivals {
		delete(c.young, obj)
		h.generation = Old
		h.survivalCount = 0
		c.old[obj] = struct{}{}
		c.debugf("promote", "serial=%d promoted to old", h.serial)
	}
}

// reclaim removes obj from its pool, nulls every dangling reference that
// still points to it (both other objects' member refs and the root set),
// runs its finalizer if it has one, and bumps the appropriate freed
// counter.
func (c *Collector) reclaim(obj Collectable, isOld bool) {
	if isOld {
		delete(c.old, obj)
		c.lastMajorFreed++
	} else {
		delete(c.young, obj)
		c.lastMinorFreed++
	}
	c.nullDanglingRefs(obj)
	if f, ok := obj.(Finalizer); ok {
		f.Finalize()
	}
	h := obj.GCHeader()
	c.debugf("reclaim", "serial=%d generation=%s", h.serial, h.generation)
}

// nullDanglingRefs clears every reference in the graph that still points
// at a dying obj: every surviving object's member refs, plus the root
// set directly (roots have no owning object to walk through).
func (c *Collector) nullDanglingRefs(obj Collectable) {
	for other := range c.young {
		if other == obj {
			continue
		}
		other.GCHeader().nullMemberRefsPointingTo(obj)
	}
	for other := range c.old {
		if other == obj {
			continue
		}
		other.GCHeader().nullMemberRefsPointingTo(obj)
	}
	for r := range c.roots {
		if r.nullIfPointsTo(obj) {
			delete(c.roots, r)
		}
	}
}

// adjustThresholds applies the three adaptive rules spec'd for tuning
// promotionSurvivals and allocationThreshold after each completed cycle.
// These are hints, not invariants: any control law that relaxes
// promotionSurvivals when young is sparse, tightens it when young
// churns, and amortizes allocationThreshold on large heaps satisfies the
// intent.
func (c *Collector) adjustThresholds() {
	if c.lastMinorFreed < c.promotionSurvivals/10 && c.promotionSurvivals < 2000 {
		grown := int(float64(c.promotionSurvivals) * 1.5)
		if grown <= c.promotionSurvivals {
			grown = c.promotionSurvivals + 1
		}
		c.promotionSurvivals = grown
		c.debugf("tune", "young-sparse, promotionSurvivals now %d", c.promotionSurvivals)
	} else if c.lastMinorFreed > c.promotionSurvivals/2 && c.promotionSurvivals > 20 {
		shrunk := int(float64(c.promotionSurvivals) * 0.8)
		if shrunk >= c.promotionSurvivals {
			shrunk = c.promotionSurvivals - 1
		}
		c.promotionSurvivals = shrunk
		c.debugf("tune", "young churns, promotionSurvivals now %d", c.promotionSurvivals)
	}

	if c.LiveCount() > 1000 && c.allocationThreshold < 100000 {
		c.allocationThreshold *= 2
		c.debugf("tune", "large heap, allocationThreshold now %d", c.allocationThreshold)
	}
}
