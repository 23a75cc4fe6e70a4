package gc

// Typed Managed References
//
// Ref[T] is a handle that is either a root (no owning object, a starting
// point of every mark cycle, registered in the collector's root set) or a
// member (owned by some Object, appearing in that object's
// memberRefs). Every write through a Ref preserves the registration
// invariants: at most one of {owner != nil, registeredAsRoot} holds, and
// registeredAsRoot implies the target is non-nil.
//
// A Ref must not be copied by value after construction, same as
// sync.Mutex: its identity is load-bearing, since the collector's root
// set and each owner's memberRefs index Refs by pointer. Use
// CopyFrom/MoveFrom, which perform the registration dance spec'd for
// copy/move, instead of Go's ordinary assignment.

// Target is the constraint satisfied by anything a Ref[T] may point at:
// a Collectable that supports equality, since the sweep's
// dangling-reference pass compares targets for identity.
type Target interface {
	Collectable
	comparable
}

// refHandle is the non-generic face every Ref[T] presents to the
// collector, so that a single Header.memberRefs slice (and a single roots
// set) can hold Refs of different target types.
type refHandle interface {
	nullIfPointsTo(obj Collectable) bool
	childCollectable() (Collectable, bool)
}

// Ref is a typed, nullable handle to a managed object of type T. It is
// either a root, constructed with NewRoot, or a member, turned from a
// zero value into one with Bind.
type Ref[T Target] struct {
	target           T
	owner            Collectable
	collector        *Collector
	registeredAsRoot bool
}

// NewRoot constructs a root reference. A non-nil target is registered in
// the collector's root set immediately; a nil target is not registered at
// all, matching the invariant that a null root ref is not kept in the
// root set.
func NewRoot[T Target](c *Collector, target T) *Ref[T] {
	r := &Ref[T]{collector: c, target: target}
	var zero T
	if target != zero {
		c.registerRootHandle(r)
		r.registeredAsRoot = true
	}
	return r
}

// Bind turns the zero-valued Ref[T] receiver into a member reference
// owned by owner, targeting target. Bind must be called on an
// already-addressable field, typically a declared member slot like
// `Next gc.Ref[*Node]`, never on a value returned from a function,
// since the owner's memberRefs indexes this exact address: if r were
// copied afterward, the copy and the registered entry would drift apart
// the moment either one is mutated.
//
// r is appended to owner's memberRefs regardless of target, and if
// target is non-nil the write barrier fires on (owner, target) exactly
// as a later Set would.
func (r *Ref[T]) Bind(owner Collectable, target T) {
	r.owner = owner
	r.target = target
	h := owner.GCHeader()
	r.collector = h.collector
	h.addMemberRef(r)
	var zero T
	var child Collectable
	if target != zero {
		child = Collectable(target)
	}
	h.collector.writeBarrier(owner, child)
}

// Get returns the current target, which may be the zero value (nil) of T.
// It never panics; use MustGet when a nil target is a programmer error.
func (r *Ref[T]) Get() T {
	return r.target
}

// IsNil reports whether the reference currently points at nothing.
func (r *Ref[T]) IsNil() bool {
	var zero T
	return r.target == zero
}

// MustGet returns the current target, panicking if it is nil. Dereferencing
// a null managed reference is a programmer error per design; it is never
// silently recovered.
func (r *Ref[T]) MustGet() T {
	var zero T
	if r.target == zero {
		panic("gc: dereference of nil managed reference")
	}
	return r.target
}

// Deref is an alias for MustGet, named for readers coming from the
// pointer-dereference mental model.
func (r *Ref[T]) Deref() T {
	return r.MustGet()
}

// Set rebinds the reference to v. For a member ref this updates the
// owner's field and fires the write barrier on (owner, v), even when v is
// nil (a null write is a barrier no-op, but the call site stays uniform).
// For a root ref this unregisters the old target (if it was registered)
// and registers the new one iff v is non-nil.
func (r *Ref[T]) Set(v T) {
	var zero T
	if r.owner != nil {
		r.target = v
		h := r.owner.GCHeader()
		var child Collectable
		if v != zero {
			child = Collectable(v)
		}
		h.collector.writeBarrier(r.owner, child)
		return
	}
	if r.registeredAsRoot {
		r.collector.unregisterRootHandle(r)
		r.registeredAsRoot = false
	}
	r.target = v
	if v != zero {
		r.collector.registerRootHandle(r)
		r.registeredAsRoot = true
	}
}

// SetNil is shorthand for Set with the zero value of T.
func (r *Ref[T]) SetNil() {
	var zero T
	r.Set(zero)
}

// CopyFrom assigns r from other, the same as the original GCRef's copy
// assignment operator: r first detaches from whatever it currently owns
// or is rooted as, then adopts other's target and other's owner/root
// identity, exactly as other is attached right now. other itself is
// left unchanged. If the adopted owner is discovered, the write barrier
// fires on (owner, target) the same as a fresh Bind would.
func (r *Ref[T]) CopyFrom(other *Ref[T]) {
	if r == other {
		return
	}
	r.detach()
	r.target = other.target
	r.owner = other.owner
	r.collector = other.collector
	var zero T
	var child Collectable
	if r.target != zero {
		child = Collectable(r.target)
	}
	if r.owner != nil {
		r.registeredAsRoot = false
		r.owner.GCHeader().addMemberRef(r)
		r.collector.writeBarrier(r.owner, child)
		return
	}
	if child != nil {
		r.registeredAsRoot = true
		r.collector.registerRootHandle(r)
	} else {
		r.registeredAsRoot = false
	}
}

// MoveFrom behaves like CopyFrom, then detaches other from whatever it
// was attached to and leaves it pointing at nothing: the reference other
// represented now lives only in r.
func (r *Ref[T]) MoveFrom(other *Ref[T]) {
	if r == other {
		return
	}
	r.CopyFrom(other)
	other.detach()
	var zero T
	other.target = zero
	other.owner = nil
	other.registeredAsRoot = false
}

// detach removes r from whatever it is currently attached to: a member
// ref is removed from its owner's memberRefs, a registered root ref is
// removed from the root set. A ref with neither is left untouched.
func (r *Ref[T]) detach() {
	if r.owner != nil {
		r.owner.GCHeader().removeMemberRef(r)
		r.owner = nil
		return
	}
	if r.registeredAsRoot {
		r.collector.unregisterRootHandle(r)
		r.registeredAsRoot = false
	}
}

// Close tears down the reference: a member ref is removed from its
// owner's memberRefs, a registered root ref is removed from the root
// set. Close is idempotent.
func (r *Ref[T]) Close() {
	r.detach()
}

// nullIfPointsTo clears the target if it currently points at obj. Invoked
// only by the sweep, on a dying object, so it fires no barrier.
func (r *Ref[T]) nullIfPointsTo(obj Collectable) bool {
	var zero T
	if r.target == zero {
		return false
	}
	if Collectable(r.target) != obj {
		return false
	}
	r.target = zero
	if r.owner == nil && r.registeredAsRoot {
		r.collector.unregisterRootHandle(r)
		r.registeredAsRoot = false
	}
	return true
}

// childCollectable reports the current target as a Collectable, used by
// Object's default EnumerateChildren to walk memberRefs without knowing
// each Ref's concrete T.
func (r *Ref[T]) childCollectable() (Collectable, bool) {
	var zero T
	if r.target == zero {
		return nil, false
	}
	return r.target, true
}
