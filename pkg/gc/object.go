package gc

import "sync/atomic"

// Generational Managed Objects
//
// Every collected type embeds Object, which carries the mark/scan state
// the collector needs and an ordered list of the ManagedRef handles
// declared as member slots of that object. Embedding Object is what makes
// a struct satisfy Collectable: GCHeader and the default EnumerateChildren
// are promoted automatically, without reflection.
//
// A subtype that holds references indirectly (a slice of Refs, a map of
// Refs) needs no override of EnumerateChildren: constructing each Ref
// with the owning object already appends it to that object's member list.
// A subtype with bespoke traversal needs simply define its own
// EnumerateChildren method, which shadows the promoted one.

// Generation distinguishes the young pool from the old pool.
type Generation int

const (
	Young Generation = iota
	Old
)

func (g Generation) String() string {
	if g == Old {
		return "old"
	}
	return "young"
}

var debugSerial atomic.Uint64

// Header holds the collector-owned state of a managed object: its
// tri-color flags, survival count, generation, and member-reference list.
// Client code never constructs a Header directly; it comes along for free
// when a struct embeds Object.
type Header struct {
	collector     *Collector
	discovered    bool
	scanned       bool
	survivalCount int
	generation    Generation
	memberRefs    []refHandle
	serial        uint64
}

// Collectable is satisfied by any struct that embeds Object. The
// collector never deals in concrete types, only in Collectable, so that
// Collector/Ref[T] stay generic over every managed type a host program
// defines.
type Collectable interface {
	GCHeader() *Header
	EnumerateChildren(visit func(Collectable))
}

// Finalizer is an optional hook a managed type may implement to run
// cleanup when the collector reclaims it, right after the object has been
// dropped from its pool and every reference to it has been nulled. Ordering
// across multiple finalizers in the same sweep is unspecified; only a
// single hook per object is supported.
type Finalizer interface {
	Finalize()
}

// Object is the base every managed type embeds.
type Object struct {
	header Header
}

// GCHeader returns the object's collector-owned state.
func (o *Object) GCHeader() *Header {
	return &o.header
}

// EnumerateChildren reports every non-nil target among the object's
// member references. Subtypes that hold references outside memberRefs
// (which should not happen if every Ref was constructed with this object
// as owner) can shadow this method.
func (o *Object) EnumerateChildren(visit func(Collectable)) {
	for _, m := range o.header.memberRefs {
		if child, ok := m.childCollectable(); ok {
			visit(child)
		}
	}
}

// addMemberRef appends r to the member list unless it is already present.
// Idempotent: re-adding an already-present ref is a no-op, matching the
// invariant that a ref appears in memberRefs at most once.
func (h *Header) addMemberRef(r refHandle) {
	for _, e := range h.memberRefs {
		if e == r {
			return
		}
	}
	h.memberRefs = append(h.memberRefs, r)
}

// removeMemberRef erases r from the member list. Removing a ref that is
// not present is a no-op.
func (h *Header) removeMemberRef(r refHandle) {
	for i, e := range h.memberRefs {
		if e == r {
			h.memberRefs = append(h.memberRefs[:i], h.memberRefs[i+1:]...)
			return
		}
	}
}

// nullMemberRefsPointingTo is the per-object half of the sweep's
// dangling-reference nulling pass: every member ref of this object that
// still points at obj is cleared.
func (h *Header) nullMemberRefsPointingTo(obj Collectable) {
	for _, m := range h.memberRefs {
		m.nullIfPointsTo(obj)
	}
}

// Generation reports which pool the object currently lives in.
func (h *Header) Generation() Generation {
	return h.generation
}

// SurvivalCount reports how many collections the object has survived in
// its current generation since it was last promoted.
func (h *Header) SurvivalCount() int {
	return h.survivalCount
}
