package gc

import "testing"

func TestNewRootRegistersOnlyWhenNonNil(t *testing.T) {
	c := NewCollector(DefaultConfig())

	nilRoot := NewRoot(c, (*countingNode)(nil))
	if len(c.roots) != 0 {
		t.Errorf("a nil root should not be registered, roots=%d", len(c.roots))
	}
	nilRoot.Close()

	n := newCountingNode(c, "root", nil)
	root := NewRoot(c, n)
	if len(c.roots) != 1 {
		t.Errorf("expected exactly 1 registered root, got %d", len(c.roots))
	}
	root.Close()
	if len(c.roots) != 0 {
		t.Errorf("Close should unregister the root, got %d", len(c.roots))
	}
}

func TestRefGetSetNil(t *testing.T) {
	c := NewCollector(DefaultConfig())
	n := newCountingNode(c, "a", nil)
	child := newCountingNode(c, "b", nil)

	n.Next.Bind(n, (*countingNode)(nil))
	if !n.Next.IsNil() {
		t.Error("expected a nil-target member ref to report IsNil")
	}

	n.Next.Set(child)
	if n.Next.IsNil() {
		t.Error("expected Next to be non-nil after Set")
	}
	if n.Next.Get() != child {
		t.Errorf("expected Get to return child, got %v", n.Next.Get())
	}

	n.Next.SetNil()
	if !n.Next.IsNil() {
		t.Error("expected SetNil to clear the target")
	}
}

func TestRefMustGetPanicsOnNil(t *testing.T) {
	c := NewCollector(DefaultConfig())
	n := newCountingNode(c, "a", nil)
	n.Next.Bind(n, (*countingNode)(nil))

	defer func() {
		if recover() == nil {
			t.Error("expected MustGet on a nil ref to panic")
		}
	}()
	n.Next.MustGet()
}

func TestRefDerefIsAliasForMustGet(t *testing.T) {
	c := NewCollector(DefaultConfig())
	n := newCountingNode(c, "a", nil)
	child := newCountingNode(c, "b", nil)
	n.Next.Bind(n, child)

	if n.Next.Deref() != child {
		t.Error("expected Deref to return the current target")
	}
}

func TestRefCopyFromAndMoveFrom(t *testing.T) {
	c := NewCollector(DefaultConfig())
	newCountingNode(c, "a", nil)
	child := newCountingNode(c, "b", nil)

	src := NewRoot(c, child)
	dst := NewRoot(c, (*countingNode)(nil))
	dst.CopyFrom(src)
	if dst.Get() != child {
		t.Error("expected CopyFrom to copy the target")
	}
	if len(c.roots) != 2 {
		t.Errorf("expected both src and dst registered as roots, got %d", len(c.roots))
	}

	other := newCountingNode(c, "c", nil)
	moveDst := NewRoot(c, (*countingNode)(nil))
	moveSrc := NewRoot(c, other)
	moveDst.MoveFrom(moveSrc)

	if moveDst.Get() != other {
		t.Error("expected MoveFrom to move the target into dst")
	}
	if !moveSrc.IsNil() {
		t.Error("expected MoveFrom to clear the source")
	}
}

func TestRefCloseOnMemberRemovesFromOwner(t *testing.T) {
	c := NewCollector(DefaultConfig())
	n := newCountingNode(c, "a", nil)
	child := newCountingNode(c, "b", nil)

	r := &Ref[*countingNode]{}
	r.Bind(n, child)
	if len(n.GCHeader().memberRefs) != 1 {
		t.Fatalf("expected 1 member ref before Close")
	}
	r.Close()
	if len(n.GCHeader().memberRefs) != 0 {
		t.Errorf("expected Close to remove the ref from owner's memberRefs, got %d", len(n.GCHeader().memberRefs))
	}

	// Close is idempotent.
	r.Close()
}
