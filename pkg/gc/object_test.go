package gc

import "testing"

// countingNode is the fixture used across the test suite: a managed node
// with a single outgoing member reference and a finalize counter shared
// across every node allocated from the same backing int pointer.
type countingNode struct {
	Object
	Name     string
	Next     Ref[*countingNode]
	finalize *int
}

func (n *countingNode) Finalize() {
	if n.finalize != nil {
		*n.finalize++
	}
}

func newCountingNode(c *Collector, name string, counter *int) *countingNode {
	return Alloc(c, &countingNode{Name: name, finalize: counter})
}

func TestObjectEnumerateChildrenSkipsNilRefs(t *testing.T) {
	c := NewCollector(DefaultConfig())
	n := newCountingNode(c, "a", nil)
	n.Next.Bind(n, (*countingNode)(nil))

	seen := 0
	n.EnumerateChildren(func(Collectable) { seen++ })
	if seen != 0 {
		t.Errorf("expected 0 children with a nil member ref, got %d", seen)
	}

	child := newCountingNode(c, "b", nil)
	n.Next.Set(child)

	seen = 0
	n.EnumerateChildren(func(Collectable) { seen++ })
	if seen != 1 {
		t.Errorf("expected 1 child after assigning Next, got %d", seen)
	}
}

func TestHeaderAddMemberRefIsIdempotent(t *testing.T) {
	c := NewCollector(DefaultConfig())
	n := newCountingNode(c, "a", nil)
	child := newCountingNode(c, "b", nil)

	r := &Ref[*countingNode]{}
	r.Bind(n, child)
	n.GCHeader().addMemberRef(r)

	if len(n.GCHeader().memberRefs) != 1 {
		t.Errorf("expected memberRefs to hold the ref exactly once, got %d", len(n.GCHeader().memberRefs))
	}
}

func TestGenerationString(t *testing.T) {
	if Young.String() != "young" {
		t.Errorf("expected young, got %s", Young.String())
	}
	if Old.String() != "old" {
		t.Errorf("expected old, got %s", Old.String())
	}
}
