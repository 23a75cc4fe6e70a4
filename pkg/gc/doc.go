// Package gc implements a tracing garbage collector for host applications
// that want object lifetimes managed by reachability instead of manual
// deallocation.
//
// Client code allocates managed objects that form a directed graph via
// typed managed references. The collector periodically discovers the
// subgraph reachable from a set of roots and reclaims everything else,
// including cycles a reference-counting scheme could never reclaim on its
// own.
//
// # Key Features
//
//   - Tri-color incremental mark-sweep, driven in bounded steps or to
//     completion in one blocking call
//   - A generational overlay: objects that survive enough collections in
//     the young pool are promoted to the old pool
//   - A Dijkstra-style write barrier that keeps incremental marking sound
//     under mutation by the host program between collection steps
//   - Allocation-triggered cycles with adaptively tuned thresholds
//
// # Usage Examples
//
// Defining a managed type and rooting it:
//
//	type Node struct {
//		gc.Object
//		Next gc.Ref[*Node]
//	}
//
//	func NewNode(c *gc.Collector) *Node {
//		return gc.Alloc(c, &Node{})
//	}
//
//	collector := gc.NewCollector(gc.DefaultConfig())
//	n := NewNode(collector)
//	root := gc.NewRoot(collector, n)
//	defer root.Close()
//
//	n.Next.Bind(n, NewNode(collector))
//	collector.CollectNow(true)
//
// Driving collection incrementally instead of blocking:
//
//	collector.StartIncrementalCollect()
//	for !collector.IncrementalCollectStep() {
//		// do other mutator work between steps
//	}
//
// # Dangers and Warnings
//
//   - A Ref[T] must never be copied by value after its first use; use
//     CopyFrom/MoveFrom, which preserve registration invariants, instead
//     of Go's ordinary struct assignment.
//   - Dereferencing a nil Ref[T] via MustGet panics. This is a
//     programmer error the collector never recovers from silently.
//   - The collector is single-threaded cooperative: the host and the
//     collector share one goroutine. Calling collector methods
//     concurrently from multiple goroutines is not supported.
package gc
