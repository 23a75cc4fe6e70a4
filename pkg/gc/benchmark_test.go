package gc

import "testing"

func BenchmarkAlloc(b *testing.B) {
	c := NewCollector(DefaultConfig())
	c.SetAllocationThreshold(1 << 30)
	for i := 0; i < b.N; i++ {
		newCountingNode(c, "n", nil)
	}
}

func BenchmarkCollectNowMajorDeepChain(b *testing.B) {
	c := NewCollector(DefaultConfig())
	c.SetAllocationThreshold(1 << 30)
	nodes := make([]*countingNode, 1000)
	for i := range nodes {
		nodes[i] = newCountingNode(c, "n", nil)
	}
	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].Next.Bind(nodes[i], nodes[i+1])
	}
	root := NewRoot(c, nodes[0])
	defer root.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.CollectNow(true)
	}
}

func BenchmarkIncrementalCollectStep(b *testing.B) {
	c := NewCollector(DefaultConfig())
	c.SetAllocationThreshold(1 << 30)
	for i := 0; i < 500; i++ {
		newCountingNode(c, "n", nil)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.StartIncrementalCollect()
		for !c.IncrementalCollectStep() {
		}
	}
}
