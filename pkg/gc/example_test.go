package gc_test

import (
	"fmt"

	"tracegc/pkg/gc"
)

type node struct {
	gc.Object
	Name string
	Next gc.Ref[*node]
}

func newNode(c *gc.Collector, name string) *node {
	return gc.Alloc(c, &node{Name: name})
}

func Example() {
	c := gc.NewCollector(gc.DefaultConfig())

	a := newNode(c, "a")
	b := newNode(c, "b")
	a.Next.Bind(a, b)

	root := gc.NewRoot(c, a)
	defer root.Close()

	c.CollectNow(true)
	fmt.Println(c.LiveCount())

	root.SetNil()
	c.CollectNow(true)
	fmt.Println(c.LiveCount())

	// Output:
	// 2
	// 0
}
