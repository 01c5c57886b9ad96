package forge

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// DefaultPoolSize bounds the free list; records beyond it are left to
// the garbage collector.
const DefaultPoolSize = 1024

func (rt *Runtime) newNode(kind NodeKind, initialValue any) *node {
	n := rt.acquire()
	n.kind = kind
	n.value = initialValue
	n.hookID = rt.inspector.OnCreate(kind, initialValue)
	rt.live++
	return n
}

func (rt *Runtime) acquire() *node {
	if lastIdx := len(rt.free) - 1; lastIdx >= 0 {
		n := rt.free[lastIdx]
		rt.free[lastIdx] = nil
		rt.free = rt.free[:lastIdx]
		return n
	}
	return &node{
		rt:   rt,
		deps: mapset.NewThreadUnsafeSet[*node](),
	}
}

// release zeroes every mutable field before the record can be handed to
// a new logical signal. Residual state here would surface as another
// node's value, edges or plugin identity.
func (rt *Runtime) release(n *node) {
	n.kind = 0
	n.flags = 0
	n.hookID = 0
	n.value = nil
	n.compute = nil
	n.equals = nil
	n.cleanup = nil
	n.deps.Clear()
	n.subs = nil
	n.listeners = nil
	n.nextListenerID = 0
	if len(rt.free) < DefaultPoolSize {
		rt.free = append(rt.free, n)
	}
}
