package forge

// Runtime owns every piece of mutable graph state: the node pool free
// list, the active-observer stack, the pause stack for untracked reads
// and the circular batch queue. Nothing is process-global; independent
// runtimes never share nodes.
type Runtime struct {
	activeSub     *node
	observerStack []*node
	pauseStack    []*node

	batchDepth int
	flushing   bool
	queue      []*node
	qHead      int
	qCount     int

	free []*node
	live int

	inspector Inspector
	onError   OnErrorFunc
}

const initialQueueSize = 64

func CreateRuntime(onError OnErrorFunc) *Runtime {
	return &Runtime{
		queue:     make([]*node, initialQueueSize),
		inspector: nopInspector{},
		onError:   onError,
	}
}

// SetInspector injects the collaborator hook. Passing nil restores the
// null implementation.
func (rt *Runtime) SetInspector(i Inspector) {
	if i == nil {
		i = nopInspector{}
	}
	rt.inspector = i
}

// RuntimeStats is a point-in-time view of node accounting.
type RuntimeStats struct {
	LiveNodes   int
	PooledNodes int
	QueuedNodes int
	BatchDepth  int
}

func (rt *Runtime) Stats() RuntimeStats {
	return RuntimeStats{
		LiveNodes:   rt.live,
		PooledNodes: len(rt.free),
		QueuedNodes: rt.qCount,
		BatchDepth:  rt.batchDepth,
	}
}

func (rt *Runtime) StartBatch() {
	rt.batchDepth++
}

// EndBatch closes the innermost batch scope and always forces a
// synchronous flush, so coalescing granularity is the innermost batch
// boundary rather than the outermost one.
func (rt *Runtime) EndBatch() {
	if rt.batchDepth > 0 {
		rt.batchDepth--
	}
	rt.flush()
}

func (rt *Runtime) Batch(cb func()) {
	rt.StartBatch()
	defer rt.EndBatch()
	cb()
}

// FlushSync drains the queue immediately. Flushing with no pending work
// is a no-op.
func (rt *Runtime) FlushSync() {
	rt.flush()
}

func (rt *Runtime) PauseTracking() {
	rt.pauseStack = append(rt.pauseStack, rt.activeSub)
	rt.activeSub = nil
}

func (rt *Runtime) ResumeTracking() {
	lastIdx := len(rt.pauseStack) - 1
	rt.activeSub = rt.pauseStack[lastIdx]
	rt.pauseStack = rt.pauseStack[:lastIdx]
}

// Untrack runs fn with no active observer, so reads inside it create no
// dependency edges. The previous observer is restored even if fn panics.
func (rt *Runtime) Untrack(fn func()) {
	rt.PauseTracking()
	defer rt.ResumeTracking()
	fn()
}

// Untracked is Untrack for reads that produce a value.
func Untracked[T any](rt *Runtime, fn func() T) T {
	rt.PauseTracking()
	defer rt.ResumeTracking()
	return fn()
}

// track records an edge from the active observer to dep. Reads outside
// any computation, and self-reads, create no edge.
func (rt *Runtime) track(dep *node) {
	sub := rt.activeSub
	if sub == nil || sub == dep {
		return
	}
	// Symmetry makes the subscriber's dep set authoritative for the
	// already-linked check.
	if sub.deps.Contains(dep) {
		return
	}
	sub.deps.Add(dep)
	dep.subs = append(dep.subs, sub)
}

// markDirty flags n and its transitive subscribers and enqueues each of
// them once. The dirty flag gates re-entry, so diamond shapes settle in
// O(edges).
func (rt *Runtime) markDirty(n *node) {
	if n.flags&(flagDirty|flagDestroyed) != 0 {
		return
	}
	n.flags |= flagDirty
	rt.enqueue(n)
	for _, sub := range n.subs {
		rt.markDirty(sub)
	}
}

func (rt *Runtime) enqueue(n *node) {
	if n.flags&flagScheduled != 0 {
		return
	}
	n.flags |= flagScheduled
	if rt.qCount == len(rt.queue) {
		rt.growQueue()
	}
	rt.queue[(rt.qHead+rt.qCount)%len(rt.queue)] = n
	rt.qCount++
}

func (rt *Runtime) growQueue() {
	next := make([]*node, len(rt.queue)*2)
	for i := 0; i < rt.qCount; i++ {
		next[i] = rt.queue[(rt.qHead+i)%len(rt.queue)]
	}
	rt.queue = next
	rt.qHead = 0
}

func (rt *Runtime) dequeue() *node {
	n := rt.queue[rt.qHead]
	rt.queue[rt.qHead] = nil
	rt.qHead = (rt.qHead + 1) % len(rt.queue)
	rt.qCount--
	return n
}

// flush drains the queue in FIFO order. A node may already be clean
// here if a direct synchronous read recomputed it before its turn.
// Dequeuing a destroyed node is a no-op beyond recycling its record.
// A panicking recompute (a failing listener or effect body) does not
// abandon the rest of the queue; the first panic is re-raised once the
// queue is empty, matching the per-listener policy in notify.
func (rt *Runtime) flush() {
	if rt.flushing {
		// A write from inside a compute or effect body lands in the
		// queue and is drained by the outer flush loop.
		return
	}
	rt.flushing = true
	defer func() {
		rt.flushing = false
	}()
	var failure any
	for rt.qCount > 0 {
		n := rt.dequeue()
		n.flags &^= flagScheduled
		if n.flags&flagDestroyed != 0 {
			rt.release(n)
			continue
		}
		if n.flags&flagDirty == 0 {
			continue
		}
		if n.compute == nil {
			// Plain signal: its value was stored at write time.
			n.flags &^= flagDirty
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil && failure == nil {
					failure = r
				}
			}()
			rt.recompute(n)
		}()
	}
	if failure != nil {
		panic(failure)
	}
}

// recompute re-derives a dirty node. All dependency edges are torn down
// and re-collected from scratch by running the compute function with
// the node as active observer.
func (rt *Runtime) recompute(n *node) {
	if n.flags&flagComputing != 0 {
		panic(ErrCycleDetected)
	}
	n.flags |= flagComputing

	rt.clearDeps(n)
	if n.cleanup != nil {
		cl := n.cleanup
		n.cleanup = nil
		rt.Untrack(cl)
	}

	rt.observerStack = append(rt.observerStack, rt.activeSub)
	rt.activeSub = n
	defer func() {
		lastIdx := len(rt.observerStack) - 1
		rt.activeSub = rt.observerStack[lastIdx]
		rt.observerStack = rt.observerStack[:lastIdx]
		n.flags &^= flagComputing | flagDirty
	}()

	next, err := n.compute()
	if err != nil {
		if rt.onError != nil {
			rt.onError(err)
		}
		return
	}
	if n.kind == KindEffect {
		return
	}
	if n.equals(n.value, next) {
		return
	}
	prev := n.value
	n.value = next
	rt.notify(n, prev, next, CauseRecompute)
}

// clearDeps removes n from every dependency's subscriber set and empties
// n's dependency set, keeping the edge symmetry invariant.
func (rt *Runtime) clearDeps(n *node) {
	n.deps.Each(func(dep *node) bool {
		dep.removeSub(n)
		return false
	})
	n.deps.Clear()
}

// notify invokes the inspector hook and then every external listener in
// insertion order. A panicking listener does not stop the remaining
// listeners; the first panic is re-raised afterwards.
func (rt *Runtime) notify(n *node, prev, next any, cause UpdateCause) {
	if n.hookID != 0 {
		rt.inspector.OnUpdate(n.hookID, prev, next, cause)
	}
	if n.flags&flagHasListeners == 0 {
		return
	}
	entries := make([]listenerEntry, len(n.listeners))
	copy(entries, n.listeners)
	var failure any
	for _, entry := range entries {
		func() {
			defer func() {
				if r := recover(); r != nil && failure == nil {
					failure = r
				}
			}()
			entry.fn(next)
		}()
	}
	if failure != nil {
		panic(failure)
	}
}

func (rt *Runtime) subscribe(n *node, fn func(value any)) (unsubscribe func()) {
	n.nextListenerID++
	id := n.nextListenerID
	n.listeners = append(n.listeners, listenerEntry{id: id, fn: fn})
	n.flags |= flagHasListeners
	return func() {
		for i, entry := range n.listeners {
			if entry.id == id {
				n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
				break
			}
		}
		if len(n.listeners) == 0 {
			n.flags &^= flagHasListeners
		}
	}
}

// destroyNode severs all edges in both directions, runs any pending
// effect cleanup, drops listeners and recycles the record. A node still
// sitting in the queue is tombstoned and recycled on dequeue instead.
func (rt *Runtime) destroyNode(n *node) {
	if n.flags&flagDestroyed != 0 {
		return
	}
	if n.cleanup != nil {
		cl := n.cleanup
		n.cleanup = nil
		cl()
	}
	rt.clearDeps(n)
	for _, sub := range n.subs {
		sub.deps.Remove(n)
	}
	n.subs = nil
	n.listeners = nil
	if n.hookID != 0 {
		rt.inspector.OnDestroy(n.hookID)
		n.hookID = 0
	}
	n.flags = flagDestroyed | (n.flags & flagScheduled)
	rt.live--
	if n.flags&flagScheduled == 0 {
		rt.release(n)
	}
}
