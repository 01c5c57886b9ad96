package forge

type WriteableSignal[T any] struct {
	n *node
}

// Signal creates a mutable reactive cell.
func Signal[T comparable](rt *Runtime, initialValue T) *WriteableSignal[T] {
	return SignalWithEquals(rt, initialValue, func(prev, next T) bool {
		return prev == next
	})
}

// SignalWithEquals creates a signal with a custom equality function for
// value types that are expensive or impossible to compare with ==.
func SignalWithEquals[T any](rt *Runtime, initialValue T, equals func(prev, next T) bool) *WriteableSignal[T] {
	n := rt.newNode(KindSignal, initialValue)
	n.equals = func(prev, next any) bool {
		return equals(prev.(T), next.(T))
	}
	return &WriteableSignal[T]{n: n}
}

func (s *WriteableSignal[T]) Value() T {
	s.n.rt.track(s.n)
	return s.n.value.(T)
}

// SetValue stores v and propagates. Writing an equal value performs no
// dirty propagation and fires no listeners. Direct listeners on the
// signal fire immediately; dependent recomputation is deferred to the
// flush (immediate when no batch is open).
func (s *WriteableSignal[T]) SetValue(v T) {
	n := s.n
	if n.flags&flagDestroyed != 0 {
		return
	}
	if n.equals(n.value, v) {
		return
	}
	prev := n.value
	n.value = v
	n.rt.markDirty(n)
	if n.rt.batchDepth == 0 {
		// Deferred so a panicking direct listener still lets dependents
		// recompute before the panic reaches the writer.
		defer n.rt.flush()
	}
	n.rt.notify(n, prev, v, CauseWrite)
}

// Update applies fn to the current value without tracking the read.
func (s *WriteableSignal[T]) Update(fn func(prev T) T) {
	s.SetValue(fn(s.n.value.(T)))
}

// Subscribe registers an external listener, invoked synchronously with
// the new value whenever it actually changes. Listener order is
// insertion order.
func (s *WriteableSignal[T]) Subscribe(fn func(value T)) (unsubscribe func()) {
	return s.n.rt.subscribe(s.n, func(v any) {
		fn(v.(T))
	})
}

// Destroy severs all edges and recycles the backing record. The handle
// must not be used afterwards.
func (s *WriteableSignal[T]) Destroy() {
	s.n.rt.destroyNode(s.n)
}
