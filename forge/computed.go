package forge

type ReadonlySignal[T any] struct {
	n *node
}

// Computed creates a derived cell. The getter receives the previously
// cached value and is re-run whenever a dependency changed, re-collecting
// its dependency edges from scratch on every run. Evaluation is lazy:
// nothing runs until the first read or a scheduler flush reaches it.
func Computed[T comparable](rt *Runtime, getter func(oldValue T) T) *ReadonlySignal[T] {
	return ComputedWithEquals(rt, getter, func(prev, next T) bool {
		return prev == next
	})
}

func ComputedWithEquals[T any](rt *Runtime, getter func(oldValue T) T, equals func(prev, next T) bool) *ReadonlySignal[T] {
	var zero T
	n := rt.newNode(KindComputed, zero)
	n.flags |= flagDirty
	n.equals = func(prev, next any) bool {
		return equals(prev.(T), next.(T))
	}
	n.compute = func() (any, error) {
		return getter(n.value.(T)), nil
	}
	return &ReadonlySignal[T]{n: n}
}

// Value returns the cached value, recomputing it first if a dependency
// marked it dirty. Reading a node whose compute function has re-entered
// itself panics with ErrCycleDetected.
func (s *ReadonlySignal[T]) Value() T {
	n := s.n
	if n.flags&flagDirty != 0 && n.flags&flagDestroyed == 0 {
		n.rt.recompute(n)
	}
	n.rt.track(n)
	return n.value.(T)
}

func (s *ReadonlySignal[T]) Subscribe(fn func(value T)) (unsubscribe func()) {
	return s.n.rt.subscribe(s.n, func(v any) {
		fn(v.(T))
	})
}

func (s *ReadonlySignal[T]) Destroy() {
	s.n.rt.destroyNode(s.n)
}
