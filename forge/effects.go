package forge

// Effect creates a side-effect node. The body runs immediately and
// re-runs whenever a dependency changes; a returned cleanup runs before
// each re-run and on dispose. Errors from the body are routed to the
// runtime's OnErrorFunc.
func Effect(rt *Runtime, fn EffectFn) (dispose func()) {
	n := rt.newNode(KindEffect, nil)
	n.compute = func() (any, error) {
		cleanup, err := fn()
		if err != nil {
			return nil, err
		}
		n.cleanup = cleanup
		return nil, nil
	}
	n.flags |= flagDirty
	rt.recompute(n)
	return func() {
		rt.destroyNode(n)
	}
}
