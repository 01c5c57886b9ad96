package forge

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// NodeKind tags what a graph record is backing.
type NodeKind uint8

const (
	KindSignal NodeKind = iota
	KindComputed
	KindEffect
)

func (k NodeKind) String() string {
	switch k {
	case KindSignal:
		return "signal"
	case KindComputed:
		return "computed"
	case KindEffect:
		return "effect"
	default:
		return "unknown"
	}
}

type nodeFlags uint8

const (
	flagDirty nodeFlags = 1 << iota
	flagScheduled
	flagComputing
	flagHasListeners
	flagDestroyed
)

type listenerEntry struct {
	id int
	fn func(value any)
}

// node is the pooled record backing every signal, computed and effect.
// deps/subs are kept symmetric: n is in dep.subs iff dep is in n.deps.
// subs stays an ordered list so propagation, and with it effect run
// order, is deterministic.
type node struct {
	rt     *Runtime
	kind   NodeKind
	flags  nodeFlags
	hookID uint64

	value   any
	compute func() (any, error)
	equals  func(prev, next any) bool
	cleanup CleanupFn

	deps mapset.Set[*node]
	subs []*node

	listeners      []listenerEntry
	nextListenerID int
}

func (n *node) removeSub(sub *node) {
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			return
		}
	}
}

// CleanupFn is returned by an effect body and runs before the next
// re-run of that effect and on dispose.
type CleanupFn func()

// EffectFn is an effect body. The returned cleanup may be nil.
type EffectFn func() (CleanupFn, error)

type OnErrorFunc func(err error)

// UpdateCause tells an Inspector why a node's value moved.
type UpdateCause uint8

const (
	CauseWrite UpdateCause = iota + 1
	CauseRecompute
)

func (c UpdateCause) String() string {
	switch c {
	case CauseWrite:
		return "write"
	case CauseRecompute:
		return "recompute"
	default:
		return "unknown"
	}
}

// Inspector is the collaborator hook boundary. OnCreate returns an
// external id for the node; returning 0 opts the node out of further
// notifications, so an unobserved runtime pays a single branch per
// update.
type Inspector interface {
	OnCreate(kind NodeKind, initialValue any) uint64
	OnUpdate(id uint64, oldValue, newValue any, cause UpdateCause)
	OnDestroy(id uint64)
}

type nopInspector struct{}

func (nopInspector) OnCreate(NodeKind, any) uint64          { return 0 }
func (nopInspector) OnUpdate(uint64, any, any, UpdateCause) {}
func (nopInspector) OnDestroy(uint64)                       {}
