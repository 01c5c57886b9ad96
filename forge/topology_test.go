package forge_test

import (
	"fmt"
	"testing"

	"github.com/signalforge/signalforge/forge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failOnError(t *testing.T) forge.OnErrorFunc {
	return func(err error) {
		assert.FailNow(t, err.Error())
	}
}

func TestDiamondSingleRecompute(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	// "D" must only update once when "A" receives an update.
	//     A
	//   /   \
	//  B     C
	//   \   /
	//     D
	a := forge.Signal(rs, 1)
	b := forge.Computed(rs, func(oldValue int) int {
		return a.Value() + 1
	})
	c := forge.Computed(rs, func(oldValue int) int {
		return a.Value() + 2
	})
	callCount := 0
	d := forge.Computed(rs, func(oldValue int) int {
		callCount++
		return b.Value() + c.Value()
	})

	assert.Equal(t, 5, d.Value())
	assert.Equal(t, 1, callCount)

	a.SetValue(10)
	assert.Equal(t, 23, d.Value())
	assert.Equal(t, 2, callCount)
}

func TestDiamondTailSingleRecompute(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	// "E" is likely updated twice if the dirty flags don't gate re-entry.
	//     A
	//   /   \
	//  B     C
	//   \   /
	//     D
	//     |
	//     E
	a := forge.Signal(rs, "a")
	b := forge.Computed(rs, func(oldValue string) string {
		return a.Value()
	})
	c := forge.Computed(rs, func(oldValue string) string {
		return a.Value()
	})
	d := forge.Computed(rs, func(oldValue string) string {
		return b.Value() + " " + c.Value()
	})

	eCallCount := 0
	e := forge.Computed(rs, func(oldValue string) string {
		eCallCount++
		return d.Value()
	})

	assert.Equal(t, "a a", e.Value())
	assert.Equal(t, 1, eCallCount)

	a.SetValue("aa")
	assert.Equal(t, "aa aa", e.Value())
	assert.Equal(t, 2, eCallCount)
}

func TestDropAbaUpdates(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	//     A
	//   / |
	//  B  |
	//   \ |
	//     C
	//     |
	//     D
	a := forge.Signal(rs, 2)
	b := forge.Computed(rs, func(oldValue int) int {
		return a.Value() - 1
	})
	c := forge.Computed(rs, func(oldValue int) int {
		return a.Value() + b.Value()
	})
	callCount := 0
	d := forge.Computed(rs, func(oldValue string) string {
		callCount++
		return fmt.Sprintf("d: %d", c.Value())
	})

	assert.Equal(t, "d: 3", d.Value())
	assert.Equal(t, 1, callCount)

	a.SetValue(4)
	assert.Equal(t, "d: 7", d.Value())
	assert.Equal(t, 2, callCount)
}

func TestUnchangedComputedDoesNotNotifyDownstream(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	// "B" always produces the same value, so C recomputes but its
	// listeners never fire again after the first change settles.
	// A->B->C
	a := forge.Signal(rs, "a")
	b := forge.Computed(rs, func(oldValue string) string {
		a.Value()
		return "foo"
	})
	c := forge.Computed(rs, func(oldValue string) string {
		return b.Value()
	})

	require.Equal(t, "foo", c.Value())

	notified := 0
	unsub := c.Subscribe(func(string) {
		notified++
	})
	defer unsub()

	a.SetValue("aa")
	assert.Equal(t, "foo", c.Value())
	assert.Equal(t, 0, notified)
}

func TestOnlyTracksSignalsActuallyRead(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	//    *A
	//   /   \
	// *B     C <- never read, never recomputed by writes
	a := forge.Signal(rs, "a")
	b := forge.Computed(rs, func(oldValue string) string {
		return a.Value()
	})
	callCount := 0
	forge.Computed(rs, func(oldValue string) string {
		callCount++
		return a.Value()
	})

	assert.Equal(t, "a", b.Value())
	assert.Equal(t, 0, callCount)

	a.SetValue("aa")
	assert.Equal(t, "aa", b.Value())
	assert.Equal(t, 0, callCount)
}

func TestDependenciesRebuiltEachRun(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	// While gate is true the computed reads "left", afterwards "right".
	// Once switched, writes to "left" must not recompute it anymore.
	gate := forge.Signal(rs, true)
	left := forge.Signal(rs, "l")
	right := forge.Signal(rs, "r")

	callCount := 0
	c := forge.Computed(rs, func(oldValue string) string {
		callCount++
		if gate.Value() {
			return left.Value()
		}
		return right.Value()
	})

	require.Equal(t, "l", c.Value())
	require.Equal(t, 1, callCount)

	gate.SetValue(false)
	require.Equal(t, "r", c.Value())
	require.Equal(t, 2, callCount)

	left.SetValue("ll")
	require.Equal(t, "r", c.Value())
	require.Equal(t, 2, callCount)

	right.SetValue("rr")
	require.Equal(t, "rr", c.Value())
	require.Equal(t, 3, callCount)
}

func TestLazyComputedNotRunUntilRead(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	a := forge.Signal(rs, 1)
	callCount := 0
	c := forge.Computed(rs, func(oldValue int) int {
		callCount++
		return a.Value() * 2
	})

	assert.Equal(t, 0, callCount)
	assert.Equal(t, 2, c.Value())
	assert.Equal(t, 1, callCount)

	// Clean reads hit the cache.
	c.Value()
	c.Value()
	assert.Equal(t, 1, callCount)
}
