package forge_test

import (
	"testing"

	"github.com/signalforge/signalforge/forge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeFiresOnRealChangeOnly(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	a := forge.Signal(rs, 1)
	var seen []int
	unsub := a.Subscribe(func(v int) {
		seen = append(seen, v)
	})
	defer unsub()

	a.SetValue(1) // unchanged, suppressed
	assert.Empty(t, seen)

	a.SetValue(2)
	a.SetValue(2) // unchanged again
	a.SetValue(3)
	assert.Equal(t, []int{2, 3}, seen)
}

func TestUnchangedWritePerformsNoPropagation(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	a := forge.Signal(rs, 5)
	callCount := 0
	c := forge.Computed(rs, func(oldValue int) int {
		callCount++
		return a.Value()
	})
	require.Equal(t, 5, c.Value())

	a.SetValue(5)
	require.Equal(t, 5, c.Value())
	assert.Equal(t, 1, callCount)
}

func TestListenersInvokedInInsertionOrder(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	a := forge.Signal(rs, 0)
	var order []string
	a.Subscribe(func(int) { order = append(order, "first") })
	a.Subscribe(func(int) { order = append(order, "second") })
	a.Subscribe(func(int) { order = append(order, "third") })

	a.SetValue(1)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	a := forge.Signal(rs, 0)
	calls := 0
	unsub := a.Subscribe(func(int) { calls++ })

	a.SetValue(1)
	require.Equal(t, 1, calls)

	unsub()
	a.SetValue(2)
	assert.Equal(t, 1, calls)

	// Unsubscribing twice is harmless.
	assert.NotPanics(t, unsub)
}

func TestPanickingListenerDoesNotStarveOthers(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	a := forge.Signal(rs, 0)
	var order []string
	a.Subscribe(func(int) { order = append(order, "first") })
	a.Subscribe(func(int) { panic("listener boom") })
	a.Subscribe(func(int) { order = append(order, "third") })

	assert.PanicsWithValue(t, "listener boom", func() {
		a.SetValue(1)
	})
	// Both healthy listeners still ran and the value stuck.
	assert.Equal(t, []string{"first", "third"}, order)
	assert.Equal(t, 1, a.Value())
}

func TestListenerPanicDoesNotAbandonFlush(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	a := forge.Signal(rs, 1)
	c1 := forge.Computed(rs, func(oldValue int) int {
		return a.Value() + 1
	})
	c2 := forge.Computed(rs, func(oldValue int) int {
		return a.Value() + 2
	})
	require.Equal(t, 2, c1.Value())
	require.Equal(t, 3, c2.Value())

	c1.Subscribe(func(int) { panic("c1 boom") })
	var seen []int
	c2.Subscribe(func(v int) {
		seen = append(seen, v)
	})

	assert.PanicsWithValue(t, "c1 boom", func() {
		a.SetValue(10)
	})
	// The flush kept draining past the failing node, so c2 was
	// recomputed and notified in the same flush.
	assert.Equal(t, []int{12}, seen)
	assert.Equal(t, 11, c1.Value())
	assert.Equal(t, 12, c2.Value())
}

func TestLeafListenerPanicStillFlushesDependents(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	a := forge.Signal(rs, 1)
	doubled := forge.Computed(rs, func(oldValue int) int {
		return a.Value() * 2
	})
	require.Equal(t, 2, doubled.Value())

	var seen []int
	doubled.Subscribe(func(v int) {
		seen = append(seen, v)
	})
	a.Subscribe(func(int) { panic("leaf boom") })

	assert.PanicsWithValue(t, "leaf boom", func() {
		a.SetValue(5)
	})
	assert.Equal(t, []int{10}, seen)
	assert.Equal(t, 10, doubled.Value())
}

func TestComputedSubscribe(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	a := forge.Signal(rs, 2)
	double := forge.Computed(rs, func(oldValue int) int {
		return a.Value() * 2
	})
	double.Value()

	var seen []int
	unsub := double.Subscribe(func(v int) {
		seen = append(seen, v)
	})
	defer unsub()

	a.SetValue(3)
	assert.Equal(t, []int{6}, seen)

	// A write that leaves the derived value unchanged stays silent.
	a.SetValue(3)
	assert.Equal(t, []int{6}, seen)
}

func TestUpdateWriter(t *testing.T) {
	rs := forge.CreateRuntime(failOnError(t))

	a := forge.Signal(rs, 10)
	a.Update(func(prev int) int { return prev + 5 })
	assert.Equal(t, 15, a.Value())
}
