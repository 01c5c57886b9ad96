package inspect

import "github.com/signalforge/signalforge/forge"

type EventType uint8

const (
	EventCreate EventType = iota + 1
	EventUpdate
	EventDestroy
)

type Event struct {
	Type     EventType
	ID       uint64
	Kind     forge.NodeKind
	OldValue any
	NewValue any
	Cause    forge.UpdateCause
}

// Recorder captures every inspector callback for later assertion.
type Recorder struct {
	nextID uint64
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) OnCreate(kind forge.NodeKind, initialValue any) uint64 {
	r.nextID++
	r.events = append(r.events, Event{
		Type:     EventCreate,
		ID:       r.nextID,
		Kind:     kind,
		NewValue: initialValue,
	})
	return r.nextID
}

func (r *Recorder) OnUpdate(id uint64, oldValue, newValue any, cause forge.UpdateCause) {
	r.events = append(r.events, Event{
		Type:     EventUpdate,
		ID:       id,
		OldValue: oldValue,
		NewValue: newValue,
		Cause:    cause,
	})
}

func (r *Recorder) OnDestroy(id uint64) {
	r.events = append(r.events, Event{Type: EventDestroy, ID: id})
}

func (r *Recorder) Events() []Event {
	return r.events
}

// EventsFor filters the captured events down to a single node id.
func (r *Recorder) EventsFor(id uint64) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.ID == id {
			out = append(out, ev)
		}
	}
	return out
}
