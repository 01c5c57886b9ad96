// Package inspect provides collaborator-hook implementations for the
// forge runtime: a structured-logging inspector and an in-memory event
// recorder.
package inspect

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/signalforge/signalforge/forge"
)

// LogInspector emits one structured log event per node lifecycle event.
type LogInspector struct {
	log    zerolog.Logger
	nextID uint64
}

func NewLogInspector(w io.Writer) *LogInspector {
	return &LogInspector{
		log: zerolog.New(w).With().Timestamp().Str("component", "signalforge").Logger(),
	}
}

func (li *LogInspector) OnCreate(kind forge.NodeKind, initialValue any) uint64 {
	li.nextID++
	li.log.Debug().
		Uint64("id", li.nextID).
		Str("kind", kind.String()).
		Interface("initial", initialValue).
		Msg("node created")
	return li.nextID
}

func (li *LogInspector) OnUpdate(id uint64, oldValue, newValue any, cause forge.UpdateCause) {
	li.log.Debug().
		Uint64("id", id).
		Interface("old", oldValue).
		Interface("new", newValue).
		Str("cause", cause.String()).
		Msg("node updated")
}

func (li *LogInspector) OnDestroy(id uint64) {
	li.log.Debug().Uint64("id", id).Msg("node destroyed")
}
