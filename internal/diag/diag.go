// Package diag wraps zerolog as an optional trace hook for the codec.
// The core parser/generator never imports a logger directly (spec.md §5:
// the engine has no callbacks into application code); instead a *Tracer
// is threaded through as an injected, nil-safe collaborator, the same
// shape spec.md §6 uses for the host-supplied Date/UID/UTF-16 helpers.
package diag

import (
	"io"

	"github.com/rs/zerolog"
)

// Tracer emits debug-level trace events. A nil *Tracer is valid and every
// method on it is a no-op, so passing nil keeps the engine silent by
// default.
type Tracer struct {
	log zerolog.Logger
}

// New builds a Tracer writing to w at the given level.
func New(w io.Writer, level zerolog.Level) *Tracer {
	return &Tracer{log: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Debugf is a no-op on a nil Tracer.
func (t *Tracer) Debugf(format string, args ...interface{}) {
	if t == nil {
		return
	}
	t.log.Debug().Msgf(format, args...)
}
