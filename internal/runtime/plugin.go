// Package runtime defines the contract every display plugin
// implements and the host loop that rotates through them.
package runtime

import (
	"context"
	"time"

	"github.com/ledmatrix/matrixstore/internal/render"
)

// Plugin is the minimal interface every plugin variant (clock,
// weather, scoreboard, ticker, ...) must satisfy so the host
// rotation loop can drive them uniformly.
type Plugin interface {
	// Update refreshes internal state, possibly performing network
	// I/O. Ordinary transient failures return an error for the host
	// to log; the plugin keeps its last-known-good state either way.
	Update(ctx context.Context) error

	// Display renders current state for a display mode identifier.
	// It is a pure function of internal state plus mode. Unknown
	// modes fall back to the plugin's default mode, never fail.
	Display(mode string) (*render.Frame, error)

	// DisplayDuration returns how long the host holds this plugin's
	// output before rotating to the next one.
	DisplayDuration() time.Duration

	// Cleanup releases held resources (connections, background
	// pollers). Idempotent: safe to call any number of times.
	Cleanup() error
}

// Env is what the host hands a factory when constructing a plugin
// instance: its settings block plus the frame geometry to render at.
type Env struct {
	ID       string
	Width    int
	Height   int
	Settings map[string]any
}

// Factory constructs a plugin instance from its environment.
type Factory func(env Env) (Plugin, error)
