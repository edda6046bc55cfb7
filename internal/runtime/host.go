package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ledmatrix/matrixstore/internal/manifest"
	"github.com/ledmatrix/matrixstore/internal/render"
)

// Sink receives the frame currently holding the matrix. The real
// implementation belongs to the display library; tests and the
// daemon's dry mode use a no-op.
type Sink interface {
	Present(id string, frame *render.Frame) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(id string, frame *render.Frame) error

func (f SinkFunc) Present(id string, frame *render.Frame) error { return f(id, frame) }

// instance is one active plugin in the rotation.
//
// mu serializes a slot turn against cleanup: a rescan dropping the
// instance blocks until the in-flight update/display finishes, so a
// plugin is never cleaned up mid-call.
type instance struct {
	mu        sync.Mutex
	id        string
	plugin    Plugin
	mode      string
	state     State
	lastFrame *render.Frame
}

// Host drives the cooperative rotation loop: one goroutine calls
// Update and Display on each active plugin in turn. A misbehaving
// plugin never takes down the rotation of the others.
type Host struct {
	mu        sync.Mutex
	instances []*instance

	sink   Sink
	log    *zap.Logger
	width  int
	height int
}

// NewHost creates a host rendering frames of the given geometry.
func NewHost(sink Sink, log *zap.Logger, width, height int) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		sink:   sink,
		log:    log,
		width:  width,
		height: height,
	}
}

// Add puts a constructed plugin into the rotation.
func (h *Host) Add(id string, p Plugin, mode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.instances = append(h.instances, &instance{
		id:     id,
		plugin: p,
		mode:   mode,
		state:  StateInitialized,
	})
}

// ActiveIDs lists the ids currently in the rotation.
func (h *Host) ActiveIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, len(h.instances))
	for i, inst := range h.instances {
		ids[i] = inst.id
	}
	return ids
}

// Discover scans the plugins directory, constructs every enabled
// plugin whose entry point has a registered factory, and replaces
// the current rotation with the result. Plugins dropped from the new
// set are cleaned up. Invalid directories and unknown entry points
// are logged and skipped.
func (h *Host) Discover(pluginsDir string, lookup func(id string) (bool, map[string]any)) error {
	records, err := scanManifests(pluginsDir)
	if err != nil {
		return err
	}

	var next []*instance
	for _, man := range records {
		enabled, settings := lookup(man.ID)
		if !enabled {
			continue
		}

		if existing := h.find(man.ID); existing != nil {
			next = append(next, existing)
			continue
		}

		p, err := NewPlugin(man.EntryPoint, Env{
			ID:       man.ID,
			Width:    h.width,
			Height:   h.height,
			Settings: settings,
		})
		if err != nil {
			h.log.Warn("skipping plugin", zap.String("id", man.ID), zap.Error(err))
			continue
		}

		next = append(next, &instance{
			id:     man.ID,
			plugin: p,
			mode:   man.DefaultMode(),
			state:  StateInitialized,
		})
	}

	h.mu.Lock()
	dropped := diffInstances(h.instances, next)
	h.instances = next
	h.mu.Unlock()

	for _, inst := range dropped {
		h.cleanupInstance(inst)
	}

	return nil
}

func (h *Host) find(id string) *instance {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, inst := range h.instances {
		if inst.id == id {
			return inst
		}
	}
	return nil
}

// Run executes the rotation loop until ctx is cancelled, then cleans
// up every plugin.
func (h *Host) Run(ctx context.Context) error {
	defer h.Close()

	for {
		h.mu.Lock()
		rotation := make([]*instance, len(h.instances))
		copy(rotation, h.instances)
		h.mu.Unlock()

		if len(rotation) == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
				continue
			}
		}

		for _, inst := range rotation {
			if err := h.slot(ctx, inst); err != nil {
				return err
			}
		}
	}
}

// slot runs one plugin's turn: update, display, present, hold.
func (h *Host) slot(ctx context.Context, inst *instance) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	inst.mu.Lock()
	if inst.state.IsTerminal() {
		// Dropped by a rescan between rotation snapshots
		inst.mu.Unlock()
		return nil
	}

	inst.state = StateUpdating
	if err := h.update(ctx, inst); err != nil {
		// Transient: log and keep showing last-known-good state
		h.log.Warn("plugin update failed", zap.String("id", inst.id), zap.Error(err))
	}

	inst.state = StateDisplaying
	frame := h.display(inst)
	if frame != nil {
		inst.lastFrame = frame
	}
	hold := inst.plugin.DisplayDuration()
	inst.mu.Unlock()

	if frame != nil {
		if err := h.sink.Present(inst.id, frame); err != nil {
			h.log.Warn("present failed", zap.String("id", inst.id), zap.Error(err))
		}
	}

	if hold <= 0 {
		hold = 10 * time.Second
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(hold):
		return nil
	}
}

// update calls Update with panic containment.
func (h *Host) update(ctx context.Context, inst *instance) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in update: %v", r)
		}
	}()
	return inst.plugin.Update(ctx)
}

// display calls Display with panic containment. A failing or
// panicking plugin yields its last good frame, or an error frame
// when it never rendered successfully.
func (h *Host) display(inst *instance) *render.Frame {
	frame, err := func() (f *render.Frame, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in display: %v", r)
			}
		}()
		return inst.plugin.Display(inst.mode)
	}()

	if err != nil {
		h.log.Error("plugin display failed", zap.String("id", inst.id), zap.Error(err))
		if inst.lastFrame != nil {
			return inst.lastFrame
		}
		return render.ErrorFrame(h.width, h.height, inst.id)
	}

	return frame
}

// Close cleans up every plugin in the rotation. Idempotent.
func (h *Host) Close() {
	h.mu.Lock()
	instances := h.instances
	h.instances = nil
	h.mu.Unlock()

	for _, inst := range instances {
		h.cleanupInstance(inst)
	}
}

func (h *Host) cleanupInstance(inst *instance) {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	if inst.state.IsTerminal() {
		return
	}
	if err := inst.plugin.Cleanup(); err != nil {
		h.log.Warn("plugin cleanup failed", zap.String("id", inst.id), zap.Error(err))
	}
	inst.state = StateCleanedUp
}

// diffInstances returns members of old absent from next.
func diffInstances(old, next []*instance) []*instance {
	keep := make(map[*instance]bool, len(next))
	for _, inst := range next {
		keep[inst] = true
	}

	var dropped []*instance
	for _, inst := range old {
		if !keep[inst] {
			dropped = append(dropped, inst)
		}
	}
	return dropped
}

// scanManifests loads every valid manifest under pluginsDir.
func scanManifests(pluginsDir string) ([]*manifest.Manifest, error) {
	entries, err := readPluginDirs(pluginsDir)
	if err != nil {
		return nil, err
	}

	var manifests []*manifest.Manifest
	for _, dir := range entries {
		man, err := manifest.Load(dir)
		if err != nil {
			continue
		}
		manifests = append(manifests, man)
	}
	return manifests, nil
}
