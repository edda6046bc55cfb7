package builtin

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ledmatrix/matrixstore/internal/runtime"
)

func newTestClock(t *testing.T, settings map[string]any) *Clock {
	t.Helper()

	p, err := NewClock(runtime.Env{ID: "clock", Width: 64, Height: 32, Settings: settings})
	if err != nil {
		t.Fatalf("NewClock returned error: %v", err)
	}
	return p.(*Clock)
}

func TestClockTimeFormats(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		layout   string
	}{
		{"defaults", nil, "3:04 PM"},
		{"24h", map[string]any{"time_format": "24h"}, "15:04"},
		{"12h seconds", map[string]any{"show_seconds": true}, "3:04:05 PM"},
		{"24h seconds", map[string]any{"time_format": "24h", "show_seconds": true}, "15:04:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClock(t, tt.settings)
			if c.format != tt.layout {
				t.Fatalf("expected layout %q, got %q", tt.layout, c.format)
			}
		})
	}
}

func TestClockInvalidTimezoneFallsBackToLocal(t *testing.T) {
	c := newTestClock(t, map[string]any{"timezone": "Not/AZone"})
	if c.loc != time.Local {
		t.Fatalf("invalid timezone must fall back to local, got %v", c.loc)
	}
}

func TestClockDisplayDurationSetting(t *testing.T) {
	c := newTestClock(t, map[string]any{"display_duration": 7})
	if c.DisplayDuration() != 7*time.Second {
		t.Fatalf("unexpected hold: %v", c.DisplayDuration())
	}

	// JSON-decoded settings arrive as float64
	c = newTestClock(t, map[string]any{"display_duration": float64(3)})
	if c.DisplayDuration() != 3*time.Second {
		t.Fatalf("float settings must work: %v", c.DisplayDuration())
	}
}

func TestClockUnknownModeFallsBackToDefault(t *testing.T) {
	c := newTestClock(t, nil)
	if err := c.Update(context.Background()); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	timeFrame, err := c.Display("time")
	if err != nil {
		t.Fatalf("Display(time) returned error: %v", err)
	}
	unknownFrame, err := c.Display("bogus")
	if err != nil {
		t.Fatalf("Display(bogus) returned error: %v", err)
	}

	if !bytes.Equal(timeFrame.Image().Pix, unknownFrame.Image().Pix) {
		t.Fatalf("an unknown mode must render like the default mode")
	}
}

func TestClockDateModeRendersSomething(t *testing.T) {
	c := newTestClock(t, nil)
	if err := c.Update(context.Background()); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	frame, err := c.Display("date")
	if err != nil {
		t.Fatalf("Display(date) returned error: %v", err)
	}

	blank := make([]byte, len(frame.Image().Pix))
	if bytes.Equal(frame.Image().Pix, blank) {
		t.Fatalf("date mode rendered an empty frame")
	}
}

func TestClockCleanupIdempotent(t *testing.T) {
	c := newTestClock(t, nil)
	if err := c.Cleanup(); err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}
	if err := c.Cleanup(); err != nil {
		t.Fatalf("second Cleanup returned error: %v", err)
	}
}
