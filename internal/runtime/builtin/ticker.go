package builtin

import (
	"context"
	"image/color"
	"sync"
	"time"

	"github.com/ledmatrix/matrixstore/internal/render"
	"github.com/ledmatrix/matrixstore/internal/runtime"
)

func init() {
	runtime.RegisterFactory("ticker", NewTicker)
}

// Ticker cycles through a configured list of headlines, one per
// rotation slot.
//
// Settings:
//
//	headlines        list of strings to cycle through
//	text_color       [r, g, b] (default: [0, 255, 255])
//	display_duration seconds per headline (default: 8)
type Ticker struct {
	width, height int
	textColor     color.RGBA
	hold          time.Duration

	mu        sync.Mutex
	headlines []string
	index     int
}

// NewTicker builds a ticker plugin from its settings block.
func NewTicker(env runtime.Env) (runtime.Plugin, error) {
	return &Ticker{
		width:     env.Width,
		height:    env.Height,
		headlines: getStrings(env.Settings, "headlines"),
		textColor: getColor(env.Settings, "text_color", color.RGBA{G: 255, B: 255, A: 255}),
		hold:      time.Duration(getInt(env.Settings, "display_duration", 8)) * time.Second,
	}, nil
}

// Update advances to the next headline.
func (t *Ticker) Update(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.headlines) > 0 {
		t.index = (t.index + 1) % len(t.headlines)
	}
	return nil
}

func (t *Ticker) Display(mode string) (*render.Frame, error) {
	t.mu.Lock()
	var headline string
	if len(t.headlines) > 0 {
		headline = t.headlines[t.index]
	}
	t.mu.Unlock()

	f := render.NewFrame(t.width, t.height)
	if headline == "" {
		return f, nil
	}

	// Single mode; unknown mode identifiers render the same way
	f.DrawText(1, t.height/2+4, headline, t.textColor)
	return f, nil
}

func (t *Ticker) DisplayDuration() time.Duration {
	return t.hold
}

func (t *Ticker) Cleanup() error {
	return nil
}
