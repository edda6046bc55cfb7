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
	runtime.RegisterFactory("clock", NewClock)
}

// Clock displays the current time and date.
//
// Settings:
//
//	timezone         IANA zone name (default: local)
//	time_format      "12h" or "24h" (default: 12h)
//	show_seconds     include seconds (default: false)
//	show_date        render the date line in time mode (default: true)
//	time_color       [r, g, b] (default: white)
//	date_color       [r, g, b] (default: [255, 128, 64])
//	display_duration seconds to hold the slot (default: 10)
type Clock struct {
	width, height int
	loc           *time.Location
	format        string
	showDate      bool
	timeColor     color.RGBA
	dateColor     color.RGBA
	hold          time.Duration

	mu       sync.Mutex
	timeStr  string
	dateStr  string
	cleaned  bool
}

// NewClock builds a clock plugin from its settings block.
func NewClock(env runtime.Env) (runtime.Plugin, error) {
	c := &Clock{
		width:     env.Width,
		height:    env.Height,
		loc:       time.Local,
		showDate:  getBool(env.Settings, "show_date", true),
		timeColor: getColor(env.Settings, "time_color", color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		dateColor: getColor(env.Settings, "date_color", color.RGBA{R: 255, G: 128, B: 64, A: 255}),
		hold:      time.Duration(getInt(env.Settings, "display_duration", 10)) * time.Second,
	}

	if tz := getString(env.Settings, "timezone", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err == nil {
			c.loc = loc
		}
		// An invalid timezone falls back to local rather than
		// refusing to start
	}

	layout := "3:04 PM"
	if getString(env.Settings, "time_format", "12h") == "24h" {
		layout = "15:04"
	}
	if getBool(env.Settings, "show_seconds", false) {
		if layout == "15:04" {
			layout = "15:04:05"
		} else {
			layout = "3:04:05 PM"
		}
	}
	c.format = layout

	return c, nil
}

func (c *Clock) Update(ctx context.Context) error {
	now := time.Now().In(c.loc)

	c.mu.Lock()
	c.timeStr = now.Format(c.format)
	c.dateStr = now.Format("01/02/2006")
	c.mu.Unlock()

	return nil
}

func (c *Clock) Display(mode string) (*render.Frame, error) {
	c.mu.Lock()
	timeStr, dateStr := c.timeStr, c.dateStr
	c.mu.Unlock()

	f := render.NewFrame(c.width, c.height)

	switch mode {
	case "date":
		f.DrawText(center(c.width, dateStr), c.height/2+4, dateStr, c.dateColor)
	default: // "time" and anything unrecognized
		y := c.height/2 + 4
		if c.showDate && c.height >= 26 {
			y = c.height/2 - 3
			f.DrawText(center(c.width, dateStr), y+13, dateStr, c.dateColor)
		}
		f.DrawText(center(c.width, timeStr), y, timeStr, c.timeColor)
	}

	return f, nil
}

func (c *Clock) DisplayDuration() time.Duration {
	return c.hold
}

func (c *Clock) Cleanup() error {
	c.mu.Lock()
	c.cleaned = true
	c.mu.Unlock()
	return nil
}

// center returns the x offset that centers s horizontally.
func center(width int, s string) int {
	x := (width - render.TextWidth(s)) / 2
	if x < 0 {
		return 0
	}
	return x
}
