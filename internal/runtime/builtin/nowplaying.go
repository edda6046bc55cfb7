package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"net/http"
	"sync"
	"time"

	"github.com/ledmatrix/matrixstore/internal/render"
	"github.com/ledmatrix/matrixstore/internal/runtime"
)

func init() {
	runtime.RegisterFactory("nowplaying", NewNowPlaying)
}

// Track is the currently playing item reported by the companion
// service.
type Track struct {
	Artist  string `json:"artist"`
	Title   string `json:"title"`
	Album   string `json:"album,omitempty"`
	Playing bool   `json:"playing"`
}

// NowPlaying shows the current track from a companion music service.
// A background goroutine polls the service on its own cadence so the
// host's render call never blocks on the network; the handoff goes
// through an atomically-swapped cell.
//
// Settings:
//
//	service_url      companion service endpoint returning a Track
//	poll_interval    seconds between polls (default: 5)
//	text_color       [r, g, b] (default: [0, 255, 0])
//	display_duration seconds to hold the slot (default: 10)
type NowPlaying struct {
	width, height int
	serviceURL    string
	textColor     color.RGBA
	hold          time.Duration

	track runtime.Cell[Track]

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewNowPlaying builds the plugin and starts its poller.
func NewNowPlaying(env runtime.Env) (runtime.Plugin, error) {
	url := getString(env.Settings, "service_url", "")
	if url == "" {
		return nil, errors.New("nowplaying: service_url setting is required")
	}

	np := &NowPlaying{
		width:      env.Width,
		height:     env.Height,
		serviceURL: url,
		textColor:  getColor(env.Settings, "text_color", color.RGBA{G: 255, A: 255}),
		hold:       time.Duration(getInt(env.Settings, "display_duration", 10)) * time.Second,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	interval := time.Duration(getInt(env.Settings, "poll_interval", 5)) * time.Second
	go np.poll(interval)

	return np, nil
}

// poll is the single producer feeding the track cell.
func (np *NowPlaying) poll(interval time.Duration) {
	defer close(np.done)

	client := &http.Client{Timeout: 10 * time.Second}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if track, err := fetchTrack(client, np.serviceURL); err == nil {
			np.track.Store(track)
		}
		// Poll errors retain the last-known-good track

		select {
		case <-np.stop:
			return
		case <-ticker.C:
		}
	}
}

func fetchTrack(client *http.Client, url string) (Track, error) {
	var track Track

	resp, err := client.Get(url)
	if err != nil {
		return track, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return track, fmt.Errorf("service returned %s", resp.Status)
	}

	err = json.NewDecoder(resp.Body).Decode(&track)
	return track, err
}

// Update is a no-op: the background poller owns data freshness.
func (np *NowPlaying) Update(ctx context.Context) error {
	return nil
}

func (np *NowPlaying) Display(mode string) (*render.Frame, error) {
	f := render.NewFrame(np.width, np.height)

	track, ok := np.track.Load()
	if !ok || !track.Playing {
		f.DrawText(1, np.height/2+4, "not playing", color.RGBA{R: 128, G: 128, B: 128, A: 255})
		return f, nil
	}

	switch mode {
	case "artist":
		f.DrawText(1, np.height/2+4, track.Artist, np.textColor)
	default: // "track" and anything unrecognized
		if np.height >= 26 {
			f.DrawText(1, np.height/2-3, track.Title, np.textColor)
			f.DrawText(1, np.height/2+10, track.Artist, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		} else {
			f.DrawText(1, np.height/2+4, track.Title, np.textColor)
		}
	}

	return f, nil
}

func (np *NowPlaying) DisplayDuration() time.Duration {
	return np.hold
}

// Cleanup stops the poller and waits for it to exit. Safe to call
// multiple times.
func (np *NowPlaying) Cleanup() error {
	np.stopOnce.Do(func() {
		close(np.stop)
	})
	<-np.done
	return nil
}
