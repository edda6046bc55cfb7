package builtin

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ledmatrix/matrixstore/internal/runtime"
)

func TestNowPlayingRequiresServiceURL(t *testing.T) {
	_, err := NewNowPlaying(runtime.Env{Width: 64, Height: 32})
	if err == nil {
		t.Fatalf("expected an error without service_url")
	}
}

func TestNowPlayingPollsAndStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"artist": "Boards of Canada", "title": "Roygbiv", "playing": true}`)
	}))
	defer srv.Close()

	p, err := NewNowPlaying(runtime.Env{
		Width:  64,
		Height: 32,
		Settings: map[string]any{
			"service_url":   srv.URL,
			"poll_interval": 1,
		},
	})
	if err != nil {
		t.Fatalf("NewNowPlaying returned error: %v", err)
	}
	np := p.(*NowPlaying)

	// The poller fetches immediately on start
	deadline := time.Now().Add(2 * time.Second)
	for {
		if track, ok := np.track.Load(); ok {
			if track.Title != "Roygbiv" || !track.Playing {
				t.Fatalf("unexpected track: %+v", track)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("poller never published a track")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := np.Display("track"); err != nil {
		t.Fatalf("Display returned error: %v", err)
	}

	// Cleanup stops the poller and is safe to repeat
	if err := np.Cleanup(); err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}
	if err := np.Cleanup(); err != nil {
		t.Fatalf("second Cleanup returned error: %v", err)
	}

	select {
	case <-np.done:
	default:
		t.Fatalf("poller goroutine still running after Cleanup")
	}
}

func TestNowPlayingDisplaysPlaceholderWithoutData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := NewNowPlaying(runtime.Env{
		Width:  64,
		Height: 32,
		Settings: map[string]any{"service_url": srv.URL},
	})
	if err != nil {
		t.Fatalf("NewNowPlaying returned error: %v", err)
	}
	defer p.Cleanup()

	frame, err := p.Display("track")
	if err != nil {
		t.Fatalf("Display must not fail without data: %v", err)
	}
	if frame == nil {
		t.Fatalf("Display must return a placeholder frame")
	}
}
