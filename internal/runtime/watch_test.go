package runtime

import (
	"context"
	"testing"
	"time"
)

func TestWatchPicksUpNewPlugin(t *testing.T) {
	RegisterFactory("watch-test-entry", func(env Env) (Plugin, error) {
		return &fakePlugin{hold: time.Millisecond}, nil
	})

	root := t.TempDir()
	lookup := func(id string) (bool, map[string]any) { return true, nil }

	h := NewHost(newRecordingSink(), nil, 64, 32)
	if err := h.Discover(root, lookup); err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(h.ActiveIDs()) != 0 {
		t.Fatalf("rotation should start empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		h.Watch(ctx, root, lookup)
	}()

	// Give the watcher a moment to register before writing
	time.Sleep(100 * time.Millisecond)
	writePluginDir(t, root, "clock", "watch-test-entry")

	deadline := time.Now().Add(5 * time.Second)
	for {
		if ids := h.ActiveIDs(); len(ids) == 1 && ids[0] == "clock" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("watcher never discovered the new plugin, active=%v", h.ActiveIDs())
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case <-watchDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("Watch did not stop on context cancellation")
	}
}

func TestReadPluginDirsMissingRoot(t *testing.T) {
	dirs, err := readPluginDirs("/does/not/exist")
	if err != nil {
		t.Fatalf("a missing plugins dir must not be an error: %v", err)
	}
	if dirs != nil {
		t.Fatalf("expected no dirs, got %v", dirs)
	}
}
