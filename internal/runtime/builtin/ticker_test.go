package builtin

import (
	"context"
	"testing"

	"github.com/ledmatrix/matrixstore/internal/runtime"
)

func TestTickerCyclesHeadlines(t *testing.T) {
	p, err := NewTicker(runtime.Env{
		Width:  64,
		Height: 32,
		Settings: map[string]any{
			"headlines": []any{"first", "second", "third"},
		},
	})
	if err != nil {
		t.Fatalf("NewTicker returned error: %v", err)
	}
	tk := p.(*Ticker)

	if tk.headlines[tk.index] != "first" {
		t.Fatalf("expected to start at the first headline")
	}

	for i, want := range []string{"second", "third", "first"} {
		if err := tk.Update(context.Background()); err != nil {
			t.Fatalf("Update %d returned error: %v", i, err)
		}
		if got := tk.headlines[tk.index]; got != want {
			t.Fatalf("after %d updates expected %q, got %q", i+1, want, got)
		}
	}
}

func TestTickerEmptyHeadlines(t *testing.T) {
	p, err := NewTicker(runtime.Env{Width: 64, Height: 32})
	if err != nil {
		t.Fatalf("NewTicker returned error: %v", err)
	}

	if err := p.Update(context.Background()); err != nil {
		t.Fatalf("Update on an empty ticker must not fail: %v", err)
	}
	frame, err := p.Display("")
	if err != nil || frame == nil {
		t.Fatalf("Display on an empty ticker must return a blank frame, err=%v", err)
	}
}
