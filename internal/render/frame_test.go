package render

import (
	"bytes"
	"image/color"
	"testing"
)

func TestNewFrameGeometry(t *testing.T) {
	f := NewFrame(64, 32)
	if f.Width != 64 || f.Height != 32 {
		t.Fatalf("unexpected geometry: %dx%d", f.Width, f.Height)
	}

	b := f.Image().Bounds()
	if b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("image bounds disagree with frame: %v", b)
	}
}

func TestSetIgnoresOutOfBounds(t *testing.T) {
	f := NewFrame(8, 8)
	before := make([]byte, len(f.Image().Pix))
	copy(before, f.Image().Pix)

	f.Set(-1, 0, color.White)
	f.Set(0, -1, color.White)
	f.Set(8, 0, color.White)
	f.Set(0, 8, color.White)

	if !bytes.Equal(before, f.Image().Pix) {
		t.Fatalf("out-of-bounds Set must not touch the buffer")
	}

	f.Set(3, 4, color.White)
	if bytes.Equal(before, f.Image().Pix) {
		t.Fatalf("in-bounds Set must change the buffer")
	}
}

func TestDrawTextRendersPixels(t *testing.T) {
	f := NewFrame(64, 32)
	blank := make([]byte, len(f.Image().Pix))

	f.DrawText(1, 16, "12:34", color.RGBA{R: 255, G: 255, B: 255, A: 255})
	if bytes.Equal(blank, f.Image().Pix) {
		t.Fatalf("DrawText left the frame blank")
	}
}

func TestTextWidth(t *testing.T) {
	if TextWidth("") != 0 {
		t.Fatalf("empty string must measure zero")
	}
	if TextWidth("12:34") <= TextWidth("1") {
		t.Fatalf("longer strings must measure wider")
	}
}

func TestErrorFrameNotBlank(t *testing.T) {
	f := ErrorFrame(64, 32, "weather")
	if f.Width != 64 || f.Height != 32 {
		t.Fatalf("unexpected geometry: %dx%d", f.Width, f.Height)
	}

	blank := make([]byte, len(f.Image().Pix))
	if bytes.Equal(blank, f.Image().Pix) {
		t.Fatalf("error frame must render something")
	}
}
