// Package render provides the pre-rendered pixel surface plugins
// hand to the display library. Nothing here talks to hardware.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Frame is a fixed-size RGBA surface for one rotation slot.
type Frame struct {
	Width  int
	Height int

	img *image.RGBA
}

// NewFrame creates a black frame of the given dimensions.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Image exposes the underlying pixel buffer.
func (f *Frame) Image() *image.RGBA {
	return f.img
}

// Fill paints the whole frame with a single color.
func (f *Frame) Fill(c color.Color) {
	draw.Draw(f.img, f.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Set colors a single pixel; out-of-bounds coordinates are ignored.
func (f *Frame) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	f.img.Set(x, y, c)
}

// DrawText renders s at (x, y) using the built-in 7x13 face, where y
// is the text baseline. Matrix panels are tiny, one face is enough.
func (f *Frame) DrawText(x, y int, s string, c color.Color) {
	d := font.Drawer{
		Dst:  f.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// TextWidth measures s in pixels for the built-in face, for centering
// and scroll offsets.
func TextWidth(s string) int {
	d := font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(s).Ceil()
}

// ErrorFrame builds the placeholder the host shows when a plugin's
// render fails, instead of crashing the rotation loop.
func ErrorFrame(width, height int, msg string) *Frame {
	f := NewFrame(width, height)
	f.Fill(color.RGBA{A: 255})
	f.DrawText(1, height/2, "ERR", color.RGBA{R: 255, A: 255})
	if msg != "" && height >= 26 {
		f.DrawText(1, height/2+13, msg, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	}
	return f
}
