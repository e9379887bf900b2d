package draw

import (
	"image"
	"testing"

	"github.com/BeatGlow/tft/pixel"
)

func TestText(t *testing.T) {
	img := pixel.NewImage(32, 32)
	r := Text(img, image.Pt(2, 3), DefaultFace, "Hi", pixel.White)

	if want := image.Rect(2, 3, 16, 16); r != want {
		t.Fatalf("expected extent %v, got %v", want, r)
	}

	var inside int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGB565At(x, y)
			if c == (pixel.RGB565{}) {
				continue
			}
			if !image.Pt(x, y).In(r) {
				t.Fatalf("expected no pixels outside %v, found one at (%d,%d)", r, x, y)
			}
			if c != pixel.White {
				t.Fatalf("expected %#04x at (%d,%d), got %#04x", pixel.White.V, x, y, c.V)
			}
			inside++
		}
	}
	if inside == 0 {
		t.Fatal("expected glyph pixels inside extent")
	}
}

func TestTextBox(t *testing.T) {
	img := pixel.NewImage(32, 32)
	r := TextBox(img, image.Pt(4, 4), DefaultFace, "Hi", pixel.White, pixel.Blue)

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if c := img.RGB565At(x, y); c != pixel.White && c != pixel.Blue {
				t.Fatalf("expected text or background at (%d,%d), got %#04x", x, y, c.V)
			}
		}
	}
	if got := img.RGB565At(r.Min.X-1, r.Min.Y); got != (pixel.RGB565{}) {
		t.Fatal("expected pixel left of the box untouched")
	}
	if got := img.RGB565At(r.Max.X, r.Min.Y); got != (pixel.RGB565{}) {
		t.Fatal("expected pixel right of the box untouched")
	}
}
