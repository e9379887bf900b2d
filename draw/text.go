package draw

import (
	"image"
	"image/color"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultFace is a built-in fixed 7x13 face, available without loading
// a font file.
var DefaultFace font.Face = basicfont.Face7x13

// LoadFace parses a TrueType font file and returns a face at the given
// point size.
func LoadFace(name string, size float64) (font.Face, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// Text draws label with the top left of its extent at p and returns the
// rectangle covered.
func Text(dst Image, p image.Point, face font.Face, label string, c color.Color) image.Rectangle {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(p.X, p.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(label)
	return textExtent(face, label).Add(p)
}

// TextBox draws label like [Text] over a solid background box.
func TextBox(dst Image, p image.Point, face font.Face, label string, fg, bg color.Color) image.Rectangle {
	r := textExtent(face, label).Add(p)
	Box(dst, r, bg)
	Text(dst, p, face, label, fg)
	return r
}

// textExtent returns the rectangle covered by label, anchored at (0,0).
func textExtent(face font.Face, label string) image.Rectangle {
	m := face.Metrics()
	w := font.MeasureString(face, label).Ceil()
	return image.Rect(0, 0, w, (m.Ascent + m.Descent).Ceil())
}
