package pixel

import "image/color"

// RGB565Model is the color model for 16-bit 5-6-5 RGB colors.
var RGB565Model color.Model = color.ModelFunc(rgb565Model)

// Named colors in the panel's native format.
var (
	Black   = RGB565{0x0000}
	White   = RGB565{0xFFFF}
	Red     = RGB565{0xF800}
	Green   = RGB565{0x07E0}
	Blue    = RGB565{0x001F}
	Yellow  = RGB565{0xFFE0}
	Cyan    = RGB565{0x07FF}
	Magenta = RGB565{0xF81F}
)

// RGB565 represents a 16-bit 5-6-5 RGB color.
type RGB565 struct {
	// CRed, 5, CGreen, 6, CBlue, 5
	V uint16
}

// New packs 8-bit RGB channels into a RGB565 color, discarding the low bits
// of each channel.
func New(r, g, b uint8) RGB565 {
	return RGB565{uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3}
}

func (c RGB565) RGBA() (r, g, b, a uint32) {
	// Build a 5- or 6-bit value at the top of the low byte of each component.
	red := (c.V & 0xF800) >> 8
	grn := (c.V & 0x07E0) >> 3
	blu := (c.V & 0x001F) << 3
	// Duplicate the high bits in the low bits.
	red |= red >> 5
	grn |= grn >> 6
	blu |= blu >> 5
	// Duplicate the whole value in the high byte.
	red |= red << 8
	grn |= grn << 8
	blu |= blu << 8
	return uint32(red), uint32(grn), uint32(blu), 0xffff
}

// RGB unpacks the color into 8-bit RGB channels. The low bits of each channel
// are zero, so New(c.RGB()) returns c unchanged.
func (c RGB565) RGB() (r, g, b uint8) {
	r = uint8(c.V>>8) & 0xF8
	g = uint8(c.V>>3) & 0xFC
	b = uint8(c.V<<3) & 0xF8
	return
}

func rgb565Model(c color.Color) color.Color {
	if c, ok := c.(RGB565); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	r = (r & 0xF800)
	g = (g & 0xFC00) >> 5
	b = (b & 0xF800) >> 11
	return RGB565{uint16(r | g | b)}
}

// Blend mixes two colors; alpha 1 selects c1, alpha 0 selects c2.
func Blend(c1, c2 RGB565, alpha float64) RGB565 {
	if alpha <= 0 {
		return c2
	}
	if alpha >= 1 {
		return c1
	}
	r1, g1, b1 := c1.RGB()
	r2, g2, b2 := c2.RGB()
	return New(
		uint8(float64(r1)*alpha+float64(r2)*(1-alpha)),
		uint8(float64(g1)*alpha+float64(g2)*(1-alpha)),
		uint8(float64(b1)*alpha+float64(b2)*(1-alpha)),
	)
}

// Darken scales the color towards black; factor 1 keeps the color, factor 0
// is black.
func Darken(c RGB565, factor float64) RGB565 {
	r, g, b := c.RGB()
	return New(
		uint8(float64(r)*factor),
		uint8(float64(g)*factor),
		uint8(float64(b)*factor),
	)
}

// Lighten scales the color towards white; factor 0 keeps the color, factor 1
// is white.
func Lighten(c RGB565, factor float64) RGB565 {
	r, g, b := c.RGB()
	return New(
		lighten(r, factor),
		lighten(g, factor),
		lighten(b, factor),
	)
}

func lighten(v uint8, factor float64) uint8 {
	l := float64(v) + (255-float64(v))*factor
	if l > 255 {
		return 255
	}
	return uint8(l)
}
