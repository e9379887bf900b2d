package pixel

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
)

// Buffer holds the pixel values and is the container shared with the display
// drivers, which stream Pix to the panel as-is.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels, in panel byte order.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Buffer) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0x00
	}
}

// Image is a 16-bit 5-6-5 RGB image.
//
// Pixels are stored in the byte order the panel expects on the wire, which is
// big-endian: the swap from the host's native order happens on every Set and
// is undone on every At. Drivers hand Pix to the panel without touching it.
type Image struct {
	Buffer
	Order binary.ByteOrder
}

// NewImage returns an image with all pixels black.
func NewImage(w, h int) *Image {
	return &Image{
		Buffer: Buffer{
			Rect:   image.Rect(0, 0, w, h),
			Pix:    make([]byte, w*2*h),
			Stride: w * 2,
		},
		Order: binary.BigEndian,
	}
}

func (p *Image) ColorModel() color.Model {
	return RGB565Model
}

func (p *Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	v := p.Order.Uint16(p.Pix[x*2+y*p.Stride:])
	return RGB565{v}
}

// RGB565At is like At without the color.Color boxing. Out of bounds reads
// return black.
func (p *Image) RGB565At(x, y int) RGB565 {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return RGB565{}
	}
	return RGB565{p.Order.Uint16(p.Pix[x*2+y*p.Stride:])}
}

func (p *Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	v := rgb565Model(c).(RGB565).V
	p.Order.PutUint16(p.Pix[x*2+y*p.Stride:], v)
}

// SetRGB565 is like Set without the color model conversion. Out of bounds
// writes are discarded.
func (p *Image) SetRGB565(x, y int, c RGB565) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.Order.PutUint16(p.Pix[x*2+y*p.Stride:], c.V)
}

// Fill draws a solid rectangle, clipped to the image bounds. The first row is
// encoded once and copied to the remaining rows.
func (p *Image) Fill(r image.Rectangle, c RGB565) {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return
	}

	i := r.Min.X*2 + r.Min.Y*p.Stride
	row := p.Pix[i : i+r.Dx()*2]
	p.Order.PutUint16(row, c.V)
	for j := 2; j < len(row); j *= 2 {
		copy(row[j:], row[:j])
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		i += p.Stride
		copy(p.Pix[i:i+len(row)], row)
	}
}

// Blit copies already-encoded pixel rows into the rectangle r. The source
// holds r.Dx()*r.Dy() pixels in panel byte order with no row padding. Both
// source and destination are clipped to their overlap with the image bounds;
// rows and columns that fall outside are discarded.
func (p *Image) Blit(r image.Rectangle, src []byte) {
	clip := r.Intersect(p.Rect)
	if clip.Empty() {
		return
	}

	stride := r.Dx() * 2
	si := (clip.Min.Y-r.Min.Y)*stride + (clip.Min.X-r.Min.X)*2
	di := clip.Min.X*2 + clip.Min.Y*p.Stride
	n := clip.Dx() * 2
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		copy(p.Pix[di:di+n], src[si:si+n])
		si += stride
		di += p.Stride
	}
}

// Interface check.
var _ draw.Image = (*Image)(nil)
