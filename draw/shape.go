package draw

import (
	"image"
	"image/color"

	"github.com/BeatGlow/tft/pixel"
)

// Line draws a line between two points.
func Line(dst Image, a, b image.Point, c color.Color) {
	bresenham(dst, a.X, a.Y, b.X, b.Y, c)
}

// HorizontalLine draws a w pixels wide line starting at (x,y).
func HorizontalLine(dst Image, x, y, w int, c color.Color) {
	if w <= 0 {
		return
	}
	bresenham(dst, x, y, x+w-1, y, c)
}

// VerticalLine draws a h pixels high line starting at (x,y).
func VerticalLine(dst Image, x, y, h int, c color.Color) {
	if h <= 0 {
		return
	}
	bresenham(dst, x, y, x, y+h-1, c)
}

// Rectangle draws the outline of rect.
func Rectangle(dst Image, rect image.Rectangle, c color.Color) {
	if rect.Empty() {
		return
	}
	HorizontalLine(dst, rect.Min.X, rect.Min.Y, rect.Dx(), c)
	HorizontalLine(dst, rect.Min.X, rect.Max.Y-1, rect.Dx(), c)
	VerticalLine(dst, rect.Min.X, rect.Min.Y+1, rect.Dy()-2, c)
	VerticalLine(dst, rect.Max.X-1, rect.Min.Y+1, rect.Dy()-2, c)
}

// Box draws a filled rectangle. Panel images take a fast path that
// writes whole rows at once.
func Box(dst Image, rect image.Rectangle, c color.Color) {
	if img, ok := dst.(*pixel.Image); ok {
		img.Fill(rect, img.ColorModel().Convert(c).(pixel.RGB565))
		return
	}
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Set(x, y, c)
		}
	}
}

// Circle draws the outline of a circle around center.
func Circle(dst Image, center image.Point, radius int, c color.Color) {
	if radius <= 0 {
		return
	}
	dst.Set(center.X+radius, center.Y, c)
	dst.Set(center.X-radius, center.Y, c)
	dst.Set(center.X, center.Y+radius, c)
	dst.Set(center.X, center.Y-radius, c)
	midpoint(radius, func(x, y int) {
		dst.Set(center.X+x, center.Y+y, c)
		dst.Set(center.X-x, center.Y+y, c)
		dst.Set(center.X+x, center.Y-y, c)
		dst.Set(center.X-x, center.Y-y, c)
		dst.Set(center.X+y, center.Y+x, c)
		dst.Set(center.X-y, center.Y+x, c)
		dst.Set(center.X+y, center.Y-x, c)
		dst.Set(center.X-y, center.Y-x, c)
	})
}

// Disc draws a filled circle around center.
func Disc(dst Image, center image.Point, radius int, c color.Color) {
	if radius <= 0 {
		return
	}
	HorizontalLine(dst, center.X-radius, center.Y, 2*radius+1, c)
	midpoint(radius, func(x, y int) {
		HorizontalLine(dst, center.X-x, center.Y+y, 2*x+1, c)
		HorizontalLine(dst, center.X-x, center.Y-y, 2*x+1, c)
		HorizontalLine(dst, center.X-y, center.Y+x, 2*y+1, c)
		HorizontalLine(dst, center.X-y, center.Y-x, 2*y+1, c)
	})
}

// RoundedRectangle draws the outline of rect with radius pixels rounded
// corners.
func RoundedRectangle(dst Image, rect image.Rectangle, radius int, c color.Color) {
	if rect.Empty() {
		return
	}
	radius = clampRadius(rect, radius)
	var (
		x0 = rect.Min.X + radius
		x1 = rect.Max.X - radius - 1
		y0 = rect.Min.Y + radius
		y1 = rect.Max.Y - radius - 1
	)
	HorizontalLine(dst, x0, rect.Min.Y, x1-x0+1, c)
	HorizontalLine(dst, x0, rect.Max.Y-1, x1-x0+1, c)
	VerticalLine(dst, rect.Min.X, y0, y1-y0+1, c)
	VerticalLine(dst, rect.Max.X-1, y0, y1-y0+1, c)
	midpoint(radius, func(x, y int) {
		dst.Set(x1+x, y1+y, c)
		dst.Set(x1+y, y1+x, c)
		dst.Set(x1+x, y0-y, c)
		dst.Set(x1+y, y0-x, c)
		dst.Set(x0-x, y1+y, c)
		dst.Set(x0-y, y1+x, c)
		dst.Set(x0-x, y0-y, c)
		dst.Set(x0-y, y0-x, c)
	})
}

// RoundedBox draws a filled rectangle with radius pixels rounded
// corners.
func RoundedBox(dst Image, rect image.Rectangle, radius int, c color.Color) {
	if rect.Empty() {
		return
	}
	radius = clampRadius(rect, radius)
	var (
		x0 = rect.Min.X + radius
		x1 = rect.Max.X - radius - 1
		y0 = rect.Min.Y + radius
		y1 = rect.Max.Y - radius - 1
	)
	Box(dst, image.Rect(rect.Min.X, y0, rect.Max.X, y1+1), c)
	midpoint(radius, func(x, y int) {
		HorizontalLine(dst, x0-x, y1+y, x1-x0+2*x+1, c)
		HorizontalLine(dst, x0-x, y0-y, x1-x0+2*x+1, c)
		HorizontalLine(dst, x0-y, y1+x, x1-x0+2*y+1, c)
		HorizontalLine(dst, x0-y, y0-x, x1-x0+2*y+1, c)
	})
}

func clampRadius(rect image.Rectangle, radius int) int {
	m := rect.Dx()
	if rect.Dy() < m {
		m = rect.Dy()
	}
	if radius > m/2 {
		radius = m / 2
	}
	if radius < 0 {
		radius = 0
	}
	return radius
}

// midpoint walks one octant of a circle outline, calling plot at every
// step. The four points on the axes are not visited.
func midpoint(radius int, plot func(x, y int)) {
	var (
		f    = 1 - radius
		ddFx = 1
		ddFy = -2 * radius
		x    = 0
		y    = radius
	)
	for x < y {
		if f >= 0 {
			y--
			ddFy += 2
			f += ddFy
		}
		x++
		ddFx += 2
		f += ddFx
		plot(x, y)
	}
}

// bresenham rasterizes a line segment, endpoints included.
func bresenham(dst Image, x1, y1, x2, y2 int, c color.Color) {
	steep := abs(y2-y1) > abs(x2-x1)
	if steep {
		x1, y1 = y1, x1
		x2, y2 = y2, x2
	}
	if x1 > x2 {
		x1, x2 = x2, x1
		y1, y2 = y2, y1
	}

	var (
		dx   = x2 - x1
		dy   = abs(y2 - y1)
		e    = dx / 2
		step = 1
	)
	if y1 > y2 {
		step = -1
	}
	for x := x1; x <= x2; x++ {
		if steep {
			dst.Set(y1, x, c)
		} else {
			dst.Set(x, y1, c)
		}
		e -= dy
		if e < 0 {
			y1 += step
			e += dx
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
