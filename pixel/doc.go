// Package pixel implements the color and image types for RGB565 TFT panels.
//
// The color and image types are compatible with Go's native [color.Color] and
// [image.Image] / [draw.Image] interfaces, while keeping the raster in the
// exact byte layout the panel consumes.
package pixel
