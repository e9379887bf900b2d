// Package tft contains drivers for color TFT panels.
package tft

import (
	"image"
	"image/color"
	"os"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/tft/pixel"
)

var debug bool

func init() {
	debug = os.Getenv("TFT_DEBUG") != ""
}

// Display is a color TFT display.
type Display interface {
	// Close the display driver.
	Close() error

	// Clear the display buffer.
	Clear()

	// At returns the color of the pixel at (x, y).
	At(x, y int) color.Color

	// Set the pixel color at (x, y).
	Set(x, y int, c color.Color)

	// Bounds is the display bounding box (dimensions).
	Bounds() image.Rectangle

	// ColorModel used by the display.
	ColorModel() color.Model

	// Frame is the internal frame buffer. Mutations become visible on
	// the panel after the next Refresh or RefreshRect.
	Frame() *pixel.Image

	// Show toggles the display on or off.
	Show(bool) error

	// Refresh redraws the full display from the internal frame buffer.
	Refresh() error

	// RefreshRect redraws the given region from the internal frame buffer.
	RefreshRect(image.Rectangle) error
}

// PowerSequencer enables the supply rails of a panel that is not permanently
// powered. The sequencer must only return from PowerOn after the rails have
// settled.
type PowerSequencer interface {
	PowerOn() error
	PowerOff() error
}

// Config is the display configuration.
type Config struct {
	// Width of the display in pixels.
	Width int

	// Height of the display in pixels.
	Height int

	// Reset pin.
	Reset gpio.PinOut

	// Backlight pin, for panels with a backlight that is not tied to a
	// supply rail.
	Backlight gpio.PinOut

	// Power sequencer, for panels behind a PMIC. Ran before any signal
	// activity on the bus.
	Power PowerSequencer
}

type baseDisplay struct {
	*pixel.Image
	c         Conn
	power     PowerSequencer
	width     int
	height    int
	colOffset int
	rowOffset int
}

func (d *baseDisplay) Frame() *pixel.Image {
	return d.Image
}

func (d *baseDisplay) data(data ...byte) error {
	return d.c.Data(data...)
}
