package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/tft"
	"github.com/BeatGlow/tft/bmp"
	"github.com/BeatGlow/tft/draw"
	"github.com/BeatGlow/tft/framebuffer"
	"github.com/BeatGlow/tft/pixel"
)

func main() {
	widthFlag := flag.Int("width", 0, "Display width")
	heightFlag := flag.Int("height", 0, "Display height")
	spiBusFlag := flag.Int("spi-bus", 0, "SPI bus")
	spiDeviceFlag := flag.Int("spi-dev", 0, "SPI device")
	resetPinFlag := flag.String("reset", "GPIO25", "Reset GPIO pin")
	dcPinFlag := flag.String("dc", "GPIO24", "Data/Command GPIO pin (DC)")
	cePinFlag := flag.String("ce", "GPIO8", "Chip enable GPIO pin")
	blPinFlag := flag.String("bl", "", "Backlight GPIO pin")
	pmicFlag := flag.Int("pmic", -1, "AXP192 PMIC I²C device number (-1: panel is permanently powered)")
	fbFlag := flag.String("fb", "/dev/fb0", "Framebuffer device")
	imageFlag := flag.String("image", "", "BMP image to show")
	fontFlag := flag.String("font", "", "TrueType font file")
	fontSizeFlag := flag.Float64("font-size", 13, "Font size in points")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s <st7789|fbdev>\n", os.Args[0])
		os.Exit(1)
	}

	var (
		output tft.Display
		err    error
	)
	switch driver := flag.Arg(0); driver {
	case "st7789":
		if _, err = host.Init(); err != nil {
			fatal(err)
		}

		config := &tft.Config{
			Width:  *widthFlag,
			Height: *heightFlag,
		}
		if *blPinFlag != "" {
			config.Backlight = gpioreg.ByName(*blPinFlag)
		}
		if *pmicFlag >= 0 {
			var power *tft.AXP192
			if power, err = tft.OpenAXP192(*pmicFlag); err != nil {
				fatal(err)
			}
			defer power.Close()
			config.Power = power
			fmt.Printf("using power: %s\n", power)
		}

		var conn tft.Conn
		if conn, err = tft.OpenSPI(&tft.SPIConfig{
			Bus:    *spiBusFlag,
			Device: *spiDeviceFlag,
			Reset:  gpioreg.ByName(*resetPinFlag),
			DC:     gpioreg.ByName(*dcPinFlag),
			CE:     gpioreg.ByName(*cePinFlag),
		}); err != nil {
			fatal(err)
		}
		fmt.Printf("using connection: %s\n", conn)

		output, err = tft.ST7789(conn, config)
	case "fbdev":
		output, err = framebuffer.Open(*fbFlag)
	default:
		err = fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		fatal(err)
	}
	defer output.Close()
	fmt.Printf("using driver: %s\n", output)

	face := draw.DefaultFace
	if *fontFlag != "" {
		if face, err = draw.LoadFace(*fontFlag, *fontSizeFlag); err != nil {
			fatal(err)
		}
	}

	// Static scene: border, gradient strip, some shapes and a banner.
	size := output.Bounds()
	draw.Rectangle(output, size, pixel.White)
	for x := size.Min.X + 1; x < size.Max.X-1; x++ {
		t := float64(x) / float64(size.Max.X-1)
		draw.VerticalLine(output, x, size.Max.Y-21, 20, pixel.Blend(pixel.Blue, pixel.Red, t))
	}

	center := image.Pt(size.Dx()/2, size.Dy()/2)
	draw.Circle(output, center, 40, pixel.Yellow)
	draw.Disc(output, center, 32, pixel.Darken(pixel.Red, 0.25))
	draw.RoundedBox(output, image.Rect(8, 24, size.Max.X-8, 44), 5, pixel.Darken(pixel.Green, 0.5))
	draw.Text(output, image.Pt(14, 27), face, "hello, tft", pixel.White)

	if *imageFlag != "" {
		if err = showImage(output, *imageFlag); err != nil {
			fatal(err)
		}
	}

	if err = output.Refresh(); err != nil {
		fatal(err)
	}

	// Keep a clock in the top left corner, redrawing only the region
	// that changed.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	fmt.Println("hit control-c to stop...")
	for tick := range ticker.C {
		r := draw.TextBox(output, image.Pt(4, 4), face, tick.Format("15:04:05"), pixel.White, pixel.Black)
		if err = output.RefreshRect(r); err != nil {
			fatal(err)
		}
	}
}

// showImage centers a BMP image on the display. A short read is not fatal,
// whatever was decoded before the stream ended stays on screen.
func showImage(output tft.Display, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := bmp.DecodeConfig(f)
	if err != nil {
		return err
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	var (
		size = output.Bounds()
		x    = size.Dx()/2 - info.Width/2
		y    = size.Dy()/2 - info.Height/2
	)
	fmt.Printf("showing %s: %dx%d, %d bpp\n", name, info.Width, info.Height, info.BitDepth)
	if _, err = bmp.DecodeInto(f, output.Frame(), x, y, size.Max.X-x, size.Max.Y-y); err != nil {
		fmt.Fprintln(os.Stderr, "warning: "+err.Error())
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
