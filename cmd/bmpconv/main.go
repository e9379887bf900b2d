package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/urfave/cli/v2"

	"github.com/BeatGlow/tft/bmp"
)

func main() {
	app := cli.NewApp()

	app.Name = "bmpconv"
	app.Usage = "Prepare images for small RGB565 panels"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			EnvVars: []string{"BMPCONV_VERBOSE"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "convert",
			Usage:     "Convert a PNG, JPEG or GIF image to BMP",
			ArgsUsage: "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "colors",
					Usage: "quantize to at most `N` colors (2-256, 0 keeps truecolor)",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := log.New(io.Discard, "", 0)
				if c.Bool("verbose") {
					logger.SetOutput(os.Stderr)
				}

				return convert(logger, c.Args().Get(0), c.Args().Get(1), c.Int("colors"))
			},
		},
		{
			Name:      "info",
			Usage:     "Print the dimensions and depth of a BMP image",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				return info(c.Args().First())
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func convert(logger *log.Logger, input, output string, colors int) error {
	f, err := os.Open(input)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	m, format, err := image.Decode(f)
	_ = f.Close()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	b := m.Bounds()
	logger.Printf("%s: %dx%d %s", input, b.Dx(), b.Dy(), format)

	if colors > 0 {
		if colors < 2 || colors > 256 {
			return cli.NewExitError(fmt.Errorf("colors must be between 2 and 256, got %d", colors), 1)
		}
		q := quantize.MedianCutQuantizer{}
		pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colors), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
		logger.Printf("quantized to %d colors", len(pm.Palette))
		m = pm
	}

	w, err := os.Create(output)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err = bmp.Encode(w, m); err != nil {
		_ = w.Close()
		return cli.NewExitError(err, 1)
	}
	if err = w.Close(); err != nil {
		return cli.NewExitError(err, 1)
	}
	logger.Printf("wrote %s", output)

	return nil
}

func info(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer f.Close()

	c, err := bmp.DecodeConfig(f)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Printf("%s: %dx%d, %d bpp", name, c.Width, c.Height, c.BitDepth)
	if c.BitDepth == 8 {
		fmt.Printf(", %d palette entries", len(c.Palette))
	}
	if c.TopDown {
		fmt.Print(", top-down")
	}
	fmt.Println()

	return nil
}
