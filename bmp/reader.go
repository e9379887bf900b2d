// Package bmp reads and writes uncompressed Windows bitmap files.
//
// The reader is built for small framebuffers: it decodes one source row
// at a time straight into a [pixel.Image] region, so a full-size
// intermediate image is never allocated. Both 24-bit and 8-bit indexed
// files are supported.
package bmp

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/BeatGlow/tft/pixel"
)

// Errors returned by the decoder. Decode errors wrap one of these two
// so callers can tell a rejected file from one that ended early.
var (
	ErrFormat    = errors.New("bmp: invalid format")
	ErrTruncated = errors.New("bmp: truncated pixel data")
)

const (
	bmpSignature   = 0x4D42 // "BM"
	fileHeaderSize = 14
	infoHeaderSize = 40

	// Sanity cap on declared dimensions.
	maxDimension = 1 << 20
)

// Config describes a bitmap without decoding its pixel data.
type Config struct {
	Width, Height int
	BitDepth      int // 8 or 24
	TopDown       bool
	Stride        int // bytes per padded source row

	// Palette holds the color table of an 8-bit indexed file, already
	// converted to the panel's pixel format. It is nil for 24-bit files.
	Palette []pixel.RGB565
}

// DecodeConfig reads the file and info headers from r, including the
// color table of an indexed file, and returns the image description.
func DecodeConfig(r io.Reader) (Config, error) {
	c, _, err := readHeader(r)
	return c, err
}

// readHeader parses the headers and color table and reports how many
// bytes remain between the read position and the pixel data.
func readHeader(r io.Reader) (Config, int64, error) {
	var buf [fileHeaderSize + infoHeaderSize]byte

	if _, err := io.ReadFull(r, buf[:fileHeaderSize]); err != nil {
		return Config{}, 0, fmt.Errorf("bmp: short file header: %w", ErrFormat)
	}
	if binary.LittleEndian.Uint16(buf[0:2]) != bmpSignature {
		return Config{}, 0, fmt.Errorf("bmp: bad signature %#04x: %w",
			binary.LittleEndian.Uint16(buf[0:2]), ErrFormat)
	}
	dataOffset := int64(binary.LittleEndian.Uint32(buf[10:14]))

	if _, err := io.ReadFull(r, buf[fileHeaderSize:]); err != nil {
		return Config{}, 0, fmt.Errorf("bmp: short info header: %w", ErrFormat)
	}
	var (
		infoSize    = int64(binary.LittleEndian.Uint32(buf[14:18]))
		width       = int(int32(binary.LittleEndian.Uint32(buf[18:22])))
		height      = int(int32(binary.LittleEndian.Uint32(buf[22:26])))
		planes      = binary.LittleEndian.Uint16(buf[26:28])
		depth       = binary.LittleEndian.Uint16(buf[28:30])
		compression = binary.LittleEndian.Uint32(buf[30:34])
	)

	c := Config{Width: width, Height: height, BitDepth: int(depth)}
	if c.Height < 0 {
		c.Height = -c.Height
		c.TopDown = true
	}
	switch {
	case infoSize < infoHeaderSize:
		return Config{}, 0, fmt.Errorf("bmp: info header size %d: %w", infoSize, ErrFormat)
	case planes != 1:
		return Config{}, 0, fmt.Errorf("bmp: %d color planes: %w", planes, ErrFormat)
	case compression != 0:
		return Config{}, 0, fmt.Errorf("bmp: compression type %d: %w", compression, ErrFormat)
	case depth != 8 && depth != 24:
		return Config{}, 0, fmt.Errorf("bmp: %d bits per pixel: %w", depth, ErrFormat)
	case width <= 0 || width > maxDimension:
		return Config{}, 0, fmt.Errorf("bmp: width %d: %w", width, ErrFormat)
	case c.Height <= 0 || c.Height > maxDimension:
		return Config{}, 0, fmt.Errorf("bmp: height %d: %w", height, ErrFormat)
	}
	c.Stride = (c.Width*c.BitDepth/8 + 3) &^ 3

	// Anything between the fixed info header and the pixel data that is
	// not a color table gets skipped later.
	read := int64(fileHeaderSize) + infoHeaderSize
	if extra := infoSize - infoHeaderSize; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, extra); err != nil {
			return Config{}, 0, fmt.Errorf("bmp: short info header: %w", ErrFormat)
		}
		read += extra
	}

	if c.BitDepth == 8 {
		entries := (dataOffset - read) / 4
		if entries > 256 {
			entries = 256
		}
		if entries <= 0 {
			return Config{}, 0, fmt.Errorf("bmp: indexed file without color table: %w", ErrFormat)
		}
		table := make([]byte, entries*4)
		if _, err := io.ReadFull(r, table); err != nil {
			return Config{}, 0, fmt.Errorf("bmp: short color table: %w", ErrFormat)
		}
		read += int64(len(table))

		// Table entries are stored blue, green, red, reserved.
		c.Palette = make([]pixel.RGB565, entries)
		for i := range c.Palette {
			c.Palette[i] = pixel.New(table[i*4+2], table[i*4+1], table[i*4])
		}
	}

	if dataOffset < read {
		return Config{}, 0, fmt.Errorf("bmp: pixel data offset %d inside header: %w", dataOffset, ErrFormat)
	}
	return c, dataOffset - read, nil
}

// DecodeInto decodes the bitmap read from r into dst with its top left
// corner at (x, y), using at most maxWidth columns and maxHeight rows of
// the source. Rows and columns falling outside dst or outside the given
// limits are dropped, but every declared source row is still consumed so
// the read position ends up past the pixel data. Bottom-up files, the
// container's default, are flipped so (x, y) is always the top left.
//
// When the pixel data ends early the error wraps [ErrTruncated] and the
// rows decoded up to that point remain in dst.
func DecodeInto(r io.Reader, dst *pixel.Image, x, y, maxWidth, maxHeight int) (Config, error) {
	c, skip, err := readHeader(r)
	if err != nil {
		return c, err
	}
	if skip > 0 {
		if _, err := io.CopyN(io.Discard, r, skip); err != nil {
			return c, fmt.Errorf("bmp: pixel data: %w", ErrTruncated)
		}
	}

	loadWidth := c.Width
	if maxWidth < loadWidth {
		loadWidth = maxWidth
	}
	if loadWidth < 0 {
		loadWidth = 0
	}
	loadHeight := c.Height
	if maxHeight < loadHeight {
		loadHeight = maxHeight
	}

	row := make([]byte, c.Stride)
	native := make([]byte, loadWidth*2)
	for i := 0; i < c.Height; i++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return c, fmt.Errorf("bmp: row %d: %w", i, ErrTruncated)
		}

		dy := i
		if !c.TopDown {
			dy = c.Height - 1 - i
		}
		if dy >= loadHeight || loadWidth == 0 {
			continue
		}

		if c.BitDepth == 24 {
			// Triplets are stored blue first.
			for j := 0; j < loadWidth; j++ {
				o := j * 3
				dst.Order.PutUint16(native[j*2:], pixel.New(row[o+2], row[o+1], row[o]).V)
			}
		} else {
			for j := 0; j < loadWidth; j++ {
				var p pixel.RGB565
				if int(row[j]) < len(c.Palette) {
					p = c.Palette[row[j]]
				}
				dst.Order.PutUint16(native[j*2:], p.V)
			}
		}
		dst.Blit(image.Rect(x, y+dy, x+loadWidth, y+dy+1), native)
	}
	return c, nil
}

// Load decodes the named bitmap file into dst at (x, y), clipped to the
// bounds of dst.
func Load(name string, dst *pixel.Image, x, y int) (Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	b := dst.Bounds()
	return DecodeInto(bufio.NewReader(f), dst, x, y, b.Max.X-x, b.Max.Y-y)
}
