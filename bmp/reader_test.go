package bmp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/BeatGlow/tft/pixel"
)

// buildBMP assembles a bitmap file from a raw color table and already
// padded pixel rows given in file order. A negative height marks the
// rows as stored top-down.
func buildBMP(width, height, depth int, table []byte, rows ...[]byte) []byte {
	var pix int
	for _, row := range rows {
		pix += len(row)
	}
	offset := fileHeaderSize + infoHeaderSize + len(table)

	var hdr [fileHeaderSize + infoHeaderSize]byte
	binary.LittleEndian.PutUint16(hdr[0:2], bmpSignature)
	binary.LittleEndian.PutUint32(hdr[2:6], uint32(offset+pix))
	binary.LittleEndian.PutUint32(hdr[10:14], uint32(offset))
	binary.LittleEndian.PutUint32(hdr[14:18], infoHeaderSize)
	binary.LittleEndian.PutUint32(hdr[18:22], uint32(int32(width)))
	binary.LittleEndian.PutUint32(hdr[22:26], uint32(int32(height)))
	binary.LittleEndian.PutUint16(hdr[26:28], 1)
	binary.LittleEndian.PutUint16(hdr[28:30], uint16(depth))

	file := append([]byte(nil), hdr[:]...)
	file = append(file, table...)
	for _, row := range rows {
		file = append(file, row...)
	}
	return file
}

func poke16(file []byte, off int, v uint16) []byte {
	out := append([]byte(nil), file...)
	binary.LittleEndian.PutUint16(out[off:], v)
	return out
}

func poke32(file []byte, off int, v uint32) []byte {
	out := append([]byte(nil), file...)
	binary.LittleEndian.PutUint32(out[off:], v)
	return out
}

var redRow = bytes.Repeat([]byte{0x00, 0x00, 0xFF}, 4) // 4 pixels, blue first

func redFile() []byte {
	return buildBMP(4, 4, 24, nil, redRow, redRow, redRow, redRow)
}

// Color table entries are blue, green, red, reserved.
var colorTable = []byte{
	0x00, 0x00, 0x00, 0x00, // 0: black
	0x00, 0x00, 0xFF, 0x00, // 1: red
	0x00, 0xFF, 0x00, 0x00, // 2: green
	0xFF, 0xFF, 0xFF, 0x00, // 3: white
}

func TestDecodeConfig(t *testing.T) {
	t.Run("truecolor", func(t *testing.T) {
		c, err := DecodeConfig(bytes.NewReader(redFile()))
		if err != nil {
			t.Fatal(err)
		}
		if c.Width != 4 || c.Height != 4 {
			t.Fatalf("expected 4x4, got %dx%d", c.Width, c.Height)
		}
		if c.BitDepth != 24 {
			t.Fatalf("expected 24 bits per pixel, got %d", c.BitDepth)
		}
		if c.TopDown {
			t.Fatal("expected bottom-up row order")
		}
		if c.Stride != 12 {
			t.Fatalf("expected stride 12, got %d", c.Stride)
		}
		if c.Palette != nil {
			t.Fatalf("expected no color table, got %d entries", len(c.Palette))
		}
	})

	t.Run("indexed", func(t *testing.T) {
		file := buildBMP(2, 2, 8, colorTable,
			[]byte{3, 0, 0, 0},
			[]byte{0, 3, 0, 0})
		c, err := DecodeConfig(bytes.NewReader(file))
		if err != nil {
			t.Fatal(err)
		}
		if c.BitDepth != 8 {
			t.Fatalf("expected 8 bits per pixel, got %d", c.BitDepth)
		}
		if c.Stride != 4 {
			t.Fatalf("expected stride 4, got %d", c.Stride)
		}
		if len(c.Palette) != 4 {
			t.Fatalf("expected 4 color table entries, got %d", len(c.Palette))
		}
		if c.Palette[0] != pixel.Black {
			t.Fatalf("expected entry 0 to be black, got %#04x", c.Palette[0].V)
		}
		if c.Palette[3] != pixel.White {
			t.Fatalf("expected entry 3 to be white, got %#04x", c.Palette[3].V)
		}
	})

	t.Run("top-down", func(t *testing.T) {
		c, err := DecodeConfig(bytes.NewReader(buildBMP(4, -4, 24, nil)))
		if err != nil {
			t.Fatal(err)
		}
		if !c.TopDown {
			t.Fatal("expected top-down row order")
		}
		if c.Height != 4 {
			t.Fatalf("expected height 4, got %d", c.Height)
		}
	})
}

func TestDecodeConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		file []byte
	}{
		{"empty", nil},
		{"short file header", redFile()[:10]},
		{"short info header", redFile()[:30]},
		{"bad signature", poke16(redFile(), 0, 0x4D50)},
		{"bad info header size", poke32(redFile(), 14, 12)},
		{"color planes", poke16(redFile(), 26, 2)},
		{"compressed", poke32(redFile(), 30, 1)},
		{"bit depth", poke16(redFile(), 28, 16)},
		{"zero width", poke32(redFile(), 18, 0)},
		{"zero height", poke32(redFile(), 22, 0)},
		{"missing color table", buildBMP(2, 2, 8, nil)},
		{"offset inside header", poke32(redFile(), 10, 20)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := DecodeConfig(bytes.NewReader(test.file)); !errors.Is(err, ErrFormat) {
				t.Fatalf("expected format error, got %v", err)
			}
		})
	}
}

func TestDecodeTruecolor(t *testing.T) {
	img := pixel.NewImage(8, 8)
	c, err := DecodeInto(bytes.NewReader(redFile()), img, 0, 0, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if c.Width != 4 || c.Height != 4 {
		t.Fatalf("expected 4x4, got %dx%d", c.Width, c.Height)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := pixel.RGB565{}
			if x < 4 && y < 4 {
				want = pixel.Red
			}
			if got := img.RGB565At(x, y); got != want {
				t.Fatalf("expected %#04x at (%d,%d), got %#04x", want.V, x, y, got.V)
			}
		}
	}
}

func TestDecodeOrientation(t *testing.T) {
	// Top row red and green, bottom row blue and white; each row is 6
	// bytes of triplets and 2 bytes of padding.
	topRow := []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0x00, 0x00}
	bottomRow := []byte{0xFF, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0x00, 0x00}

	check := func(t *testing.T, img *pixel.Image) {
		t.Helper()
		want := []struct {
			x, y  int
			color pixel.RGB565
		}{
			{0, 0, pixel.Red},
			{1, 0, pixel.Green},
			{0, 1, pixel.Blue},
			{1, 1, pixel.White},
		}
		for _, w := range want {
			if got := img.RGB565At(w.x, w.y); got != w.color {
				t.Fatalf("expected %#04x at (%d,%d), got %#04x", w.color.V, w.x, w.y, got.V)
			}
		}
	}

	t.Run("bottom-up", func(t *testing.T) {
		img := pixel.NewImage(2, 2)
		file := buildBMP(2, 2, 24, nil, bottomRow, topRow)
		if _, err := DecodeInto(bytes.NewReader(file), img, 0, 0, 2, 2); err != nil {
			t.Fatal(err)
		}
		check(t, img)
	})

	t.Run("top-down", func(t *testing.T) {
		img := pixel.NewImage(2, 2)
		file := buildBMP(2, -2, 24, nil, topRow, bottomRow)
		if _, err := DecodeInto(bytes.NewReader(file), img, 0, 0, 2, 2); err != nil {
			t.Fatal(err)
		}
		check(t, img)
	})
}

func TestDecodeTruncated(t *testing.T) {
	file := buildBMP(4, 4, 24, nil, redRow, redRow)

	img := pixel.NewImage(4, 4)
	img.Fill(img.Bounds(), pixel.Blue)

	_, err := DecodeInto(bytes.NewReader(file), img, 0, 0, 4, 4)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncation error, got %v", err)
	}

	// The two rows that were present are the bottom two; the rest of
	// the image keeps its prior contents.
	for y := 0; y < 4; y++ {
		want := pixel.Blue
		if y >= 2 {
			want = pixel.Red
		}
		for x := 0; x < 4; x++ {
			if got := img.RGB565At(x, y); got != want {
				t.Fatalf("expected %#04x at (%d,%d), got %#04x", want.V, x, y, got.V)
			}
		}
	}
}

func TestDecodeIndexed(t *testing.T) {
	t.Run("reoriented", func(t *testing.T) {
		// Index rows in file order, bottom-up, with junk in the padding.
		file := buildBMP(2, 2, 8, colorTable,
			[]byte{3, 0, 0, 3},
			[]byte{0, 3, 3, 0})

		img := pixel.NewImage(2, 2)
		if _, err := DecodeInto(bytes.NewReader(file), img, 0, 0, 2, 2); err != nil {
			t.Fatal(err)
		}

		want := []struct {
			x, y  int
			color pixel.RGB565
		}{
			{0, 0, pixel.Black},
			{1, 0, pixel.White},
			{0, 1, pixel.White},
			{1, 1, pixel.Black},
		}
		for _, w := range want {
			if got := img.RGB565At(w.x, w.y); got != w.color {
				t.Fatalf("expected %#04x at (%d,%d), got %#04x", w.color.V, w.x, w.y, got.V)
			}
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		file := buildBMP(2, 1, 8, colorTable, []byte{200, 3, 0, 0})

		img := pixel.NewImage(2, 1)
		img.Fill(img.Bounds(), pixel.Red)
		if _, err := DecodeInto(bytes.NewReader(file), img, 0, 0, 2, 1); err != nil {
			t.Fatal(err)
		}
		if got := img.RGB565At(0, 0); got != pixel.Black {
			t.Fatalf("expected unknown index to decode black, got %#04x", got.V)
		}
		if got := img.RGB565At(1, 0); got != pixel.White {
			t.Fatalf("expected %#04x at (1,0), got %#04x", pixel.White.V, got.V)
		}
	})
}

func TestDecodeClip(t *testing.T) {
	t.Run("negative origin", func(t *testing.T) {
		img := pixel.NewImage(4, 4)
		r := bytes.NewReader(redFile())
		if _, err := DecodeInto(r, img, -2, -2, 6, 6); err != nil {
			t.Fatal(err)
		}
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				want := pixel.RGB565{}
				if x < 2 && y < 2 {
					want = pixel.Red
				}
				if got := img.RGB565At(x, y); got != want {
					t.Fatalf("expected %#04x at (%d,%d), got %#04x", want.V, x, y, got.V)
				}
			}
		}
		if r.Len() != 0 {
			t.Fatalf("expected all rows consumed, %d bytes left", r.Len())
		}
	})

	t.Run("max extent", func(t *testing.T) {
		img := pixel.NewImage(8, 8)
		r := bytes.NewReader(redFile())
		if _, err := DecodeInto(r, img, 0, 0, 2, 2); err != nil {
			t.Fatal(err)
		}
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				want := pixel.RGB565{}
				if x < 2 && y < 2 {
					want = pixel.Red
				}
				if got := img.RGB565At(x, y); got != want {
					t.Fatalf("expected %#04x at (%d,%d), got %#04x", want.V, x, y, got.V)
				}
			}
		}
		if r.Len() != 0 {
			t.Fatalf("expected all rows consumed, %d bytes left", r.Len())
		}
	})

	t.Run("outside buffer", func(t *testing.T) {
		img := pixel.NewImage(4, 4)
		r := bytes.NewReader(redFile())
		if _, err := DecodeInto(r, img, 10, 10, -6, -6); err != nil {
			t.Fatal(err)
		}
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				if got := img.RGB565At(x, y); got != (pixel.RGB565{}) {
					t.Fatalf("expected (%d,%d) untouched, got %#04x", x, y, got.V)
				}
			}
		}
		if r.Len() != 0 {
			t.Fatalf("expected all rows consumed, %d bytes left", r.Len())
		}
	})
}

func TestDecodePadded(t *testing.T) {
	// 3 pixels is 9 bytes of triplets and 3 bytes of padding.
	row := []byte{
		0xFF, 0x00, 0x00,
		0x00, 0xFF, 0x00,
		0x00, 0x00, 0xFF,
		0xAA, 0xBB, 0xCC,
	}
	file := buildBMP(3, 1, 24, nil, row)

	c, err := DecodeConfig(bytes.NewReader(file))
	if err != nil {
		t.Fatal(err)
	}
	if c.Stride != 12 {
		t.Fatalf("expected stride 12, got %d", c.Stride)
	}

	img := pixel.NewImage(3, 1)
	if _, err := DecodeInto(bytes.NewReader(file), img, 0, 0, 3, 1); err != nil {
		t.Fatal(err)
	}
	for i, want := range []pixel.RGB565{pixel.Blue, pixel.Green, pixel.Red} {
		if got := img.RGB565At(i, 0); got != want {
			t.Fatalf("expected %#04x at (%d,0), got %#04x", want.V, i, got.V)
		}
	}
}

func TestDecodeSkip(t *testing.T) {
	t.Run("pixel data gap", func(t *testing.T) {
		file := redFile()
		gapped := append([]byte(nil), file[:54]...)
		gapped = append(gapped, 0xDE, 0xAD, 0xBE, 0xEF, 0xDE, 0xAD, 0xBE, 0xEF)
		gapped = append(gapped, file[54:]...)
		gapped = poke32(gapped, 10, 62)

		img := pixel.NewImage(4, 4)
		if _, err := DecodeInto(bytes.NewReader(gapped), img, 0, 0, 4, 4); err != nil {
			t.Fatal(err)
		}
		if got := img.RGB565At(0, 0); got != pixel.Red {
			t.Fatalf("expected %#04x at (0,0), got %#04x", pixel.Red.V, got.V)
		}
	})

	t.Run("large info header", func(t *testing.T) {
		file := redFile()
		extended := append([]byte(nil), file[:54]...)
		extended = append(extended, make([]byte, 68)...)
		extended = append(extended, file[54:]...)
		extended = poke32(extended, 14, 108)
		extended = poke32(extended, 10, 122)

		img := pixel.NewImage(4, 4)
		if _, err := DecodeInto(bytes.NewReader(extended), img, 0, 0, 4, 4); err != nil {
			t.Fatal(err)
		}
		if got := img.RGB565At(3, 3); got != pixel.Red {
			t.Fatalf("expected %#04x at (3,3), got %#04x", pixel.Red.V, got.V)
		}
	})
}

func TestLoad(t *testing.T) {
	name := filepath.Join(t.TempDir(), "red.bmp")
	if err := os.WriteFile(name, redFile(), 0o644); err != nil {
		t.Fatal(err)
	}

	img := pixel.NewImage(8, 8)
	c, err := Load(name, img, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if c.Width != 4 || c.Height != 4 {
		t.Fatalf("expected 4x4, got %dx%d", c.Width, c.Height)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := pixel.RGB565{}
			if x >= 2 && x < 6 && y >= 2 && y < 6 {
				want = pixel.Red
			}
			if got := img.RGB565At(x, y); got != want {
				t.Fatalf("expected %#04x at (%d,%d), got %#04x", want.V, x, y, got.V)
			}
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.bmp"), img, 0, 0); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected missing file error, got %v", err)
	}
}
