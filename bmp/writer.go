package bmp

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"
)

// Encode writes m to w as an uncompressed bitmap. An [image.Paletted]
// with up to 256 colors is written as an 8-bit indexed file, anything
// else as 24-bit. Rows are stored bottom-up, the container's default.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("bmp: cannot encode %dx%d image", b.Dx(), b.Dy())
	}

	var palette []byte
	depth := 24
	pm, _ := m.(*image.Paletted)
	if pm != nil && len(pm.Palette) <= 256 {
		depth = 8
		palette = make([]byte, len(pm.Palette)*4)
		for i, p := range pm.Palette {
			r, g, bl, _ := p.RGBA()
			palette[i*4] = uint8(bl >> 8)
			palette[i*4+1] = uint8(g >> 8)
			palette[i*4+2] = uint8(r >> 8)
		}
	}

	stride := (b.Dx()*depth/8 + 3) &^ 3
	offset := fileHeaderSize + infoHeaderSize + len(palette)

	var hdr [fileHeaderSize + infoHeaderSize]byte
	binary.LittleEndian.PutUint16(hdr[0:2], bmpSignature)
	binary.LittleEndian.PutUint32(hdr[2:6], uint32(offset+stride*b.Dy()))
	binary.LittleEndian.PutUint32(hdr[10:14], uint32(offset))
	binary.LittleEndian.PutUint32(hdr[14:18], infoHeaderSize)
	binary.LittleEndian.PutUint32(hdr[18:22], uint32(b.Dx()))
	binary.LittleEndian.PutUint32(hdr[22:26], uint32(b.Dy()))
	binary.LittleEndian.PutUint16(hdr[26:28], 1) // color planes
	binary.LittleEndian.PutUint16(hdr[28:30], uint16(depth))
	binary.LittleEndian.PutUint32(hdr[34:38], uint32(stride*b.Dy()))
	binary.LittleEndian.PutUint32(hdr[46:50], uint32(len(palette)/4))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(palette) > 0 {
		if _, err := w.Write(palette); err != nil {
			return err
		}
	}

	row := make([]byte, stride)
	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		if depth == 8 {
			copy(row[:b.Dx()], pm.Pix[pm.PixOffset(b.Min.X, y):])
		} else {
			for x := 0; x < b.Dx(); x++ {
				r, g, bl, _ := m.At(b.Min.X+x, y).RGBA()
				row[x*3] = uint8(bl >> 8)
				row[x*3+1] = uint8(g >> 8)
				row[x*3+2] = uint8(r >> 8)
			}
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
