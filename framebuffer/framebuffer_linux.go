package framebuffer

import (
	"encoding/binary"
	"fmt"
	"image"
	"os"
	"syscall"

	"github.com/BeatGlow/tft"
	"github.com/BeatGlow/tft/internal/ioctl"
	"github.com/BeatGlow/tft/pixel"
)

// From <linux/fb.h>
const (
	fbioGetVScreenInfo ioctl.Command = 0x4600
	fbioGetFScreenInfo ioctl.Command = 0x4602
)

type frameBuffer struct {
	*pixel.Image
	f      *os.File
	mem    []byte
	stride int // bytes per device row
}

// Open a Linux framebuffer device (fbdev) by name, typically
// /dev/fb[0..x].
func Open(name string) (tft.Display, error) {
	f, err := os.OpenFile(name, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, err
	}

	var (
		fix fbFixScreenInfo
		v   fbVarScreenInfo
	)
	if err = ioctl.Do(f.Fd(), fbioGetFScreenInfo, &fix); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err = ioctl.Do(f.Fd(), fbioGetVScreenInfo, &v); err != nil {
		_ = f.Close()
		return nil, err
	}
	if v.BitsPerPixel != 16 || v.Red.Offset != 11 || v.Green.Offset != 5 ||
		v.Green.Length != 6 || v.Blue.Offset != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("framebuffer: unsupported %d bpp pixel format (red at %d, green at %d, blue at %d)",
			v.BitsPerPixel, v.Red.Offset, v.Green.Offset, v.Blue.Offset)
	}

	mem, err := syscall.Mmap(int(f.Fd()), 0, int(fix.SmemLen),
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &frameBuffer{
		Image:  pixel.NewImage(int(v.Xres), int(v.Yres)),
		f:      f,
		mem:    mem,
		stride: int(fix.LineLength),
	}, nil
}

func (fb *frameBuffer) String() string {
	b := fb.Bounds()
	return fmt.Sprintf("framebuffer %dx%d", b.Dx(), b.Dy())
}

func (fb *frameBuffer) Frame() *pixel.Image {
	return fb.Image
}

// Close unmaps and closes the device.
func (fb *frameBuffer) Close() error {
	if err := syscall.Munmap(fb.mem); err != nil {
		return err
	}
	return fb.f.Close()
}

// Show is a no-op, the device has no power control.
func (fb *frameBuffer) Show(_ bool) error {
	return nil
}

// Refresh copies the whole image to the device.
func (fb *frameBuffer) Refresh() error {
	return fb.RefreshRect(fb.Bounds())
}

// RefreshRect copies the given region to the device, converting each
// pixel from panel byte order to the device's native order.
func (fb *frameBuffer) RefreshRect(r image.Rectangle) error {
	r = r.Intersect(fb.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := fb.Pix[y*fb.Image.Stride+r.Min.X*2:]
		dst := fb.mem[y*fb.stride+r.Min.X*2:]
		for x := 0; x < r.Dx(); x++ {
			binary.LittleEndian.PutUint16(dst[x*2:], fb.Order.Uint16(src[x*2:]))
		}
	}
	return nil
}

var _ tft.Display = (*frameBuffer)(nil)

type fbFixScreenInfo struct {
	ID         [16]byte  // Identification string eg "TT Builtin"
	SmemStart  uintptr   // Start of frame buffer mem
	SmemLen    uint32    // Length of frame buffer mem
	Type       uint32    // FB_TYPE_
	TypeAux    uint32    // Interleave for interleaved Planes
	Visual     uint32    // FB_VISUAL_
	Xpanstep   uint16    // Zero if no hardware panning
	Ypanstep   uint16    // Zero if no hardware panning
	Ywrapstep  uint16    // Zero if no hardware ywrap
	LineLength uint32    // Length of a line in bytes
	MmioStart  uintptr   // Start of Memory Mapped I/O (physical address)
	MmioLen    uint32    // Length of Memory Mapped I/O
	Accel      uint32    // Type of acceleration available
	Reserved   [3]uint16 // Reserved for future compatibility
}

// fbBitField describes where one color channel sits in a pixel.
type fbBitField struct {
	Offset   uint32 // Beginning of bitfield
	Length   uint32 // Length of bitfield
	MsbRight uint32 // != 0 : Most significant bit is right
}

// fbVarScreenInfo contains device independent changeable information
// about a frame buffer device and a specific video mode.
type fbVarScreenInfo struct {
	Xres                    uint32
	Yres                    uint32
	XresVirtual             uint32
	YresVirtual             uint32
	Xoffset                 uint32
	Yoffset                 uint32
	BitsPerPixel            uint32
	Grayscale               uint32
	Red, Green, Blue, Alpha fbBitField
	Nonstd                  uint32
	Activate                uint32
	Height                  uint32
	Width                   uint32
	AccelFlags              uint32
	Pixclock                uint32
	LeftMargin              uint32
	RightMargin             uint32
	UpperMargin             uint32
	LowerMargin             uint32
	HsyncLen                uint32
	VsyncLen                uint32
	Sync                    uint32
	Vmode                   uint32
	Rotate                  uint32
	Colorspace              uint32
	Reserved                [4]uint32
}
