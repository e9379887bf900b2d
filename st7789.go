package tft

import (
	"fmt"
	"image"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/tft/conn"
	"github.com/BeatGlow/tft/pixel"
)

const (
	st7789DefaultWidth  = 135
	st7789DefaultHeight = 240
)

// The 135x240 glass sits at a fixed offset inside the controller's 240x320
// address window. Both ends of every addressing command are shifted by these.
const (
	st7789ColOffset = 52
	st7789RowOffset = 40
)

// Registers (from st7789.pdf).
const (
	st7789NOP      = 0x00
	st7789SWRESET  = 0x01 // Software Reset
	st7789RDDID    = 0x04
	st7789RDDST    = 0x09
	st7789SLPIN    = 0x10
	st7789SLPOUT   = 0x11 // Sleep Out
	st7789PTLON    = 0x12
	st7789NORON    = 0x13 // Normal Display Mode On
	st7789INVOFF   = 0x20
	st7789INVON    = 0x21 // Display Inversion On
	st7789GAMSET   = 0x26
	st7789DISPOFF  = 0x28 // Display Off
	st7789DISPON   = 0x29 // Display On
	st7789CASET    = 0x2A // Column Address Set
	st7789RASET    = 0x2B // Row Address Set
	st7789RAMWR    = 0x2C // Memory Write
	st7789RAMRD    = 0x2E
	st7789PTLAR    = 0x30
	st7789VSCRDEF  = 0x33
	st7789TEOFF    = 0x34
	st7789TEON     = 0x35
	st7789MADCTL   = 0x36 // Memory Data Access Control
	st7789VSCRSADD = 0x37
	st7789IDMOFF   = 0x38
	st7789IDMON    = 0x39
	st7789COLMOD   = 0x3A // Interface Pixel Format
	st7789WRDISBV  = 0x51
	st7789WRCTRLD  = 0x53
	st7789RDID1    = 0xDA
	st7789RDID2    = 0xDB
	st7789RDID3    = 0xDC
)

// Memory Data Access Control (MADCTL) bit fields. The driver uses the fixed
// portrait orientation (all bits zero, RGB order).
const (
	_                           byte = 1 << iota // D0: reserved
	_                                            // D1: reserved
	st7789DisplayDataLatchOrder                  // D2: MH
	st7789BGROrder                               // D3: RGB/BGR
	st7789LineAddressOrder                       // D4: ML
	st7789PageColumnOrder                        // D5: MV
	st7789ColumnAddressOrder                     // D6: MX
	st7789PageAddressOrder                       // D7: MY
)

type st7789 struct {
	baseDisplay
	backlight gpio.PinOut
}

// ST7789 opens an ST7789 based TFT panel on the given connection. The power
// sequencer in the config, if any, is ran before the first signal on the bus.
func ST7789(c Conn, config *Config) (Display, error) {
	if config == nil {
		config = new(Config)
	}

	if config.Power != nil {
		if err := config.Power.PowerOn(); err != nil {
			return nil, fmt.Errorf("st7789: power on: %w", err)
		}
	}

	// Update mode and speed
	if spi, ok := c.(SPI); ok {
		spi.SetDataLow(false)
		if err := spi.SetMode(conn.SPIMode0); err != nil {
			return nil, err
		}
		if err := spi.SetMaxSpeed(27_000_000); err != nil {
			return nil, err
		}
	}

	d := &st7789{
		baseDisplay: baseDisplay{
			c:     c,
			power: config.Power,
		},
		backlight: config.Backlight,
	}

	if err := d.init(config); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *st7789) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("ST7789 %dx%d", bounds.Dx(), bounds.Dy())
}

// command sends the opcode and then each argument as a separate data write;
// the panel wants the data/command pin reevaluated for every argument byte.
func (d *st7789) command(command byte, data ...byte) (err error) {
	if err = d.c.Command(command); err != nil {
		return
	}
	for _, data := range data {
		if err = d.c.Data(data); err != nil {
			return
		}
	}
	return
}

func (d *st7789) commands(commands [][]byte) (err error) {
	for _, command := range commands {
		if err = d.command(command[0], command[1:]...); err != nil {
			return
		}
	}
	return
}

func (d *st7789) init(config *Config) (err error) {
	if config.Width == 0 {
		config.Width = st7789DefaultWidth
	}
	d.width = config.Width

	if config.Height == 0 {
		config.Height = st7789DefaultHeight
	}
	d.height = config.Height

	switch {
	case config.Width == 135 && config.Height == 240:
		d.colOffset = st7789ColOffset
		d.rowOffset = st7789RowOffset
	case config.Width == 240 && (config.Height == 240 || config.Height == 320):
		d.colOffset = 0
		d.rowOffset = 0
	default:
		return fmt.Errorf("st7789: unsupported panel size %dx%d", config.Width, config.Height)
	}

	d.Image = pixel.NewImage(config.Width, config.Height)

	// reset the device.
	if err = d.c.Reset(gpio.High); err != nil {
		return
	}
	time.Sleep(10 * time.Millisecond)
	if err = d.c.Reset(gpio.Low); err != nil {
		return
	}
	time.Sleep(20 * time.Millisecond)
	if err = d.c.Reset(gpio.High); err != nil {
		return
	}
	time.Sleep(120 * time.Millisecond)

	// init display
	if err = d.command(st7789SWRESET); err != nil {
		return
	}
	time.Sleep(150 * time.Millisecond)
	if err = d.command(st7789SLPOUT); err != nil {
		return
	}
	time.Sleep(120 * time.Millisecond)

	if err = d.commands([][]byte{
		{st7789MADCTL, 0x00}, // fixed portrait orientation, RGB order
		{st7789COLMOD, 0x05}, // Interface Pixel Format: 16-bit/pixel (RGB 5-6-5-bit input)
		{st7789INVON},        // the glass is normally inverted
		{st7789NORON},        // Normal Display Mode On
	}); err != nil {
		return
	}
	time.Sleep(10 * time.Millisecond)

	if err = d.command(st7789DISPON); err != nil {
		return
	}
	time.Sleep(120 * time.Millisecond)

	if d.backlight != nil {
		if err = d.backlight.PWM(gpio.DutyMax, 2*physic.KiloHertz); err != nil {
			return
		}
	} else if debug {
		log.Println("st7789: no backlight control")
	}

	return
}

func (d *st7789) Close() error {
	if err := d.Show(false); err != nil {
		_ = d.c.Close()
		return err
	}
	if d.power != nil {
		if err := d.power.PowerOff(); err != nil {
			_ = d.c.Close()
			return err
		}
	}
	return d.c.Close()
}

func (d *st7789) Show(show bool) error {
	var command = byte(st7789DISPOFF)
	if show {
		command = byte(st7789DISPON)
	}
	return d.command(command)
}

// SetWindow latches the addressing window for the following memory write.
// The controller auto-increments its write cursor over exactly this window,
// so the next stream must carry one pixel per cell.
func (d *st7789) SetWindow(r image.Rectangle) error {
	var (
		x0 = r.Min.X + d.colOffset
		y0 = r.Min.Y + d.rowOffset
		x1 = r.Max.X - 1 + d.colOffset
		y1 = r.Max.Y - 1 + d.rowOffset
	)
	return d.commands([][]byte{
		{st7789CASET, byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}, // Column address
		{st7789RASET, byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)}, // Row address
		{st7789RAMWR}, // Write to RAM
	})
}

// Refresh sets the window to full screen and redraws using the internal frame buffer.
func (d *st7789) Refresh() error {
	return d.RefreshRect(d.Bounds())
}

// RefreshRect redraws the given region of the internal frame buffer. The
// region is clipped to the display bounds; an empty intersection is a no-op.
func (d *st7789) RefreshRect(r image.Rectangle) error {
	r = r.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	if err := d.SetWindow(r); err != nil {
		return err
	}

	if r.Min.X == 0 && r.Dx() == d.width {
		// Full-width regions are contiguous in the buffer.
		return d.sendPix(d.Pix[r.Min.Y*d.Stride : r.Max.Y*d.Stride])
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := y*d.Stride + r.Min.X*2
		if err := d.data(d.Pix[i : i+r.Dx()*2]...); err != nil {
			return err
		}
	}
	return nil
}

func (d *st7789) sendPix(pix []byte) error {
	const batchSize = 4096

	for i, l := 0, len(pix); i < l; i += batchSize {
		j := i + batchSize
		if j > l {
			j = l
		}
		if err := d.data(pix[i:j]...); err != nil {
			return err
		}
	}
	return nil
}

// Interface check.
var _ Display = (*st7789)(nil)
