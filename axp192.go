package tft

import (
	"fmt"
	"time"

	"github.com/BeatGlow/tft/conn"
)

// AXP192 registers.
const (
	axp192Addr          = 0x34
	axp192RegPowerCtl   = 0x12 // DC-DC1/3 and LDO2/3 output control
	axp192PowerLDO2     = 1 << 2
	axp192PowerLDO3     = 1 << 3
	axp192PowerSettleMs = 50
)

// AXP192 is the power management IC found on M5-class boards, where it gates
// the panel logic supply (LDO2) and the backlight (LDO3). It implements
// PowerSequencer.
type AXP192 struct {
	bus *conn.I2C
}

// OpenAXP192 opens the PMIC on the numbered I²C device, use -1 for the first
// available device.
func OpenAXP192(device int) (*AXP192, error) {
	bus, err := conn.OpenI2C(device, axp192Addr)
	if err != nil {
		return nil, fmt.Errorf("axp192: %w", err)
	}
	return &AXP192{bus: bus}, nil
}

func (p *AXP192) String() string {
	return fmt.Sprintf("AXP192 on %s", p.bus)
}

func (p *AXP192) Close() error {
	return p.bus.Close()
}

// PowerOn enables the panel and backlight rails and waits for them to settle.
func (p *AXP192) PowerOn() error {
	ctl, err := p.readReg(axp192RegPowerCtl)
	if err != nil {
		return fmt.Errorf("axp192: power control read: %w", err)
	}
	ctl |= axp192PowerLDO2 | axp192PowerLDO3
	if err = p.writeReg(axp192RegPowerCtl, ctl); err != nil {
		return fmt.Errorf("axp192: power control write: %w", err)
	}
	time.Sleep(axp192PowerSettleMs * time.Millisecond)
	return nil
}

// PowerOff cuts the panel and backlight rails.
func (p *AXP192) PowerOff() error {
	ctl, err := p.readReg(axp192RegPowerCtl)
	if err != nil {
		return fmt.Errorf("axp192: power control read: %w", err)
	}
	ctl &^= axp192PowerLDO2 | axp192PowerLDO3
	if err = p.writeReg(axp192RegPowerCtl, ctl); err != nil {
		return fmt.Errorf("axp192: power control write: %w", err)
	}
	return nil
}

func (p *AXP192) readReg(reg byte) (byte, error) {
	var buf [1]byte
	if err := p.bus.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (p *AXP192) writeReg(reg, value byte) error {
	return p.bus.Tx([]byte{reg, value}, nil)
}

// Interface check.
var _ PowerSequencer = (*AXP192)(nil)
