// Package mcp3208 reads the Microchip MCP3208 8-channel 12-bit ADC.
//
// The converter can be wired to a hardware SPI port (NewSPI) or, on Linux, to
// four plain GPIO lines that are bit-banged through the character device
// (NewGPIO).
package mcp3208

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Channels is the number of single-ended inputs.
const Channels = 8

// MaxHz is the highest clock the converter supports at 2.7V.
const MaxHz = 1 * physic.MegaHertz

// Dev is an MCP3208 on an SPI connection.
type Dev struct {
	c conn.Conn
}

// NewSPI connects to the converter at MaxHz in mode 0.
func NewSPI(p spi.Port) (*Dev, error) {
	c, err := p.Connect(MaxHz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("mcp3208: failed to connect: %w", err)
	}
	return New(c), nil
}

// New returns a Dev on an established connection.
func New(c conn.Conn) *Dev {
	return &Dev{c: c}
}

// Read performs one single-ended conversion on channel ch and returns the
// 12-bit result.
func (d *Dev) Read(ch int) (int, error) {
	if ch < 0 || ch >= Channels {
		return 0, fmt.Errorf("mcp3208: invalid channel %d", ch)
	}
	// Start bit, single-ended, then the three channel bits split over the
	// first two bytes so the result lands byte aligned.
	tx := []byte{0x06 | byte(ch>>2), byte(ch&3) << 6, 0}
	rx := make([]byte, len(tx))
	if err := d.c.Tx(tx, rx); err != nil {
		return 0, fmt.Errorf("mcp3208: channel %d: %w", ch, err)
	}
	return int(rx[1]&0x0F)<<8 | int(rx[2]), nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("mcp3208.Dev{%s}", d.c)
}
