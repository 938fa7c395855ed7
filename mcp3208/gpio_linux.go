//go:build linux

package mcp3208

import (
	"fmt"

	"github.com/warthog618/gpiod"
	"github.com/warthog618/gpiod/spi/mcp3w0c"
	"go.uber.org/multierr"
)

// GPIO is an MCP3208 bit-banged over GPIO lines.
type GPIO struct {
	adc *mcp3w0c.MCP3w0c
}

// NewGPIO requests the clk, csz, di and do line offsets on the named chip,
// for example "gpiochip0".
func NewGPIO(chip string, clk, csz, di, do int) (*GPIO, error) {
	c, err := gpiod.NewChip(chip, gpiod.WithConsumer("mcp3208"))
	if err != nil {
		return nil, fmt.Errorf("mcp3208: %w", err)
	}

	adc, err := mcp3w0c.NewMCP3208(c, clk, csz, di, do)
	if err != nil {
		return nil, fmt.Errorf("mcp3208: %w", multierr.Append(err, c.Close()))
	}
	// The requested lines stay valid after the chip is closed.
	if err := c.Close(); err != nil {
		return nil, fmt.Errorf("mcp3208: %w", multierr.Append(err, adc.Close()))
	}
	return &GPIO{adc: adc}, nil
}

// Read performs one single-ended conversion on channel ch.
func (g *GPIO) Read(ch int) (int, error) {
	if ch < 0 || ch >= Channels {
		return 0, fmt.Errorf("mcp3208: invalid channel %d", ch)
	}
	v, err := g.adc.Read(ch)
	if err != nil {
		return 0, fmt.Errorf("mcp3208: channel %d: %w", ch, err)
	}
	return int(v), nil
}

// Close releases the GPIO lines.
func (g *GPIO) Close() error {
	return g.adc.Close()
}
