//go:build !linux

package mcp3208

import "errors"

var errNoGPIO = errors.New("mcp3208: GPIO backend requires linux")

// GPIO is an MCP3208 bit-banged over GPIO lines. It is only available on Linux.
type GPIO struct{}

func NewGPIO(chip string, clk, csz, di, do int) (*GPIO, error) {
	return nil, errNoGPIO
}

func (g *GPIO) Read(ch int) (int, error) {
	return 0, errNoGPIO
}

func (g *GPIO) Close() error {
	return nil
}
