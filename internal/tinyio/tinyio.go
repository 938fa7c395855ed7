// Package tinyio adapts TinyGo peripherals to the periph.io interfaces the
// display driver is written against.
package tinyio

import (
	"errors"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
	"tinygo.org/x/drivers"
)

// Conn is a half duplex conn.Conn over a TinyGo SPI bus.
type Conn struct {
	Bus   drivers.SPI
	MaxTx int // zero means no limit
}

var _ conn.Conn = (*Conn)(nil)
var _ conn.Limits = (*Conn)(nil)

func (c *Conn) String() string {
	return "tinyio.Conn"
}

func (c *Conn) Duplex() conn.Duplex {
	return conn.Half
}

// Tx writes w. r may be nil; when set it must be as long as w.
func (c *Conn) Tx(w, r []byte) error {
	if r != nil && len(r) != len(w) {
		return errors.New("tinyio: read and write buffers differ in length")
	}
	return c.Bus.Tx(w, r)
}

func (c *Conn) MaxTxSize() int {
	return c.MaxTx
}

// Pin is an output-only gpio.PinOut driven by a setter, such as the Set
// method of a TinyGo machine.Pin.
type Pin struct {
	N   string
	Set func(high bool)

	level gpio.Level
}

var _ gpio.PinOut = (*Pin)(nil)

func (p *Pin) String() string   { return p.N }
func (p *Pin) Name() string     { return p.N }
func (p *Pin) Number() int      { return -1 }
func (p *Pin) Function() string { return "Out/" + p.level.String() }
func (p *Pin) Halt() error      { return nil }

func (p *Pin) Func() pin.Func {
	if p.level {
		return gpio.OUT_HIGH
	}
	return gpio.OUT_LOW
}

func (p *Pin) Out(l gpio.Level) error {
	p.level = l
	p.Set(bool(l))
	return nil
}

func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("tinyio: PWM not supported")
}

// Level returns the last level written.
func (p *Pin) Level() gpio.Level {
	return p.level
}
