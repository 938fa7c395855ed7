// Package panelsim emulates the write path of an ILI9341 controller.
//
// A Panel decodes the command/data byte stream the way the controller does:
// column and row address commands program a window, the memory write command
// resets the write cursor to the window origin, and every following pair of
// data bytes lands in the frame at the cursor, which advances column first,
// then row, wrapping inside the window.
//
// The Panel is an spi.Port, an spi.Conn and owns the DC and CS pins, so it can
// stand in for real hardware both in tests and in dry runs.
package panelsim

import (
	"fmt"
	"image"
	"io"
	"sync"

	"golang.org/x/image/bmp"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/ece362/ili9341/rgb565"
)

const (
	cmdSoftwareReset = 0x01
	cmdSleepOut      = 0x11
	cmdDisplayOff    = 0x28
	cmdDisplayOn     = 0x29
	cmdColumnAddrSet = 0x2A
	cmdRowAddrSet    = 0x2B
	cmdMemoryWrite   = 0x2C
	cmdPixelFormat   = 0x3A
)

// DefaultMaxTx is the transfer size reported through MaxTxSize when MaxTx is zero.
const DefaultMaxTx = 4096

// Panel is an in-memory ILI9341.
type Panel struct {
	// DC selects command (Low) or data (High) for each transfer.
	DC *gpiotest.Pin
	// CS is active low. Transfers while it is High are ignored.
	CS *gpiotest.Pin
	// MaxTx is the largest transfer accepted in one Tx. Zero means DefaultMaxTx.
	MaxTx int

	mu       sync.Mutex
	frame    *rgb565.Image
	cmd      byte
	args     []byte
	params   map[byte][]byte
	commands []byte

	col0, col1 int
	row0, row1 int
	x, y       int
	hi         byte
	odd        bool
	pixels     int

	awake bool
	on    bool
}

// New returns a Panel with a w x h frame, all black.
func New(w, h int) *Panel {
	p := &Panel{
		DC:     &gpiotest.Pin{N: "DC"},
		CS:     &gpiotest.Pin{N: "CS"},
		frame:  rgb565.NewImage(image.Rect(0, 0, w, h)),
		params: map[byte][]byte{},
	}
	p.resetWindow()
	return p
}

func (p *Panel) resetWindow() {
	b := p.frame.Bounds()
	p.col0, p.col1 = 0, b.Dx()-1
	p.row0, p.row1 = 0, b.Dy()-1
}

// String implements conn.Resource.
func (p *Panel) String() string {
	b := p.frame.Bounds()
	return fmt.Sprintf("panelsim.Panel{%dx%d}", b.Dx(), b.Dy())
}

// Connect implements spi.Port.
func (p *Panel) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if bits != 8 {
		return nil, fmt.Errorf("panelsim: unsupported word size %d", bits)
	}
	return p, nil
}

// LimitSpeed implements spi.Port.
func (p *Panel) LimitSpeed(f physic.Frequency) error {
	return nil
}

// Close implements spi.PortCloser.
func (p *Panel) Close() error {
	return nil
}

// Duplex implements conn.Conn.
func (p *Panel) Duplex() conn.Duplex {
	return conn.Half
}

// MaxTxSize implements conn.Limits.
func (p *Panel) MaxTxSize() int {
	if p.MaxTx > 0 {
		return p.MaxTx
	}
	return DefaultMaxTx
}

// TxPackets implements spi.Conn.
func (p *Panel) TxPackets(pkts []spi.Packet) error {
	for _, pk := range pkts {
		if err := p.Tx(pk.W, pk.R); err != nil {
			return err
		}
	}
	return nil
}

// Tx implements conn.Conn. The controller is write only here, so r is left untouched.
func (p *Panel) Tx(w, r []byte) error {
	if len(w) > p.MaxTxSize() {
		return fmt.Errorf("panelsim: transfer of %d bytes exceeds %d", len(w), p.MaxTxSize())
	}
	if p.CS.Read() == gpio.High {
		return nil
	}
	command := p.DC.Read() == gpio.Low

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range w {
		if command {
			p.command(b)
		} else {
			p.data(b)
		}
	}
	return nil
}

func (p *Panel) command(b byte) {
	p.cmd = b
	p.args = p.args[:0]
	p.odd = false
	p.commands = append(p.commands, b)
	p.params[b] = nil

	switch b {
	case cmdSoftwareReset:
		p.awake, p.on = false, false
		p.resetWindow()
	case cmdSleepOut:
		p.awake = true
	case cmdDisplayOff:
		p.on = false
	case cmdDisplayOn:
		p.on = true
	case cmdMemoryWrite:
		p.x, p.y = p.col0, p.row0
	}
}

func (p *Panel) data(b byte) {
	switch p.cmd {
	case cmdMemoryWrite:
		if !p.odd {
			p.hi, p.odd = b, true
			return
		}
		p.odd = false
		p.frame.SetRGB565(p.x, p.y, rgb565.Color(p.hi)<<8|rgb565.Color(b))
		p.pixels++
		p.x++
		if p.x > p.col1 {
			p.x = p.col0
			p.y++
			if p.y > p.row1 {
				p.y = p.row0
			}
		}
	case cmdColumnAddrSet, cmdRowAddrSet:
		p.args = append(p.args, b)
		p.params[p.cmd] = append(p.params[p.cmd], b)
		if len(p.args) != 4 {
			return
		}
		start := int(p.args[0])<<8 | int(p.args[1])
		end := int(p.args[2])<<8 | int(p.args[3])
		if p.cmd == cmdColumnAddrSet {
			p.col0, p.col1 = start, end
		} else {
			p.row0, p.row1 = start, end
		}
	default:
		p.params[p.cmd] = append(p.params[p.cmd], b)
	}
}

// Commands returns every command byte received so far, in order.
func (p *Panel) Commands() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.commands...)
}

// Param returns the data bytes that followed the last occurrence of cmd.
func (p *Panel) Param(cmd byte) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.params[cmd]...)
}

// Ready reports whether the controller left sleep, is displaying and runs 16 bits per pixel.
func (p *Panel) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	pf := p.params[cmdPixelFormat]
	return p.awake && p.on && len(pf) == 1 && pf[0] == 0x55
}

// Pixels returns how many pixels were written since the last ResetStats.
func (p *Panel) Pixels() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pixels
}

// ResetStats clears the command log and the pixel counter. The frame is kept.
func (p *Panel) ResetStats() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commands = p.commands[:0]
	p.pixels = 0
}

// At returns the pixel at (x, y).
func (p *Panel) At(x, y int) rgb565.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame.RGB565At(x, y)
}

// Image returns a copy of the frame.
func (p *Panel) Image() *rgb565.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	img := rgb565.NewImage(p.frame.Rect)
	copy(img.Pix, p.frame.Pix)
	return img
}

// WriteBMP encodes the frame as a BMP image.
func (p *Panel) WriteBMP(w io.Writer) error {
	return bmp.Encode(w, p.Image())
}
