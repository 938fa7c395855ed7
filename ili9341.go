package ili9341

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/ece362/ili9341/rgb565"
)

// Reference panel size in the landscape orientation programmed at init.
const (
	Width  = 320
	Height = 240
)

// Controller opcodes.
const (
	cmdSoftwareReset = 0x01
	cmdSleepOut      = 0x11
	cmdInvertOff     = 0x20
	cmdInvertOn      = 0x21
	cmdDisplayOff    = 0x28
	cmdDisplayOn     = 0x29
	cmdColumnAddrSet = 0x2A
	cmdRowAddrSet    = 0x2B
	cmdMemoryWrite   = 0x2C
	cmdMemoryAccess  = 0x36
	cmdPixelFormat   = 0x3A
)

const (
	pixelFormat16bpp = 0x55 // 16 bits per pixel on both interfaces
	memoryAccessMode = 0x28 // row/column exchange (landscape), BGR filter
)

// Settle times demanded by the controller.
const (
	resetSettle   = 50 * time.Millisecond
	resetPulse    = 50 * time.Millisecond
	resetRelease  = 120 * time.Millisecond
	softResetWait = 120 * time.Millisecond
	sleepOutWait  = 120 * time.Millisecond
)

const (
	defaultHz    = 40 * physic.MegaHertz
	defaultMaxTx = 4096
	maxSide      = 320
)

var sleep = time.Sleep

var (
	errHalted      = errors.New("ili9341: halted")
	errInvalidRect = errors.New("ili9341: invalid rectangle size")
)

// Opts is the configuration for the ILI9341 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 320, must be ≤320)
	H int // Height (default: 240, must be ≤320)

	// Panel calibration: added to every column and row address.
	// Some modules wire the glass at an offset into controller RAM.
	XOffset int
	YOffset int

	// Spacing is the gap in pixels between characters drawn by DrawString,
	// applied at every scale.
	Spacing int

	// SPI clock used by NewSPI (default: 40MHz)
	Hz physic.Frequency

	// Optional pins. CS is active low; leave it nil when the SPI port drives
	// chip select itself. RST is pulsed low at init when provided.
	CS  gpio.PinOut
	RST gpio.PinOut
}

// Dev is the device handle for the ILI9341 display.
//
// All methods are safe for concurrent use: each operation holds the device
// for its whole duration so transfers of different operations never interleave.
type Dev struct {
	mu sync.Mutex

	// Communication
	c   conn.Conn   // SPI connection
	dc  gpio.PinOut // Data/Command pin
	cs  gpio.PinOut // Chip select (optional)
	rst gpio.PinOut // Reset pin (optional)

	maxTx int
	buf   []byte // scratch for repeated pixel streams

	// Display geometry
	rect             image.Rectangle
	xOffset, yOffset int
	spacing          int

	// Shadow frames for differential Draw, allocated on first use
	next   *rgb565.Image
	last   *rgb565.Image
	synced bool

	// State
	halted bool
}

var _ display.Drawer = (*Dev)(nil)

// NewSPI creates a new ILI9341 device connected via SPI.
//
// The SPI port is configured for Mode0 (CPOL=0, CPHA=0), 8-bit transfers at
// opts.Hz. The dc (Data/Command) GPIO pin must be provided and configured as an output.
//
// opts can be nil to use defaults (320x240 display, no CS or RST pin).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	hz := defaultHz
	if opts != nil && opts.Hz != 0 {
		hz = opts.Hz
	}
	c, err := p.Connect(hz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ili9341: failed to connect: %w", err)
	}
	return New(c, dc, opts)
}

// New creates a new ILI9341 device on an established connection and runs the
// initialization sequence. The connection is borrowed, not owned.
func New(c conn.Conn, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if c == nil {
		return nil, errors.New("ili9341: connection is required")
	}
	if dc == nil {
		return nil, errors.New("ili9341: DC pin is required")
	}

	o := Opts{W: Width, H: Height}
	if opts != nil {
		o = *opts
		if o.W == 0 {
			o.W = Width
		}
		if o.H == 0 {
			o.H = Height
		}
	}
	if o.W < 0 || o.W > maxSide {
		return nil, fmt.Errorf("ili9341: width must be between 1 and %d", maxSide)
	}
	if o.H < 0 || o.H > maxSide {
		return nil, fmt.Errorf("ili9341: height must be between 1 and %d", maxSide)
	}
	if o.XOffset < 0 || o.YOffset < 0 {
		return nil, errors.New("ili9341: offsets must not be negative")
	}
	if o.Spacing < 0 {
		return nil, errors.New("ili9341: spacing must not be negative")
	}

	maxTx := defaultMaxTx
	if l, ok := c.(conn.Limits); ok {
		if n := l.MaxTxSize(); n > 0 && n < maxTx {
			maxTx = n
		}
	}
	// Pixels are two bytes and must never straddle a transfer boundary.
	maxTx &^= 1
	if maxTx < 2 {
		maxTx = 2
	}

	d := &Dev{
		c:       c,
		dc:      dc,
		cs:      o.CS,
		rst:     o.RST,
		maxTx:   maxTx,
		rect:    image.Rect(0, 0, o.W, o.H),
		xOffset: o.XOffset,
		yOffset: o.YOffset,
		spacing: o.Spacing,
	}

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// init runs reset, software reset, configuration, wake up and display on,
// strictly in that order.
func (d *Dev) init() error {
	if d.cs != nil {
		if err := d.cs.Out(gpio.High); err != nil {
			return fmt.Errorf("ili9341: failed to release CS: %w", err)
		}
	}

	// Hardware reset sequence (if RST pin is provided)
	if d.rst != nil {
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("ili9341: failed to pull RST high: %w", err)
		}
		sleep(resetSettle)

		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("ili9341: failed to pull RST low: %w", err)
		}
		sleep(resetPulse)

		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("ili9341: failed to release RST: %w", err)
		}
		sleep(resetRelease)
	}

	if err := d.sendCommand(cmdSoftwareReset); err != nil {
		return err
	}
	sleep(softResetWait)

	if err := d.sendCommand(cmdDisplayOff); err != nil {
		return err
	}
	if err := d.command(cmdPixelFormat, pixelFormat16bpp); err != nil {
		return err
	}
	if err := d.command(cmdMemoryAccess, memoryAccessMode); err != nil {
		return err
	}

	if err := d.sendCommand(cmdSleepOut); err != nil {
		return err
	}
	sleep(sleepOutWait)

	return d.sendCommand(cmdDisplayOn)
}

// sendCommand sends a single command byte.
func (d *Dev) sendCommand(cmd byte) error {
	return d.frame(gpio.Low, []byte{cmd})
}

// sendData sends a slice of data bytes as one frame.
func (d *Dev) sendData(data []byte) error {
	return d.frame(gpio.High, data)
}

// command sends cmd followed by its argument bytes, if any.
func (d *Dev) command(cmd byte, args ...byte) error {
	if err := d.sendCommand(cmd); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	return d.sendData(args)
}

// frame transfers b with DC at mode inside one chip select bracket.
func (d *Dev) frame(mode gpio.Level, b []byte) error {
	return d.selected(func() error {
		if err := d.dc.Out(mode); err != nil {
			return err
		}
		return d.tx(b)
	})
}

// selected runs fn with chip select asserted. CS is released even when fn fails.
func (d *Dev) selected(fn func() error) (err error) {
	if d.cs == nil {
		return fn()
	}
	if err := d.cs.Out(gpio.Low); err != nil {
		return fmt.Errorf("ili9341: failed to assert CS: %w", err)
	}
	defer func() {
		err = multierr.Append(err, d.cs.Out(gpio.High))
	}()
	return fn()
}

// tx writes b in chunks the connection accepts.
func (d *Dev) tx(b []byte) error {
	for len(b) > 0 {
		n := min(len(b), d.maxTx)
		if err := d.c.Tx(b[:n], nil); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// stream sends n pixels of color c as one data frame.
func (d *Dev) stream(c rgb565.Color, n int) error {
	if d.buf == nil {
		d.buf = make([]byte, d.maxTx)
	}
	px := c.Bytes()
	run := d.buf[:2*min(n, len(d.buf)/2)]
	for i := 0; i < len(run); i += 2 {
		run[i], run[i+1] = px[0], px[1]
	}

	return d.selected(func() error {
		if err := d.dc.Out(gpio.High); err != nil {
			return err
		}
		for n > 0 {
			k := min(n, len(run)/2)
			if err := d.c.Tx(run[:2*k], nil); err != nil {
				return err
			}
			n -= k
		}
		return nil
	})
}

// setWindow programs the inclusive column and row range of the next memory
// write and leaves the controller streaming pixels into it.
func (d *Dev) setWindow(x0, y0, x1, y1 int) error {
	x0, x1 = x0+d.xOffset, x1+d.xOffset
	y0, y1 = y0+d.yOffset, y1+d.yOffset

	if err := d.command(cmdColumnAddrSet, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	if err := d.command(cmdRowAddrSet, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
		return err
	}
	return d.sendCommand(cmdMemoryWrite)
}

// SetWindow selects the inclusive region x0..x1, y0..y1 for the pixel data
// that follows. The caller must then write exactly (x1-x0+1)*(y1-y0+1)
// pixels with WritePixels; every drawing method of Dev sets its own window,
// so an incomplete stream only affects callers that bypass them.
//
// Coordinates are not validated.
func (d *Dev) SetWindow(x0, y0, x1, y1 int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	return d.setWindow(x0, y0, x1, y1)
}

// WritePixels streams raw big-endian RGB565 pixel data into the current window.
func (d *Dev) WritePixels(pix []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	if len(pix)%2 != 0 {
		return errors.New("ili9341: odd pixel data length")
	}
	return d.sendData(pix)
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Invert inverts the display colors.
func (d *Dev) Invert(invert bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	cmd := byte(cmdInvertOff)
	if invert {
		cmd = cmdInvertOn
	}
	return d.sendCommand(cmd)
}

// Halt turns the display off.
// After calling Halt, every drawing operation fails until a new Dev is created.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.halted = true
	return d.sendCommand(cmdDisplayOff)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ili9341.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
