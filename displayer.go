package ili9341

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"

	"github.com/ece362/ili9341/rgb565"
)

// Displayer adapts a Dev to the tinygo drivers.Displayer interface.
//
// SetPixel cannot report errors, so the first failure is kept and returned by
// the next call to Display.
type Displayer struct {
	d   *Dev
	err error
}

var _ drivers.Displayer = (*Displayer)(nil)

// Displayer returns a tinygo drivers.Displayer view of the device.
func (d *Dev) Displayer() *Displayer {
	return &Displayer{d: d}
}

func (p *Displayer) Size() (x, y int16) {
	r := p.d.Bounds()
	return int16(r.Dx()), int16(r.Dy())
}

// SetPixel writes the pixel straight to the panel.
func (p *Displayer) SetPixel(x, y int16, c color.RGBA) {
	p.keep(p.d.DrawPixel(int(x), int(y), rgb565.FromRGB(c.R, c.G, c.B)))
}

// Display reports the first error since the previous call. Pixels are not
// buffered, so there is nothing to flush.
func (p *Displayer) Display() error {
	err := p.err
	p.err = nil
	return err
}

// FillRectangle fills the part of the rectangle that lies on the display.
func (p *Displayer) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	r := image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height)).Intersect(p.d.Bounds())
	if r.Empty() {
		return nil
	}
	return p.d.FillRect(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), rgb565.FromRGB(c.R, c.G, c.B))
}

func (p *Displayer) keep(err error) {
	if err != nil && p.err == nil {
		p.err = err
	}
}
