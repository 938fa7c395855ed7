package ili9341

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"math/bits"

	"github.com/ece362/ili9341/font8x8"
	"github.com/ece362/ili9341/rgb565"
)

// DrawPixel sets one pixel. Coordinates outside the display are ignored
// without touching the bus, so callers may draw shapes that run off screen.
func (d *Dev) DrawPixel(x, y int, c rgb565.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	return d.drawPixel(x, y, c)
}

func (d *Dev) drawPixel(x, y int, c rgb565.Color) error {
	if !(image.Point{X: x, Y: y}.In(d.rect)) {
		return nil
	}
	if err := d.setWindow(x, y, x, y); err != nil {
		return err
	}
	px := c.Bytes()
	if err := d.sendData(px[:]); err != nil {
		return err
	}
	d.shadowFill(image.Rect(x, y, x+1, y+1), c)
	return nil
}

// FillRect paints a w x h rectangle at (x, y) with c using a single window.
//
// The rectangle is not clipped: it must lie inside Bounds. w and h must be positive.
func (d *Dev) FillRect(x, y, w, h int, c rgb565.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	return d.fillRect(x, y, w, h, c)
}

func (d *Dev) fillRect(x, y, w, h int, c rgb565.Color) error {
	if w <= 0 || h <= 0 {
		return errInvalidRect
	}
	if err := d.setWindow(x, y, x+w-1, y+h-1); err != nil {
		return err
	}
	if err := d.stream(c, w*h); err != nil {
		return err
	}
	d.shadowFill(image.Rect(x, y, x+w, y+h), c)
	return nil
}

// FillScreen paints the whole display with c.
func (d *Dev) FillScreen(c rgb565.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	return d.fillRect(0, 0, d.rect.Dx(), d.rect.Dy(), c)
}

// DrawChar draws one 8x8 glyph with its top left corner at (x, y), every font
// pixel enlarged to a scale x scale block. A scale below 1 is treated as 1.
// Pixels of the cell that fall outside the display are dropped.
func (d *Dev) DrawChar(x, y int, code byte, fg, bg rgb565.Color, scale int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	return d.drawChar(x, y, code, fg, bg, max(scale, 1))
}

// DrawString draws text left to right starting at (x, y), one glyph per byte.
// Characters advance by 8*scale pixels plus the configured spacing. There is
// no wrapping; text past the right edge is clipped.
func (d *Dev) DrawString(x, y int, text string, fg, bg rgb565.Color, scale int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	scale = max(scale, 1)
	advance := font8x8.Width*scale + d.spacing
	for i := 0; i < len(text); i++ {
		if x >= d.rect.Max.X {
			break
		}
		if err := d.drawChar(x, y, text[i], fg, bg, scale); err != nil {
			return err
		}
		x += advance
	}
	return nil
}

// glyphRow returns a font row in the column order the controller expects:
// the memory access mode set at init mirrors columns, so stored bit 0 is
// drawn in column 7.
func glyphRow(g font8x8.Glyph, row int) byte {
	return bits.Reverse8(g[row])
}

func (d *Dev) drawChar(x, y int, code byte, fg, bg rgb565.Color, scale int) error {
	g := font8x8.Lookup(code)
	cell := image.Rect(x, y, x+font8x8.Width*scale, y+font8x8.Height*scale)

	// Fully visible cells go out as one window.
	if cell.In(d.rect) {
		return d.writeRect(cell, renderGlyph(g, fg, bg, scale))
	}

	for row := 0; row < font8x8.Height; row++ {
		line := glyphRow(g, row)
		for col := 0; col < font8x8.Width; col++ {
			c := bg
			if line&(1<<col) != 0 {
				c = fg
			}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					if err := d.drawPixel(x+col*scale+dx, y+row*scale+dy, c); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// renderGlyph returns the pixel stream of a scaled glyph cell, row major.
func renderGlyph(g font8x8.Glyph, fg, bg rgb565.Color, scale int) []byte {
	w := font8x8.Width * scale
	h := font8x8.Height * scale
	on, off := fg.Bytes(), bg.Bytes()

	pix := make([]byte, 0, 2*w*h)
	for py := 0; py < h; py++ {
		line := glyphRow(g, py/scale)
		for px := 0; px < w; px++ {
			if line&(1<<(px/scale)) != 0 {
				pix = append(pix, on[0], on[1])
			} else {
				pix = append(pix, off[0], off[1])
			}
		}
	}
	return pix
}

// Write writes a full frame of big-endian RGB565 pixel data.
// The data must be exactly Dx() * Dy() * 2 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return 0, errHalted
	}
	if len(pixels) != 2*d.rect.Dx()*d.rect.Dy() {
		return 0, errors.New("ili9341: invalid buffer size")
	}
	if err := d.writeRect(d.rect, pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw draws an image onto the display with differential update optimization.
// The dst rectangle specifies the destination region on the display.
// The src image is positioned at src point sp within the destination.
//
// The first Draw calls push the whole destination. Once a full screen has
// been written (by Draw, Write or FillScreen) only the bounding box of the
// pixels that changed since the previous frame is transferred.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}

	// Clip to display bounds, keeping sp aligned with the clipped origin
	clipped := dst.Intersect(d.rect)
	if clipped.Empty() {
		return nil
	}
	sp = sp.Add(clipped.Min.Sub(dst.Min))
	dst = clipped

	// Fast path: the source is already a full frame in wire order
	if img, ok := src.(*rgb565.Image); ok {
		if dst == d.rect && sp == (image.Point{}) && img.Rect == d.rect {
			return d.writeRect(d.rect, img.Pix)
		}
	}

	// Lazy-initialize the shadow frames
	if d.next == nil {
		d.next = rgb565.NewImage(d.rect)
		d.last = rgb565.NewImage(d.rect)
		d.synced = false
	}

	draw.Draw(d.next, dst, src, sp, draw.Src)

	r := dst
	if d.synced {
		r = d.diff()
		if r.Empty() {
			return nil
		}
	}
	return d.writeRect(r, d.region(r))
}

// writeRect windows r and streams pixels, which must cover r row by row.
func (d *Dev) writeRect(r image.Rectangle, pixels []byte) error {
	if err := d.setWindow(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1); err != nil {
		return err
	}
	if err := d.sendData(pixels); err != nil {
		return err
	}
	d.shadowBlit(r, pixels)
	return nil
}

// diff returns the bounding box of pixels that differ between the shadow
// frames, or an empty rectangle.
func (d *Dev) diff() image.Rectangle {
	width := d.rect.Dx()
	height := d.rect.Dy()
	stride := d.next.Stride

	minX, minY := width, height
	maxX, maxY := -1, -1

	for y := 0; y < height; y++ {
		rowStart := y * stride
		a := d.last.Pix[rowStart : rowStart+stride]
		b := d.next.Pix[rowStart : rowStart+stride]
		if bytes.Equal(a, b) {
			continue
		}
		minY = min(minY, y)
		maxY = y

		// Scan columns within this row for precise boundaries
		for i := 0; i < stride; i += 2 {
			if a[i] != b[i] || a[i+1] != b[i+1] {
				minX = min(minX, i/2)
				maxX = max(maxX, i/2)
			}
		}
	}

	if maxY < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1).Add(d.rect.Min)
}

// region extracts the pixel data of r from the next frame.
func (d *Dev) region(r image.Rectangle) []byte {
	rowBytes := 2 * r.Dx()
	out := make([]byte, 0, rowBytes*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := d.next.PixOffset(r.Min.X, y)
		out = append(out, d.next.Pix[i:i+rowBytes]...)
	}
	return out
}

// shadowFill records a solid fill in the shadow frames, if they exist.
func (d *Dev) shadowFill(r image.Rectangle, c rgb565.Color) {
	if d.next == nil {
		return
	}
	d.next.Fill(r, c)
	d.last.Fill(r, c)
	if d.rect.In(r) {
		d.synced = true
	}
}

// shadowBlit records pixels written to r in the shadow frames, if they exist.
func (d *Dev) shadowBlit(r image.Rectangle, pixels []byte) {
	if d.next == nil {
		return
	}
	rowBytes := 2 * r.Dx()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := pixels[(y-r.Min.Y)*rowBytes:][:rowBytes]
		i := d.next.PixOffset(r.Min.X, y)
		copy(d.next.Pix[i:i+rowBytes], src)
		copy(d.last.Pix[i:i+rowBytes], src)
	}
	if d.rect.In(r) {
		d.synced = true
	}
}
