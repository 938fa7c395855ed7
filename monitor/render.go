package monitor

import (
	"fmt"

	"github.com/ece362/ili9341/rgb565"
)

// Screen layout, in pixels.
const (
	headerHeight = 55
	textScale    = 2
	labelX       = 10
	valueX       = 150
	rawY         = 70
	voltY        = 120
	statusY      = 170
	levelY       = 210
)

// render draws the current reading over the whole screen.
func (m *Monitor) render() error {
	d := m.disp
	r := m.reading

	if err := d.FillScreen(rgb565.Black); err != nil {
		return err
	}
	if err := d.FillRect(0, 0, d.Bounds().Dx(), headerHeight, rgb565.Blue); err != nil {
		return err
	}

	text := []struct {
		x, y   int
		s      string
		fg, bg rgb565.Color
	}{
		{40, 10, fmt.Sprintf("%s (%d)", m.ch.Name, m.ch.Pin), rgb565.White, rgb565.Blue},
		{labelX, rawY, "RAW", rgb565.Green, rgb565.Black},
		{valueX, rawY, fmt.Sprint(r.Raw), rgb565.Green, rgb565.Black},
		{labelX, voltY, "VOLT", rgb565.Cyan, rgb565.Black},
		{valueX, voltY, fmt.Sprintf("%.2f", r.Volts), rgb565.Cyan, rgb565.Black},
		{labelX, statusY, "STATUS:", rgb565.Yellow, rgb565.Black},
		{labelX, levelY, r.Level.Label(), rgb565.Yellow, rgb565.Black},
	}
	for _, t := range text {
		if err := d.DrawString(t.x, t.y, t.s, t.fg, t.bg, textScale); err != nil {
			return err
		}
	}
	return nil
}
