package main

import (
	"fmt"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/ece362/ili9341"
	"github.com/ece362/ili9341/buzzer"
	"github.com/ece362/ili9341/internal/panelsim"
	"github.com/ece362/ili9341/mcp3208"
	"github.com/ece362/ili9341/moisture"
	"github.com/ece362/ili9341/monitor"
)

// closers collects cleanup functions to run in reverse order.
type closers []func() error

func (c *closers) add(f func() error) {
	*c = append(*c, f)
}

func (c closers) close() error {
	var err error
	for i := len(c) - 1; i >= 0; i-- {
		err = multierr.Append(err, c[i]())
	}
	return err
}

func pinByName(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("GPIO pin %s not found", name)
	}
	return p, nil
}

func initHost() error {
	_, err := host.Init()
	return err
}

// openDisplay opens the display described by s. With sim set the display is
// an in-memory panel, which is returned as well.
func openDisplay(s DisplaySettings, sim bool, cl *closers) (*ili9341.Dev, *panelsim.Panel, error) {
	opts := &ili9341.Opts{
		W:       s.Width,
		H:       s.Height,
		XOffset: s.XOffset,
		YOffset: s.YOffset,
		Spacing: s.Spacing,
		Hz:      physic.Frequency(s.Hz) * physic.Hertz,
	}

	if sim {
		p := panelsim.New(s.Width, s.Height)
		opts.CS = p.CS
		dev, err := ili9341.NewSPI(p, p.DC, opts)
		return dev, p, err
	}

	b, err := spireg.Open(s.SPI)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open SPI bus: %w", err)
	}
	cl.add(b.Close)

	dc, err := pinByName(s.DC)
	if err != nil {
		return nil, nil, err
	}
	if cs, err := pinByName(s.CS); err != nil {
		return nil, nil, err
	} else if cs != nil {
		opts.CS = cs
	}
	if rst, err := pinByName(s.RST); err != nil {
		return nil, nil, err
	} else if rst != nil {
		opts.RST = rst
	}

	dev, err := ili9341.NewSPI(b, dc, opts)
	if err != nil {
		return nil, nil, err
	}
	return dev, nil, nil
}

// openADC returns the converter selected by s.Backend.
func openADC(s ADCSettings, cl *closers) (moisture.ADC, error) {
	switch s.Backend {
	case backendFake:
		adc := moisture.NewFakeADC(s.FakeValue)
		for ch, v := range s.FakeValues {
			adc.SetValue(ch, v)
		}
		return adc, nil

	case backendGPIO:
		adc, err := mcp3208.NewGPIO(s.Chip, s.CLK, s.CSZ, s.DI, s.DO)
		if err != nil {
			return nil, err
		}
		cl.add(adc.Close)
		return adc, nil

	case backendSPI:
		p, err := spireg.Open(s.SPI)
		if err != nil {
			return nil, fmt.Errorf("failed to open ADC SPI bus: %w", err)
		}
		cl.add(p.Close)
		return mcp3208.NewSPI(p)
	}
	return nil, fmt.Errorf("unknown adc backend %q", s.Backend)
}

// openBuzzer returns nil when no pin is configured.
func openBuzzer(s BuzzerSettings) (monitor.Alerter, error) {
	pin, err := pinByName(s.Pin)
	if err != nil || pin == nil {
		return nil, err
	}
	b, err := buzzer.New(pin, s.Patterns)
	if err != nil {
		return nil, err
	}
	return b, nil
}
