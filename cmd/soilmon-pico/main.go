//go:build tinygo

// Command soilmon-pico is the soil moisture monitor as firmware for a
// Raspberry Pi Pico.
//
//	ILI9341    Pico
//	SCK        GP18 (SPI0 SCK)
//	MOSI       GP19 (SPI0 TX)
//	CS         GP17
//	DC         GP20
//	RESET      GP21
//
//	Probes     GP26..GP29 (ADC0..ADC3)
//	Buzzer     GP15
//
// The fourth probe needs a board that breaks GP29 out as ADC3, such as the
// Seeed XIAO RP2040 or Pimoroni Tiny 2040. On a stock Pico GP29 is wired to
// VSYS/3 internally, so SENS4 is left out there (build with -tags stockpico).
package main

import (
	"context"
	"errors"
	"machine"
	"time"

	"github.com/ece362/ili9341"
	"github.com/ece362/ili9341/buzzer"
	"github.com/ece362/ili9341/internal/tinyio"
	"github.com/ece362/ili9341/moisture"
	"github.com/ece362/ili9341/monitor"
)

// picoADC reads the on-chip converter. The hardware result is scaled to 16
// bits by machine.ADC, so it is shifted back to 12.
type picoADC []machine.ADC

func (a picoADC) Read(ch int) (int, error) {
	if ch < 0 || ch >= len(a) {
		return 0, errors.New("no such ADC input")
	}
	return int(a[ch].Get() >> 4), nil
}

func outPin(name string, p machine.Pin) *tinyio.Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &tinyio.Pin{N: name, Set: p.Set}
}

func main() {
	log := monitor.PrintLogger{}

	if err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 40 * machine.MHz,
		SCK:       machine.GP18,
		SDO:       machine.GP19,
		SDI:       machine.GP16,
	}); err != nil {
		halt(err)
	}

	dev, err := ili9341.New(&tinyio.Conn{Bus: machine.SPI0}, outPin("DC", machine.GP20), &ili9341.Opts{
		CS:      outPin("CS", machine.GP17),
		RST:     outPin("RST", machine.GP21),
		Spacing: 2,
	})
	if err != nil {
		halt(err)
	}
	log.Infof("display %s ready", dev)

	machine.InitADC()
	adc := picoADC{
		{Pin: machine.ADC0},
		{Pin: machine.ADC1},
		{Pin: machine.ADC2},
		{Pin: machine.ADC3},
	}[:len(channels)]
	for _, a := range adc {
		a.Configure(machine.ADCConfig{})
	}

	bz, err := buzzer.New(outPin("BUZZ", machine.GP15), nil)
	if err != nil {
		halt(err)
	}

	m, err := monitor.New(monitor.Config{
		Channels: channels,
	}, dev, &moisture.Sampler{ADC: adc}, bz, log)
	if err != nil {
		halt(err)
	}

	if err := m.Run(context.Background()); err != nil {
		halt(err)
	}
}

// halt reports err on the console and blinks the LED forever.
func halt(err error) {
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		println("fatal: " + err.Error())
		machine.LED.High()
		time.Sleep(500 * time.Millisecond)
		machine.LED.Low()
		time.Sleep(500 * time.Millisecond)
	}
}
