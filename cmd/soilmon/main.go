// Command soilmon polls soil moisture probes through an MCP3208 converter and
// shows every reading on an ILI9341 display, beeping according to the level.
//
// Hardware Setup (Raspberry Pi, defaults of the generated soilmon.yml):
//
//	ILI9341    Raspberry Pi
//	SCK        GPIO11 (SPI0 CLK)
//	MOSI       GPIO10 (SPI0 MOSI)
//	CS         GPIO8 (SPI0 CE0)
//	DC         GPIO25
//	RESET      GPIO24
//
//	MCP3208    SPI0 CE1, or any four GPIO lines with -adc gpio
//	Buzzer     GPIO18
//
// Run with -sim to render on an in-memory panel instead of hardware; together
// with -snapshot the last screen is saved as a BMP file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ece362/ili9341/internal/panelsim"
	"github.com/ece362/ili9341/moisture"
	"github.com/ece362/ili9341/monitor"
)

var (
	configPath = flag.String("config", "soilmon.yml", "Settings file, created with defaults when missing")
	adcBackend = flag.String("adc", "", "ADC backend: spi, gpio or fake (overrides the settings file)")
	sim        = flag.Bool("sim", false, "Render on an in-memory panel instead of the SPI display")
	snapshot   = flag.String("snapshot", "", "With -sim, write the final screen to this BMP file")
	cycles     = flag.Int("cycles", 0, "Stop after this many readings (0 runs until interrupted)")
	logLevel   = flag.String("log", "info", "Log level")
)

func main() {
	flag.Parse()

	log := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	log.SetLevel(level)

	if err := run(log); err != nil {
		log.Fatal(err)
	}
}

func run(log *logrus.Logger) (err error) {
	settings, err := LoadSettings(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if *adcBackend != "" {
		settings.ADC.Backend = *adcBackend
	}
	if *sim && *adcBackend == "" {
		settings.ADC.Backend = backendFake
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	if !*sim || settings.ADC.Backend != backendFake {
		if err := initHost(); err != nil {
			return fmt.Errorf("failed to initialize periph.io: %w", err)
		}
	}

	var cl closers
	defer func() {
		if cerr := cl.close(); cerr != nil {
			log.WithError(cerr).Warn("Cleanup failed")
		}
	}()

	dev, panel, err := openDisplay(settings.Display, *sim, &cl)
	if err != nil {
		return fmt.Errorf("failed to create display: %w", err)
	}
	cl.add(dev.Halt)
	log.WithField("display", dev).Info("Display initialized")

	adc, err := openADC(settings.ADC, &cl)
	if err != nil {
		return fmt.Errorf("failed to open ADC: %w", err)
	}
	log.WithField("backend", settings.ADC.Backend).Info("ADC ready")

	var alerter monitor.Alerter
	if !*sim {
		if alerter, err = openBuzzer(settings.Buzzer); err != nil {
			return fmt.Errorf("failed to open buzzer: %w", err)
		}
	}

	sampler := &moisture.Sampler{ADC: adc, Samples: settings.Samples}
	m, err := monitor.New(monitor.Config{
		Channels:   settings.Channels,
		Dwell:      settings.Dwell,
		Thresholds: settings.Thresholds,
	}, dev, sampler, alerter, log.WithField("component", "monitor"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *cycles > 0 {
		err = runCycles(ctx, m, *cycles, log)
	} else {
		err = m.Run(ctx)
	}
	if err != nil {
		return err
	}

	if *snapshot != "" && panel != nil {
		if err := writeSnapshot(panel, *snapshot); err != nil {
			return err
		}
		log.WithField("file", *snapshot).Info("Snapshot written")
	}
	return nil
}

// runCycles takes n readings back to back.
func runCycles(ctx context.Context, m *monitor.Monitor, n int, log *logrus.Logger) error {
	for i := 0; i < n && ctx.Err() == nil; i++ {
		r, err := m.Cycle()
		if err != nil {
			log.WithError(err).Warn("Cycle failed")
			continue
		}
		log.WithFields(logrus.Fields{
			"channel": r.Channel,
			"raw":     r.Raw,
			"volts":   fmt.Sprintf("%.2f", r.Volts),
			"level":   r.Level,
		}).Info("Reading")
	}
	return nil
}

func writeSnapshot(p *panelsim.Panel, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return p.WriteBMP(f)
}
