// Package monitor polls soil moisture probes round robin, shows each reading
// on the display and sounds the matching alert.
//
// One cycle handles one channel and walks the states SelectChannel, Sample,
// Classify, Render, Alert and Advance in that order. Everything runs on the
// caller's goroutine and blocks; between cycles the monitor waits Dwell.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/multierr"

	"github.com/ece362/ili9341/moisture"
	"github.com/ece362/ili9341/rgb565"
)

// Channel is one probe.
type Channel struct {
	Name string `yaml:"name"`
	Pin  int    `yaml:"pin"` // header pin the probe is wired to, shown on screen
	ADC  int    `yaml:"adc"` // converter input
}

// DefaultChannels are four probes on pins 45 to 42, wired to converter
// inputs 5 to 2.
var DefaultChannels = []Channel{
	{Name: "SENS1", Pin: 45, ADC: 5},
	{Name: "SENS2", Pin: 44, ADC: 4},
	{Name: "SENS3", Pin: 43, ADC: 3},
	{Name: "SENS4", Pin: 42, ADC: 2},
}

// DefaultDwell is the pause after each cycle.
const DefaultDwell = 3 * time.Second

// Config is fixed for the lifetime of a Monitor.
type Config struct {
	Channels   []Channel
	Dwell      time.Duration
	Thresholds moisture.Thresholds
}

// Display is the drawing surface the monitor renders on.
type Display interface {
	Bounds() image.Rectangle
	FillScreen(c rgb565.Color) error
	FillRect(x, y, w, h int, c rgb565.Color) error
	DrawString(x, y int, text string, fg, bg rgb565.Color, scale int) error
}

// Sampler returns one smoothed raw reading of a converter input.
type Sampler interface {
	Sample(channel int) (int, error)
}

// Alerter signals a level to the user and returns when done.
type Alerter interface {
	Alert(level moisture.Level) error
}

// State is a step of the acquisition cycle.
type State int

const (
	SelectChannel State = iota
	Sample
	Classify
	Render
	Alert
	Advance
)

func (s State) String() string {
	switch s {
	case SelectChannel:
		return "SelectChannel"
	case Sample:
		return "Sample"
	case Classify:
		return "Classify"
	case Render:
		return "Render"
	case Alert:
		return "Alert"
	case Advance:
		return "Advance"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Monitor runs the acquisition cycle.
type Monitor struct {
	cfg     Config
	disp    Display
	sampler Sampler
	alerter Alerter
	log     Logger

	state   State
	index   int
	ch      Channel
	raw     int
	reading moisture.Reading
	latest  []moisture.Reading
}

// New checks cfg and fills in defaults: DefaultDwell when Dwell is zero and
// moisture.DefaultThresholds when Thresholds is zero. alerter and log may be nil.
func New(cfg Config, disp Display, sampler Sampler, alerter Alerter, log Logger) (*Monitor, error) {
	if disp == nil {
		return nil, errors.New("monitor: display is required")
	}
	if sampler == nil {
		return nil, errors.New("monitor: sampler is required")
	}
	if len(cfg.Channels) == 0 {
		return nil, errors.New("monitor: no channels configured")
	}
	if cfg.Dwell == 0 {
		cfg.Dwell = DefaultDwell
	}
	if cfg.Dwell < 0 {
		return nil, fmt.Errorf("monitor: negative dwell %v", cfg.Dwell)
	}
	if cfg.Thresholds == (moisture.Thresholds{}) {
		cfg.Thresholds = moisture.DefaultThresholds
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}
	if log == nil {
		log = nopLogger{}
	}
	cfg.Channels = append([]Channel(nil), cfg.Channels...)

	return &Monitor{
		cfg:     cfg,
		disp:    disp,
		sampler: sampler,
		alerter: alerter,
		log:     log,
		latest:  make([]moisture.Reading, len(cfg.Channels)),
	}, nil
}

// State returns the state the next Step runs.
func (m *Monitor) State() State {
	return m.state
}

// Latest returns the most recent reading of every channel, in channel order.
// Channels not read yet have a zero Time.
func (m *Monitor) Latest() []moisture.Reading {
	return append([]moisture.Reading(nil), m.latest...)
}

// Step runs the current state and moves to the next one. A failed Sample
// skips to Advance; a failed Render still alerts.
func (m *Monitor) Step() error {
	switch m.state {
	case SelectChannel:
		m.ch = m.cfg.Channels[m.index]
		m.log.Debugf("selected %s (pin %d, adc %d)", m.ch.Name, m.ch.Pin, m.ch.ADC)
		m.state = Sample

	case Sample:
		raw, err := m.sampler.Sample(m.ch.ADC)
		if err != nil {
			m.state = Advance
			return fmt.Errorf("monitor: sample %s: %w", m.ch.Name, err)
		}
		m.raw = raw
		m.state = Classify

	case Classify:
		m.reading = moisture.NewReading(m.index, m.raw, m.cfg.Thresholds)
		m.latest[m.index] = m.reading
		m.log.Infof("%s raw=%d volts=%.2f level=%s", m.ch.Name, m.reading.Raw, m.reading.Volts, m.reading.Level)
		m.state = Render

	case Render:
		m.state = Alert
		if err := m.render(); err != nil {
			return fmt.Errorf("monitor: render %s: %w", m.ch.Name, err)
		}

	case Alert:
		m.state = Advance
		if m.alerter == nil {
			return nil
		}
		if err := m.alerter.Alert(m.reading.Level); err != nil {
			return fmt.Errorf("monitor: alert %s: %w", m.ch.Name, err)
		}

	case Advance:
		m.index = (m.index + 1) % len(m.cfg.Channels)
		m.state = SelectChannel

	default:
		return fmt.Errorf("monitor: invalid state %v", m.state)
	}
	return nil
}

// Cycle runs the states of one channel, from the current state through
// Advance, and returns the reading it took. The errors of every failed state
// are combined.
func (m *Monitor) Cycle() (moisture.Reading, error) {
	var errs error
	classified := false
	for {
		s := m.state
		errs = multierr.Append(errs, m.Step())
		if s == Classify {
			classified = true
		}
		if s == Advance {
			break
		}
	}
	if !classified {
		return moisture.Reading{}, errs
	}
	return m.reading, errs
}

// Run clears the screen, then cycles through the channels until ctx is done,
// waiting Dwell after each cycle. Cycle errors are logged, not returned.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.disp.FillScreen(rgb565.Black); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	m.log.Infof("monitoring %d channels every %v", len(m.cfg.Channels), m.cfg.Dwell)

	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := m.Cycle(); err != nil {
			m.log.Warnf("%v", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(m.cfg.Dwell):
		}
	}
}
