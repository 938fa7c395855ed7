// Package buzzer sounds a level dependent beep pattern on a GPIO driven
// buzzer.
package buzzer

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"

	"github.com/ece362/ili9341/moisture"
)

// Pulse is one beep followed by silence.
type Pulse struct {
	On  time.Duration `yaml:"on"`
	Off time.Duration `yaml:"off"`
}

// Pattern is a pulse repeated Count times.
type Pattern struct {
	Pulse `yaml:",inline"`
	Count int `yaml:"count"`
}

// Duration returns how long the pattern takes to play.
func (p Pattern) Duration() time.Duration {
	return time.Duration(p.Count) * (p.On + p.Off)
}

// Patterns maps levels to the pattern played for them.
type Patterns map[moisture.Level]Pattern

// DefaultPatterns: a long beep when dry, a short one when moist and three
// quick ones when too wet.
var DefaultPatterns = Patterns{
	moisture.Dry:   {Pulse: Pulse{On: 1000 * time.Millisecond, Off: 200 * time.Millisecond}, Count: 1},
	moisture.Moist: {Pulse: Pulse{On: 150 * time.Millisecond, Off: 300 * time.Millisecond}, Count: 1},
	moisture.Wet:   {Pulse: Pulse{On: 80 * time.Millisecond, Off: 80 * time.Millisecond}, Count: 3},
}

// Buzzer drives an active buzzer: High sounds, Low is silent.
type Buzzer struct {
	pin      gpio.PinOut
	patterns Patterns

	// Sleep waits between pin changes. Nil means time.Sleep.
	Sleep func(time.Duration)
}

// New returns a silent buzzer on pin. A nil patterns uses DefaultPatterns.
func New(pin gpio.PinOut, patterns Patterns) (*Buzzer, error) {
	if patterns == nil {
		patterns = DefaultPatterns
	}
	b := &Buzzer{pin: pin, patterns: patterns}
	if err := b.Off(); err != nil {
		return nil, err
	}
	return b, nil
}

// Alert plays the pattern of level and returns once it is finished. Levels
// without a pattern are silent. The buzzer is always left off.
func (b *Buzzer) Alert(level moisture.Level) (err error) {
	p, ok := b.patterns[level]
	if !ok {
		return nil
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, b.Off())
		}
	}()
	for i := 0; i < p.Count; i++ {
		if err := b.pin.Out(gpio.High); err != nil {
			return fmt.Errorf("buzzer: %w", err)
		}
		b.sleep(p.On)
		if err := b.pin.Out(gpio.Low); err != nil {
			return fmt.Errorf("buzzer: %w", err)
		}
		b.sleep(p.Off)
	}
	return nil
}

// Off silences the buzzer.
func (b *Buzzer) Off() error {
	if err := b.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("buzzer: %w", err)
	}
	return nil
}

func (b *Buzzer) sleep(d time.Duration) {
	if b.Sleep != nil {
		b.Sleep(d)
		return
	}
	time.Sleep(d)
}
