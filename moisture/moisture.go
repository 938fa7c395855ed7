// Package moisture turns raw readings of a resistive soil moisture probe into
// a coarse dryness level.
//
// The probe reads high when dry and low when wet. A 12-bit converter at 3.3V
// reports values from 0 to FullScale.
package moisture

import (
	"errors"
	"fmt"
	"time"
)

// Converter characteristics.
const (
	FullScale = 4095
	VRef      = 3.3
)

// Level is the classified state of the soil.
type Level int

const (
	Dry Level = iota
	Moist
	Wet
)

func (l Level) String() string {
	switch l {
	case Dry:
		return "DRY"
	case Moist:
		return "MOIST"
	case Wet:
		return "WET"
	}
	return "INVALID"
}

// Label is the text shown to the user for the level.
func (l Level) Label() string {
	if l == Wet {
		return "TOO WET"
	}
	return l.String()
}

// Thresholds split the raw range into levels. Readings below Wet are wet,
// readings below Moist are moist and everything else is dry.
type Thresholds struct {
	Wet   int `yaml:"wet"`
	Moist int `yaml:"moist"`
}

var DefaultThresholds = Thresholds{
	Wet:   2200,
	Moist: 3800,
}

// Validate checks that the thresholds describe three ordered bands.
func (t Thresholds) Validate() error {
	if t.Wet <= 0 {
		return errors.New("moisture: wet threshold must be positive")
	}
	if t.Moist < t.Wet {
		return fmt.Errorf("moisture: moist threshold %d below wet threshold %d", t.Moist, t.Wet)
	}
	if t.Moist > FullScale+1 {
		return fmt.Errorf("moisture: moist threshold %d above full scale", t.Moist)
	}
	return nil
}

// Classify maps a raw reading to a level.
func (t Thresholds) Classify(raw int) Level {
	switch {
	case raw < t.Wet:
		return Wet
	case raw < t.Moist:
		return Moist
	default:
		return Dry
	}
}

// Classify maps a raw reading to a level using DefaultThresholds.
func Classify(raw int) Level {
	return DefaultThresholds.Classify(raw)
}

// Voltage converts a raw reading to volts at the converter input.
func Voltage(raw int) float64 {
	return VRef * float64(raw) / FullScale
}

// Reading is one classified sample of a channel.
type Reading struct {
	Channel int
	Raw     int
	Volts   float64
	Level   Level
	Time    time.Time
}

// NewReading classifies raw with t.
func NewReading(channel, raw int, t Thresholds) Reading {
	return Reading{
		Channel: channel,
		Raw:     raw,
		Volts:   Voltage(raw),
		Level:   t.Classify(raw),
		Time:    time.Now(),
	}
}
