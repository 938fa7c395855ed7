package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/ece362/ili9341/buzzer"
	"github.com/ece362/ili9341/moisture"
	"github.com/ece362/ili9341/monitor"
)

type Settings struct {
	Display DisplaySettings `yaml:"display"`
	ADC     ADCSettings     `yaml:"adc"`
	Buzzer  BuzzerSettings  `yaml:"buzzer"`

	Channels   []monitor.Channel   `yaml:"channels"`
	Dwell      time.Duration       `yaml:"dwell"`
	Samples    int                 `yaml:"samples"`
	Thresholds moisture.Thresholds `yaml:"thresholds"`
}

type DisplaySettings struct {
	SPI     string `yaml:"spi"`
	Hz      int64  `yaml:"hz"`
	DC      string `yaml:"dc"`
	CS      string `yaml:"cs"`
	RST     string `yaml:"rst"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	XOffset int    `yaml:"xOffset"`
	YOffset int    `yaml:"yOffset"`
	Spacing int    `yaml:"spacing"`
}

// ADC backends.
const (
	backendSPI  = "spi"
	backendGPIO = "gpio"
	backendFake = "fake"
)

type ADCSettings struct {
	Backend string `yaml:"backend"`

	// spi
	SPI string `yaml:"spi"`

	// gpio
	Chip string `yaml:"chip"`
	CLK  int    `yaml:"clk"`
	CSZ  int    `yaml:"csz"`
	DI   int    `yaml:"di"`
	DO   int    `yaml:"do"`

	// fake
	FakeValue  int         `yaml:"fakeValue"`
	FakeValues map[int]int `yaml:"fakeValues,omitempty"`
}

type BuzzerSettings struct {
	Pin      string          `yaml:"pin"`
	Patterns buzzer.Patterns `yaml:"patterns,omitempty"`
}

var DefaultSettings = Settings{
	Display: DisplaySettings{
		SPI:     "",
		Hz:      40000000,
		DC:      "GPIO25",
		RST:     "GPIO24",
		Width:   320,
		Height:  240,
		Spacing: 2,
	},
	ADC: ADCSettings{
		Backend:   backendSPI,
		SPI:       "SPI0.1",
		Chip:      "gpiochip0",
		CLK:       21,
		CSZ:       26,
		DI:        20,
		DO:        19,
		FakeValue: 3000,
	},
	Buzzer: BuzzerSettings{
		Pin: "GPIO18",
	},
	Channels:   monitor.DefaultChannels,
	Dwell:      monitor.DefaultDwell,
	Samples:    moisture.DefaultSamples,
	Thresholds: moisture.DefaultThresholds,
}

// LoadSettings reads the settings file at path. A missing file is created
// with DefaultSettings. Keys absent from the file keep their default.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, SaveSettings(path, s)
	}
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes s to path as YAML.
func SaveSettings(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s Settings) Validate() error {
	switch s.ADC.Backend {
	case backendSPI, backendGPIO, backendFake:
	default:
		return fmt.Errorf("unknown adc backend %q", s.ADC.Backend)
	}
	if len(s.Channels) == 0 {
		return errors.New("no channels")
	}
	if s.Display.DC == "" {
		return errors.New("display dc pin is required")
	}
	if s.Samples < 0 {
		return errors.New("samples must not be negative")
	}
	return s.Thresholds.Validate()
}
