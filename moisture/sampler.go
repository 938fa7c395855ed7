package moisture

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ADC reads one conversion from an analog channel.
type ADC interface {
	Read(channel int) (int, error)
}

// Sampler defaults.
const (
	DefaultSamples  = 20
	DefaultInterval = time.Millisecond
)

// Sampler averages several conversions to smooth out probe noise.
type Sampler struct {
	ADC      ADC
	Samples  int           // default: DefaultSamples
	Interval time.Duration // pause between conversions, default: DefaultInterval

	// Sleep waits between conversions. Nil means time.Sleep.
	Sleep func(time.Duration)
}

// Sample returns the integer mean of the configured number of conversions.
// The first conversion error aborts the sample.
func (s *Sampler) Sample(channel int) (int, error) {
	if s.ADC == nil {
		return 0, errors.New("moisture: sampler has no ADC")
	}
	n := s.Samples
	if n <= 0 {
		n = DefaultSamples
	}
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	sleep := s.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	sum := 0
	for i := 0; i < n; i++ {
		v, err := s.ADC.Read(channel)
		if err != nil {
			return 0, fmt.Errorf("moisture: channel %d sample %d: %w", channel, i, err)
		}
		sum += v
		sleep(interval)
	}
	return sum / n, nil
}

// FakeADC returns fixed values per channel. It stands in for a converter in
// dry runs and tests. The zero value reads 0 on every channel.
type FakeADC struct {
	mu     sync.Mutex
	values map[int]int
	reads  int
	err    error
}

// NewFakeADC returns a FakeADC where every channel reads value.
func NewFakeADC(value int) *FakeADC {
	return &FakeADC{values: map[int]int{-1: value}}
}

// SetValue sets the value returned for channel.
func (f *FakeADC) SetValue(channel, value int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		f.values = make(map[int]int)
	}
	f.values[channel] = value
}

// SetError makes every following read fail with err. A nil err clears it.
func (f *FakeADC) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Reads returns how many conversions were made.
func (f *FakeADC) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func (f *FakeADC) Read(channel int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.reads++
	if v, ok := f.values[channel]; ok {
		return v, nil
	}
	return f.values[-1], nil
}
