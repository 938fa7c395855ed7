package monitor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ece362/ili9341/moisture"
	"github.com/ece362/ili9341/rgb565"
)

// fakeDisplay records drawing calls as strings.
type fakeDisplay struct {
	ops     []string
	failOn  string
	failErr error
}

func (d *fakeDisplay) Bounds() image.Rectangle { return image.Rect(0, 0, 320, 240) }

func (d *fakeDisplay) record(op string) error {
	d.ops = append(d.ops, op)
	if d.failOn != "" && strings.HasPrefix(op, d.failOn) {
		return d.failErr
	}
	return nil
}

func (d *fakeDisplay) FillScreen(c rgb565.Color) error {
	return d.record(fmt.Sprintf("screen %04X", uint16(c)))
}

func (d *fakeDisplay) FillRect(x, y, w, h int, c rgb565.Color) error {
	return d.record(fmt.Sprintf("rect %d,%d %dx%d %04X", x, y, w, h, uint16(c)))
}

func (d *fakeDisplay) DrawString(x, y int, text string, fg, bg rgb565.Color, scale int) error {
	return d.record(fmt.Sprintf("text %d,%d %q %04X/%04X x%d", x, y, text, uint16(fg), uint16(bg), scale))
}

type fakeAlerter struct {
	levels []moisture.Level
	err    error
	after  func(n int)
}

func (a *fakeAlerter) Alert(l moisture.Level) error {
	a.levels = append(a.levels, l)
	if a.after != nil {
		a.after(len(a.levels))
	}
	return a.err
}

func newSampler(adc moisture.ADC) *moisture.Sampler {
	return &moisture.Sampler{ADC: adc, Samples: 1, Sleep: func(time.Duration) {}}
}

func newTestMonitor(t *testing.T, adc *moisture.FakeADC) (*Monitor, *fakeDisplay, *fakeAlerter, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	disp := &fakeDisplay{}
	al := &fakeAlerter{}
	m, err := New(Config{Channels: DefaultChannels, Dwell: time.Millisecond}, disp, newSampler(adc), al, log)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m, disp, al, hook
}

func TestNew(t *testing.T) {
	s := newSampler(moisture.NewFakeADC(0))
	tests := []struct {
		name    string
		cfg     Config
		disp    Display
		sampler Sampler
		wantErr bool
	}{
		{"defaults", Config{Channels: DefaultChannels}, &fakeDisplay{}, s, false},
		{"no channels", Config{}, &fakeDisplay{}, s, true},
		{"no display", Config{Channels: DefaultChannels}, nil, s, true},
		{"no sampler", Config{Channels: DefaultChannels}, &fakeDisplay{}, nil, true},
		{"negative dwell", Config{Channels: DefaultChannels, Dwell: -time.Second}, &fakeDisplay{}, s, true},
		{"bad thresholds", Config{Channels: DefaultChannels, Thresholds: moisture.Thresholds{Wet: 3000, Moist: 10}}, &fakeDisplay{}, s, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.cfg, tt.disp, tt.sampler, nil, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if m.cfg.Dwell != DefaultDwell {
				t.Errorf("Dwell = %v, want %v", m.cfg.Dwell, DefaultDwell)
			}
			if m.cfg.Thresholds != moisture.DefaultThresholds {
				t.Errorf("Thresholds = %+v, want defaults", m.cfg.Thresholds)
			}
		})
	}
}

func TestStepOrder(t *testing.T) {
	m, _, _, _ := newTestMonitor(t, moisture.NewFakeADC(3000))

	want := []State{Sample, Classify, Render, Alert, Advance, SelectChannel}
	for i, w := range want {
		if err := m.Step(); err != nil {
			t.Fatalf("Step %d error = %v", i, err)
		}
		if got := m.State(); got != w {
			t.Fatalf("after step %d state = %v, want %v", i, got, w)
		}
	}
}

func TestCycleRoundRobin(t *testing.T) {
	adc := moisture.NewFakeADC(0)
	adc.SetValue(5, 4000) // SENS1
	adc.SetValue(4, 3000) // SENS2
	adc.SetValue(3, 1000) // SENS3
	adc.SetValue(2, 3800) // SENS4
	m, _, al, _ := newTestMonitor(t, adc)

	wantRaw := []int{4000, 3000, 1000, 3800, 4000}
	wantLevel := []moisture.Level{moisture.Dry, moisture.Moist, moisture.Wet, moisture.Dry, moisture.Dry}
	for i := range wantRaw {
		r, err := m.Cycle()
		if err != nil {
			t.Fatalf("Cycle %d error = %v", i, err)
		}
		if r.Channel != i%4 || r.Raw != wantRaw[i] || r.Level != wantLevel[i] {
			t.Errorf("Cycle %d = {channel %d raw %d level %v}, want {%d %d %v}",
				i, r.Channel, r.Raw, r.Level, i%4, wantRaw[i], wantLevel[i])
		}
	}
	if !reflect.DeepEqual(al.levels, wantLevel) {
		t.Errorf("alerts = %v, want %v", al.levels, wantLevel)
	}

	latest := m.Latest()
	if len(latest) != 4 || latest[2].Raw != 1000 {
		t.Errorf("Latest() = %+v", latest)
	}
}

func TestRenderLayout(t *testing.T) {
	adc := moisture.NewFakeADC(0)
	adc.SetValue(5, 3000)
	m, disp, _, _ := newTestMonitor(t, adc)

	if _, err := m.Cycle(); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"screen 0000",
		"rect 0,0 320x55 001F",
		`text 40,10 "SENS1 (45)" FFFF/001F x2`,
		`text 10,70 "RAW" 07E0/0000 x2`,
		`text 150,70 "3000" 07E0/0000 x2`,
		`text 10,120 "VOLT" 07FF/0000 x2`,
		`text 150,120 "2.42" 07FF/0000 x2`,
		`text 10,170 "STATUS:" FFE0/0000 x2`,
		`text 10,210 "MOIST" FFE0/0000 x2`,
	}
	if !reflect.DeepEqual(disp.ops, want) {
		t.Errorf("render =\n%s\nwant\n%s", strings.Join(disp.ops, "\n"), strings.Join(want, "\n"))
	}
}

func TestRenderTooWet(t *testing.T) {
	m, disp, _, _ := newTestMonitor(t, moisture.NewFakeADC(100))
	if _, err := m.Cycle(); err != nil {
		t.Fatal(err)
	}
	if got, want := disp.ops[len(disp.ops)-1], `text 10,210 "TOO WET" FFE0/0000 x2`; got != want {
		t.Errorf("status line = %s, want %s", got, want)
	}
}

func TestSampleErrorSkipsChannel(t *testing.T) {
	adc := moisture.NewFakeADC(3000)
	boom := errors.New("no conversion")
	adc.SetError(boom)
	m, disp, al, _ := newTestMonitor(t, adc)

	_, err := m.Cycle()
	if !errors.Is(err, boom) {
		t.Fatalf("Cycle() error = %v, want %v", err, boom)
	}
	if len(disp.ops) != 0 || len(al.levels) != 0 {
		t.Errorf("failed sample still rendered %v and alerted %v", disp.ops, al.levels)
	}

	adc.SetError(nil)
	r, err := m.Cycle()
	if err != nil {
		t.Fatal(err)
	}
	if r.Channel != 1 {
		t.Errorf("next cycle read channel %d, want 1", r.Channel)
	}
}

func TestRenderErrorStillAlerts(t *testing.T) {
	m, disp, al, _ := newTestMonitor(t, moisture.NewFakeADC(3000))
	boom := errors.New("bus fault")
	disp.failOn, disp.failErr = "rect", boom

	r, err := m.Cycle()
	if !errors.Is(err, boom) {
		t.Fatalf("Cycle() error = %v, want %v", err, boom)
	}
	if r.Level != moisture.Moist {
		t.Errorf("reading level = %v, want MOIST", r.Level)
	}
	if len(al.levels) != 1 {
		t.Errorf("alerts = %v, want one", al.levels)
	}
	if m.State() != SelectChannel {
		t.Errorf("state = %v, want SelectChannel", m.State())
	}
}

func TestRun(t *testing.T) {
	m, disp, al, hook := newTestMonitor(t, moisture.NewFakeADC(4000))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	al.after = func(n int) {
		if n == 3 {
			cancel()
		}
	}
	al.err = errors.New("buzzer stuck")

	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(al.levels) != 3 {
		t.Errorf("Run made %d cycles, want 3", len(al.levels))
	}
	if disp.ops[0] != "screen 0000" {
		t.Errorf("Run did not clear the screen first: %v", disp.ops[0])
	}

	warns := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warns++
			if !strings.Contains(e.Message, "buzzer stuck") {
				t.Errorf("warning %q does not carry the alert error", e.Message)
			}
		}
	}
	if warns != 3 {
		t.Errorf("logged %d warnings, want 3", warns)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{SelectChannel, "SelectChannel"},
		{Advance, "Advance"},
		{State(42), "State(42)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
