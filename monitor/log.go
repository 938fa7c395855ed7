package monitor

import "fmt"

// Logger is the subset of logrus.FieldLogger the monitor uses.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
}

// PrintLogger writes every message through println, for targets without a
// logging library. It has no concept of levels.
type PrintLogger struct{}

func (PrintLogger) Debugf(format string, v ...any) {
	println(fmt.Sprintf(format, v...))
}

func (PrintLogger) Infof(format string, v ...any) {
	println(fmt.Sprintf(format, v...))
}

func (PrintLogger) Warnf(format string, v ...any) {
	println("WARN " + fmt.Sprintf(format, v...))
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
