// Package progress abstracts the logging the matching engine's core
// packages emit, so they never depend on a concrete logging
// implementation. CLI entrypoints supply a concrete Logger; tests can
// supply a no-op one.
package progress

import (
	"fmt"
	"log"
	"os"
)

// Logger is the minimal leveled-logging surface core packages consume.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// StdLogger is a Logger backed by the standard library's log package,
// wrapped behind the Logger interface so core packages never import
// log directly.
type StdLogger struct {
	verbose bool
	l       *log.Logger
}

// NewStdLogger returns a Logger that writes to stderr, with Debugf
// calls suppressed unless verbose is set.
func NewStdLogger(verbose bool) *StdLogger {
	return &StdLogger{verbose: verbose, l: log.New(os.Stderr, "", log.LstdFlags)}
}

func (s *StdLogger) Debugf(format string, args ...any) {
	if !s.verbose {
		return
	}
	s.l.Output(2, "DEBUG "+fmt.Sprintf(format, args...))
}

func (s *StdLogger) Infof(format string, args ...any) {
	s.l.Output(2, "INFO "+fmt.Sprintf(format, args...))
}

func (s *StdLogger) Warnf(format string, args ...any) {
	s.l.Output(2, "WARN "+fmt.Sprintf(format, args...))
}

// Nop is a Logger that discards everything, useful in tests.
type Nop struct{}

func (Nop) Debugf(string, ...any) {}
func (Nop) Infof(string, ...any)  {}
func (Nop) Warnf(string, ...any)  {}
