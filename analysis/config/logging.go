package config

import (
	"io"
	"log"
)

// LogLevel orders the pass's logging verbosity.
type LogLevel int

const (
	// ErrLevel is the minimum level of logging: hard-abort invariant
	// violations only.
	ErrLevel LogLevel = iota + 1

	// WarnLevel additionally logs soft warnings: unhandled
	// instruction kinds, iteration cap exceeded.
	WarnLevel

	// InfoLevel additionally logs high-level progress (component start,
	// fixed-point convergence).
	InfoLevel

	// DebugLevel additionally logs per-function, per-block detail. The
	// pass runs fine on translation-unit-sized IRs at this level.
	DebugLevel

	// TraceLevel logs per-instruction detail; only usable on small test
	// fixtures.
	TraceLevel
)

// LogGroup is a set of level-gated *log.Logger instances, one per level,
// so callers can pass a single *log.Logger downstream (e.g. GetDebug())
// without threading a LogGroup everywhere.
type LogGroup struct {
	level LogLevel
	trace *log.Logger
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger

	warnings int
}

// NewLogGroup returns a LogGroup configured from c.LogLevel, writing to
// the standard logger's current output (os.Stderr unless redirected).
func NewLogGroup(c *Config) *LogGroup {
	l := &LogGroup{
		level: LogLevel(c.LogLevel),
		trace: log.New(log.Writer(), "[TRACE] ", log.LstdFlags),
		debug: log.New(log.Writer(), "[DEBUG] ", log.LstdFlags),
		info:  log.New(log.Writer(), "[INFO] ", log.LstdFlags),
		warn:  log.New(log.Writer(), "[WARN] ", log.LstdFlags),
		err:   log.New(log.Writer(), "[ERROR] ", log.LstdFlags),
	}
	return l
}

// SetAllOutput redirects every level's logger to w.
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.trace.SetOutput(w)
	l.debug.SetOutput(w)
	l.info.SetOutput(w)
	l.warn.SetOutput(w)
	l.err.SetOutput(w)
}

func (l *LogGroup) Tracef(format string, v ...any) {
	if l.level >= TraceLevel {
		l.trace.Printf(format, v...)
	}
}

func (l *LogGroup) Debugf(format string, v ...any) {
	if l.level >= DebugLevel {
		l.debug.Printf(format, v...)
	}
}

func (l *LogGroup) Infof(format string, v ...any) {
	if l.level >= InfoLevel {
		l.info.Printf(format, v...)
	}
}

// Warnf logs a soft-warning and increments the warning
// counter regardless of whether WarnLevel is enabled, so callers can
// still assert "zero warnings" in tests run at a quieter level.
func (l *LogGroup) Warnf(format string, v ...any) {
	l.warnings++
	if l.level >= WarnLevel {
		l.warn.Printf(format, v...)
	}
}

func (l *LogGroup) Errorf(format string, v ...any) {
	if l.level >= ErrLevel {
		l.err.Printf(format, v...)
	}
}

// Warnings returns the number of soft warnings emitted so far.
func (l *LogGroup) Warnings() int { return l.warnings }

// GetDebug returns the debug-level logger, for code that wants a plain
// *log.Logger.
func (l *LogGroup) GetDebug() *log.Logger { return l.debug }
