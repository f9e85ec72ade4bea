package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
)

// PtermLogger adapts pterm's structured logger to Logger.
type PtermLogger struct {
	base   *pterm.Logger
	fields []Field
}

// NewPtermLogger builds a logger writing to w at the named level
// (debug, info, warn, error, off). json selects the JSON formatter.
func NewPtermLogger(w io.Writer, level string, json bool) (*PtermLogger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := pterm.DefaultLogger.WithWriter(w).WithLevel(lvl).WithTime(false)
	if json {
		l = l.WithFormatter(pterm.LogFormatterJSON)
	}
	return &PtermLogger{base: l}, nil
}

// ParseLevel maps a level name to its pterm level.
func ParseLevel(level string) (pterm.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return pterm.LogLevelDebug, nil
	case "", "info":
		return pterm.LogLevelInfo, nil
	case "warn", "warning":
		return pterm.LogLevelWarn, nil
	case "error":
		return pterm.LogLevelError, nil
	case "off", "none", "disabled":
		return pterm.LogLevelDisabled, nil
	}
	return pterm.LogLevelInfo, fmt.Errorf("unknown log level %q", level)
}

func (l *PtermLogger) Debug(msg string, fields ...Field) { l.base.Debug(msg, l.args(fields)) }
func (l *PtermLogger) Info(msg string, fields ...Field)  { l.base.Info(msg, l.args(fields)) }
func (l *PtermLogger) Warn(msg string, fields ...Field)  { l.base.Warn(msg, l.args(fields)) }
func (l *PtermLogger) Error(msg string, fields ...Field) { l.base.Error(msg, l.args(fields)) }

func (l *PtermLogger) With(fields ...Field) Logger {
	merged := append(append([]Field{}, l.fields...), fields...)
	return &PtermLogger{base: l.base, fields: merged}
}

func (l *PtermLogger) args(fields []Field) []pterm.LoggerArgument {
	out := make([]pterm.LoggerArgument, 0, len(l.fields)+len(fields))
	for _, f := range l.fields {
		out = append(out, pterm.LoggerArgument{Key: f.Key(), Value: f.Value()})
	}
	for _, f := range fields {
		out = append(out, pterm.LoggerArgument{Key: f.Key(), Value: f.Value()})
	}
	return out
}
