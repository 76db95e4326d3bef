package golin

import (
	"log"

	"github.com/fatih/color"
)

// EventType is the level of a log message. Verbosity follows the order of
// the constants, EventTypeError being the least verbose.
type EventType int

const (
	EventTypeError EventType = iota
	EventTypeWarning
	EventTypeInfo
	EventTypeDebug
)

var eventTypeNames = [...]string{"ERROR", "WARN", "INFO", "DEBUG"}

func (et EventType) String() string {
	if et < 0 || int(et) >= len(eventTypeNames) {
		return "UNKNOWN"
	}
	return eventTypeNames[et]
}

// Logger receives debug output from masters and transports
type Logger interface {
	Log(level EventType, msg string)
}

type LoggerFunc func(level EventType, msg string)

func (f LoggerFunc) Log(level EventType, msg string) {
	f(level, msg)
}

type nopLogger struct{}

func (nopLogger) Log(EventType, string) {}

// NopLogger discards everything
var NopLogger Logger = nopLogger{}

var levelColors = map[EventType]func(format string, a ...interface{}) string{
	EventTypeError:   color.New(color.FgRed).SprintfFunc(),
	EventTypeWarning: color.New(color.FgYellow).SprintfFunc(),
	EventTypeInfo:    color.New(color.FgGreen).SprintfFunc(),
	EventTypeDebug:   color.New(color.FgHiBlue).SprintfFunc(),
}

// StdLogger writes to the standard logger, dropping events more verbose than Max
type StdLogger struct {
	Max EventType
}

func NewStdLogger(max EventType) *StdLogger {
	return &StdLogger{Max: max}
}

func (l *StdLogger) Log(level EventType, msg string) {
	if level > l.Max {
		return
	}
	tag := level.String()
	if c, ok := levelColors[level]; ok {
		tag = c("%s", tag)
	}
	log.Printf("[%s] %s", tag, msg)
}
