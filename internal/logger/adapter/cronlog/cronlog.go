// Package cronlog adapts the global zerolog logger to the robfig/cron Logger interface.
package cronlog

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger forwards cron messages to zerolog. Info goes to debug level, cron is chatty.
type Logger struct {
	logger *zerolog.Logger
}

var _ cron.Logger = (*Logger)(nil)

// New returns a cron logger writing through the global zerolog logger.
func New() *Logger {
	return &Logger{}
}

// NewWithLogger returns a cron logger writing to l.
func NewWithLogger(l zerolog.Logger) *Logger {
	return &Logger{logger: &l}
}

func (l *Logger) target() *zerolog.Logger {
	if l.logger != nil {
		return l.logger
	}

	return &log.Logger
}

// Info implements cron.Logger.
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	withFields(l.target().Debug(), keysAndValues).Str("component", "cron").Msg(msg)
}

// Error implements cron.Logger.
func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	withFields(l.target().Error().Err(err), keysAndValues).Str("component", "cron").Msg(msg)
}

func withFields(e *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		e = e.Interface(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1])
	}

	if len(keysAndValues)%2 == 1 {
		e = e.Interface("extra", keysAndValues[len(keysAndValues)-1])
	}

	return e
}
