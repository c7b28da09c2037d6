package logger

import "github.com/lhrsolar/curvetracer/internal/errors"

// Logger defines the interface for logging operations.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
	Fatal() *LogEvent
}

type pkgLogger struct{}

// Default returns the package-level logger behind the Logger interface.
func Default() Logger { return pkgLogger{} }

func (pkgLogger) Debug() *LogEvent                         { return Debug() }
func (pkgLogger) Info() *LogEvent                          { return Info() }
func (pkgLogger) Warn() *LogEvent                          { return Warn() }
func (pkgLogger) Error() *LogEvent                         { return Error() }
func (pkgLogger) ErrorWithCode(err errors.Error) *LogEvent { return ErrorWithCode(err) }
func (pkgLogger) Fatal() *LogEvent                         { return Fatal() }
