// Package log provides the logging interface for the thinkr SDK.
//
// The SDK is silent by default. Applications already using logrus can pass
// [NewLogrus]; any other logger can be plugged implementing [Logger]:
//
//	type myLogger struct{}
//
//	func (l myLogger) Infof(format string, args ...any)    { slog.Info(fmt.Sprintf(format, args...)) }
//	func (l myLogger) Warningf(format string, args ...any) { slog.Warn(fmt.Sprintf(format, args...)) }
//	func (l myLogger) Errorf(format string, args ...any)   { slog.Error(fmt.Sprintf(format, args...)) }
//	func (l myLogger) Debugf(format string, args ...any)   { slog.Debug(fmt.Sprintf(format, args...)) }
//	// ... remaining methods
//
// Every SDK log line carries an `svc` value naming the component that logged it,
// polls also carry the operation `kind`.
package log

import (
	"github.com/sirupsen/logrus"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	loglogrus "github.com/SailingSF/thinkr-web-app-sub000/internal/log/logrus"
)

// Logger is the interface that loggers must implement for the SDK.
type Logger = log.Logger

// Kv are structured logging key-value pairs.
type Kv = log.Kv

// Noop discards all log output, the default when [lib.Config] has no logger.
var Noop = log.Noop

// NewLogrus returns a Logger writing to a logrus entry. Polls of the SDK log at
// debug level, the entry level decides what gets through.
func NewLogrus(e *logrus.Entry) Logger {
	if e == nil {
		e = logrus.NewEntry(logrus.StandardLogger())
	}
	return loglogrus.NewLogrus(e)
}
