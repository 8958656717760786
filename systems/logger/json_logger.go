package logger

import (
	"io"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/sirupsen/logrus"
)

// Structured logger, writes one json object per line.
type jsonLogger struct {
	logger *logrus.Logger
}

// Constructs a new json logger.
func newJSONLogger(out io.Writer) common.ILoggerProvider {
	l := logrus.New()
	l.Out = out
	l.Formatter = &logrus.JSONFormatter{}
	l.Level = logrus.DebugLevel

	return &jsonLogger{
		logger: l,
	}
}

// Debug prints debug level message.
func (p *jsonLogger) Debug(msg string, fields ...string) {
	p.entry(fields).Debug(msg)
}

// Info prints info level message.
func (p *jsonLogger) Info(msg string, fields ...string) {
	p.entry(fields).Info(msg)
}

// Warn prints warning level message.
func (p *jsonLogger) Warn(msg string, fields ...string) {
	p.entry(fields).Warn(msg)
}

// Error prints error level message.
func (p *jsonLogger) Error(msg string, err error, fields ...string) {
	p.entry(withError(err, fields)).Error(msg)
}

// Fatal prints fatal level message and exits.
func (p *jsonLogger) Fatal(msg string, err error, fields ...string) {
	p.entry(withError(err, fields)).Fatal(msg)
}

// Flush isn't needed, logrus writes synchronously.
func (p *jsonLogger) Flush() {
}

// Converts key-value pairs into logrus entry.
func (p *jsonLogger) entry(fields []string) *logrus.Entry {
	f := logrus.Fields{}
	for k, v := range withFields(fields...) {
		f[k] = v
	}

	return p.logger.WithFields(f)
}
