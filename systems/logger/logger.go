// Package logger provides go-home styled loggers.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/go-home-io/wled-effects/plugins/common"
)

// LogLevel represents minimal log level.
type LogLevel int

const (
	// Debug describes debug log level.
	Debug LogLevel = iota
	// Info describes info log level.
	Info
	// Warning describes warn log level.
	Warning
	// Error describes error log level.
	Error
)

const (
	// ConsoleLogger describes colored console output.
	ConsoleLogger = "console"
	// JSONLogger describes structured json output.
	JSONLogger = "json"
)

// LogNodeToken describes instance log entry.
const LogNodeToken = "node"

// ConstructLogger has data required for a new logger.
type ConstructLogger struct {
	LoggerType string
	Level      string
	NodeID     string
	Output     io.Writer
}

// Logger provider wrapper implementation.
type provider struct {
	logger common.ILoggerProvider
	level  LogLevel
	nodeID string
}

// NewLoggerProvider constructs a new logger.
func NewLoggerProvider(ctor *ConstructLogger) (common.ILoggerProvider, error) {
	level, err := ParseLevel(ctor.Level)
	if err != nil {
		return nil, err
	}

	out := ctor.Output
	if nil == out {
		out = os.Stdout
	}

	prov := provider{
		nodeID: ctor.NodeID,
		level:  level,
	}

	switch strings.ToLower(ctor.LoggerType) {
	case "", ConsoleLogger:
		prov.logger = NewConsoleLogger()
	case JSONLogger:
		prov.logger = newJSONLogger(out)
	default:
		return nil, &ErrUnknownLogger{Type: ctor.LoggerType}
	}

	return &prov, nil
}

// ParseLevel converts config value into log level.
func ParseLevel(raw string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return Info, nil
	case "debug":
		return Debug, nil
	case "warn", "warning":
		return Warning, nil
	case "error":
		return Error, nil
	}

	return Info, &ErrUnknownLevel{Level: raw}
}

// Debug sends debug level message.
func (p *provider) Debug(msg string, fields ...string) {
	if p.level > Debug {
		return
	}

	p.logger.Debug(msg, p.prepareFields(fields...)...)
}

// Info sends info level message.
func (p *provider) Info(msg string, fields ...string) {
	if p.level > Info {
		return
	}

	p.logger.Info(msg, p.prepareFields(fields...)...)
}

// Warn sends warning level message.
func (p *provider) Warn(msg string, fields ...string) {
	if p.level > Warning {
		return
	}

	p.logger.Warn(msg, p.prepareFields(fields...)...)
}

// Error sends error level message.
func (p *provider) Error(msg string, err error, fields ...string) {
	p.logger.Error(msg, err, p.prepareFields(fields...)...)
}

// Fatal sends fatal level message and exits.
func (p *provider) Fatal(msg string, err error, fields ...string) {
	p.logger.Fatal(msg, err, p.prepareFields(fields...)...)
}

// Flush flushes logger buffer if any.
func (p *provider) Flush() {
	p.logger.Flush()
}

// Extending logger fields with current node ID.
func (p *provider) prepareFields(fields ...string) []string {
	if "" == p.nodeID {
		return fields
	}

	return append(fields, LogNodeToken, p.nodeID)
}
