package logger

import (
	"github.com/go-home-io/wled-effects/plugins/common"
)

// Plugin logger implementation.
type pluginLogger struct {
	systemLogger common.ILoggerProvider
	pluginFields []string
}

// ConstructPluginLogger has data required for a new plugin logger.
type ConstructPluginLogger struct {
	SystemLogger common.ILoggerProvider
	System       string
	Provider     string
}

// NewPluginLogger constructs a new plugin logger.
// It adds system type and provider name to every message of
// the wrapped logger and is passed to effects and sub-systems.
func NewPluginLogger(ctor *ConstructPluginLogger) common.ILoggerProvider {
	return &pluginLogger{
		systemLogger: ctor.SystemLogger,
		pluginFields: []string{common.LogSystemToken, ctor.System, common.LogProviderToken, ctor.Provider},
	}
}

// Debug sends debug level message.
func (l *pluginLogger) Debug(msg string, fields ...string) {
	l.systemLogger.Debug(msg, l.merge(fields)...)
}

// Info sends info level message.
func (l *pluginLogger) Info(msg string, fields ...string) {
	l.systemLogger.Info(msg, l.merge(fields)...)
}

// Warn sends warning level message.
func (l *pluginLogger) Warn(msg string, fields ...string) {
	l.systemLogger.Warn(msg, l.merge(fields)...)
}

// Error sends error level message.
func (l *pluginLogger) Error(msg string, err error, fields ...string) {
	l.systemLogger.Error(msg, err, l.merge(fields)...)
}

// Fatal sends fatal level message and exits.
func (l *pluginLogger) Fatal(msg string, err error, fields ...string) {
	l.systemLogger.Fatal(msg, err, l.merge(fields)...)
}

// Flush flushes the wrapped logger.
func (l *pluginLogger) Flush() {
	l.systemLogger.Flush()
}

// Plugin fields go first, so caller-provided system token wins.
func (l *pluginLogger) merge(fields []string) []string {
	all := make([]string, 0, len(fields)+len(l.pluginFields))
	all = append(all, l.pluginFields...)
	return append(all, fields...)
}
