package logger

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/go-home-io/wled-effects/plugins/common"
)

// Default console logger.
type consoleLogger struct {
}

// NewConsoleLogger constructs a new console logger.
func NewConsoleLogger() common.ILoggerProvider {
	return &consoleLogger{}
}

// Debug prints debug level message.
func (p *consoleLogger) Debug(msg string, fields ...string) {
	output(msg, withFields(fields...), color.FgCyan)
}

// Info prints info level message.
func (p *consoleLogger) Info(msg string, fields ...string) {
	output(msg, withFields(fields...), color.FgGreen)
}

// Warn prints warning level message.
func (p *consoleLogger) Warn(msg string, fields ...string) {
	output(msg, withFields(fields...), color.FgYellow)
}

// Error prints error level message.
func (p *consoleLogger) Error(msg string, err error, fields ...string) {
	output(msg, withFields(withError(err, fields)...), color.FgRed)
}

// Fatal prints fatal level message and exits.
func (p *consoleLogger) Fatal(msg string, err error, fields ...string) {
	output(msg, withFields(withError(err, fields)...), color.FgRed)
	os.Exit(1)
}

// Flush isn't needed for a console logger.
func (p *consoleLogger) Flush() {
}

// Appends error field.
func withError(err error, fields []string) []string {
	if nil == err {
		return fields
	}

	return append(fields, common.LogErrorToken, err.Error())
}

// Helper method to add generic fields to the output.
func withFields(fields ...string) map[string]string {
	fLen := len(fields)
	result := make(map[string]string, int(fLen/2))
	for ii := 0; ii < fLen; ii += 2 {
		if ii+1 >= fLen {
			break
		}

		result[fields[ii]] = fields[ii+1]
	}

	return result
}

// Prepares final string.
func format(msg string, fields map[string]string) string {
	newM := fmt.Sprintf("%s   %s", time.Now().Local().Format(time.StampMilli), msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		newM = fmt.Sprintf("%s\n          %s: %s", newM, k, fields[k])
	}

	return newM
}

// Outputs final string.
func output(msg string, fields map[string]string, c color.Attribute) {
	msgC := color.New(c)
	//noinspection GoUnhandledErrorResult
	msgC.Println(format(msg, fields)) // nolint: gosec
}
