//+build !release

package mocks

import (
	"sync"
)

// Fake logger.
type fakeLogger struct {
	sync.Mutex
	callback func(string)
}

// Prints debug level message.
func (p *fakeLogger) Debug(msg string, fields ...string) {
	p.invoke(msg)
}

// Prints info level message.
func (p *fakeLogger) Info(msg string, fields ...string) {
	p.invoke(msg)
}

// Prints warning level message.
func (p *fakeLogger) Warn(msg string, fields ...string) {
	p.invoke(msg)
}

// Prints error level message.
func (p *fakeLogger) Error(msg string, err error, fields ...string) {
	p.invoke(msg)
}

// Prints fatal level message.
func (p *fakeLogger) Fatal(msg string, err error, fields ...string) {
	p.invoke(msg)
}

// Flush does nothing.
func (p *fakeLogger) Flush() {
}

// Serializes callback invocations since loggers are used from multiple goroutines.
func (p *fakeLogger) invoke(msg string) {
	if p.callback == nil {
		return
	}

	p.Lock()
	defer p.Unlock()
	p.callback(msg)
}

// FakeNewLogger creates a fake logger provider.
func FakeNewLogger(callback func(string)) *fakeLogger {
	return &fakeLogger{
		callback: callback,
	}
}
