//+build !release

package mocks

import (
	"sync"

	"github.com/go-home-io/wled-effects/plugins/common"
)

// FakeValidator accepts or rejects every settings object and counts calls.
type FakeValidator struct {
	sync.Mutex
	accept bool
	calls  int
}

// SetLogger is a no-op.
func (f *FakeValidator) SetLogger(common.ILoggerProvider) {
}

// Validate returns configured result.
func (f *FakeValidator) Validate(interface{}) bool {
	f.Lock()
	defer f.Unlock()

	f.calls++
	return f.accept
}

// Calls returns number of validated objects.
func (f *FakeValidator) Calls() int {
	f.Lock()
	defer f.Unlock()
	return f.calls
}

// FakeNewValidator creates a new fake validation provider.
func FakeNewValidator(accept bool) *FakeValidator {
	return &FakeValidator{accept: accept}
}
