//+build !release

package mocks

import (
	"errors"
	"sync"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
)

// Fake secrets store.
type fakeSecret struct {
	sync.Mutex
	data map[string]string
	isRO bool
}

// Get returns stored secret.
func (f *fakeSecret) Get(name string) (string, error) {
	f.Lock()
	defer f.Unlock()

	k, ok := f.data[name]
	if !ok {
		return "", errors.New("not found")
	}

	return k, nil
}

// Set stores secret unless store is read-only.
func (f *fakeSecret) Set(name string, value string) error {
	if f.isRO {
		return errors.New("read-only store")
	}

	f.Lock()
	defer f.Unlock()
	f.data[name] = value
	return nil
}

// UpdateLogger does nothing.
func (f *fakeSecret) UpdateLogger(common.ILoggerProvider) {
}

// FakeNewSecretStore creates a fake secrets store.
func FakeNewSecretStore(data map[string]string, readOnly bool) providers.ISecretProvider {
	if nil == data {
		data = make(map[string]string)
	}

	return &fakeSecret{
		data: data,
		isRO: readOnly,
	}
}
