// Package secret contains secrets store used by config templates.
package secret

import (
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
)

const (
	// Config logs system value.
	logSystem = "secret"

	// Default file system provider.
	fsProvider = "fs"
)

// Secrets store backend.
type store interface {
	Get(name string) (string, error)
	Set(name string, data string) error
	UpdateLogger(provider common.ILoggerProvider)
}

// Secrets store wrapper implementation.
type provider struct {
	store  store
	logger common.ILoggerProvider
}

// ConstructSecret has data required for a new secrets provider.
type ConstructSecret struct {
	Options map[string]string
	Logger  common.ILoggerProvider
}

// NewSecretProvider constructs a new secrets store provider.
// File system store is the only backend, unknown providers fall back to it.
func NewSecretProvider(ctor *ConstructSecret) providers.ISecretProvider {
	requested, ok := ctor.Options[common.LogProviderToken]
	if ok && fsProvider != requested {
		ctor.Logger.Warn("Using default File System secret",
			common.LogSystemToken, logSystem, common.LogErrorToken,
			(&ErrUnknownProvider{Provider: requested}).Error())
	}

	s := &fsSecret{}
	if err := s.Init(ctor.Options, ctor.Logger); err != nil {
		ctor.Logger.Error("Failed to load secrets", err, common.LogSystemToken, logSystem)
	}

	return &provider{
		store:  s,
		logger: ctor.Logger,
	}
}

// Get returns secret value or an error if it wasn't found.
func (p *provider) Get(name string) (string, error) {
	p.logger.Debug("Requesting secret", "secret", name, common.LogSystemToken, logSystem)
	value, err := p.store.Get(name)
	if err != nil {
		p.logger.Error("Can't find requested secret", err, "secret", name, common.LogSystemToken, logSystem)
		return "", err
	}

	return value, nil
}

// Set saves a new secret or updates existing one.
func (p *provider) Set(name string, data string) error {
	p.logger.Debug("Setting a new secret", "secret", name, common.LogSystemToken, logSystem)
	return p.store.Set(name, data)
}

// UpdateLogger updates a secret's provider logger.
// Secrets are loaded before the configured logger, so it's replaced afterwards.
func (p *provider) UpdateLogger(logger common.ILoggerProvider) {
	p.logger = logger
	p.store.UpdateLogger(logger)
}
