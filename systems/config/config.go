// Package config contains yaml config files loader.
package config

import (
	"path/filepath"
	"strings"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/utils"
)

const (
	// Config logs system value.
	logSystem = "config"
)

// IConfigProvider provides capabilities for loading system configuration.
type IConfigProvider interface {
	Load() chan []byte
}

// ConstructConfig contains data required for a new config provider.
type ConstructConfig struct {
	// File or folder with yaml files.
	Location string
	Logger   common.ILoggerProvider
}

// NewConfigProvider constructs a new file system config provider.
func NewConfigProvider(ctor *ConstructConfig) IConfigProvider {
	loc := ctor.Location
	if "" == loc {
		loc = utils.GetDefaultConfigPath()
		ctor.Logger.Info("Using default location", common.LogFileToken, loc,
			common.LogSystemToken, logSystem)
	}

	return &fsConfig{
		location: loc,
		logger:   ctor.Logger,
	}
}

// IsValidConfigFileName checks whether file should be loaded as config.
// Files starting with underscore are reserved for secrets and similar data.
func IsValidConfigFileName(name string) bool {
	name = filepath.Base(name)

	if "" == name || name[0] == '_' {
		return false
	}

	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
