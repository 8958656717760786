// Package utils contains various helpers.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimeNow returns epoch UTC.
func TimeNow() int64 {
	return time.Now().UTC().Unix()
}

// NormalizeName validates that final entity name is correct.
func NormalizeName(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	replacer := strings.NewReplacer("%", "_",
		"/", "_",
		"\\", "_",
		":", "_",
		";", "_",
		".", "_",
		"$", "_",
		"-", "_",
		" ", "_")
	return replacer.Replace(raw)
}

// GetCurrentWorkingDir returns application working directory.
func GetCurrentWorkingDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		panic("Failed to get current working dir")
	}

	return cwd
}

// GetDefaultConfigPath returns default config file which is cwd/configs/effects.yaml.
func GetDefaultConfigPath() string {
	if ConfigPath != "" {
		return ConfigPath
	}

	return fmt.Sprintf("%s/configs/effects.yaml", GetCurrentWorkingDir())
}

// ConfigPath allows to re-write default config location.
var ConfigPath = ""

// GetDefaultConfigsDir returns folder of the default config file.
func GetDefaultConfigsDir() string {
	return filepath.Dir(GetDefaultConfigPath())
}
