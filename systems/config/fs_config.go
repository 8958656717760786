package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/go-home-io/wled-effects/plugins/common"
)

// Default file system config loader.
type fsConfig struct {
	location string
	logger   common.ILoggerProvider
}

// Load reads files from local file system.
// Location might be a single file or a folder which is walked recursively.
func (c *fsConfig) Load() chan []byte {
	fileList, err := c.files()
	if err != nil {
		c.logger.Error("Failed to walk through files", err, common.LogFileToken, c.location,
			common.LogSystemToken, logSystem)
		return nil
	}

	filesChan := make(chan []byte)

	go func() {
		for _, v := range fileList {
			fileData, err := os.ReadFile(v)
			if err != nil {
				c.logger.Error("Failed to load config file", err, common.LogFileToken, v,
					common.LogSystemToken, logSystem)
				continue
			}

			c.logger.Info("Processing config file", common.LogFileToken, v, common.LogSystemToken, logSystem)
			filesChan <- fileData
		}

		close(filesChan)
	}()

	return filesChan
}

// Returns sorted list of config files.
func (c *fsConfig) files() ([]string, error) {
	info, err := os.Stat(c.location)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{c.location}, nil
	}

	fileList := make([]string, 0)
	err = filepath.Walk(c.location, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			c.logger.Warn("Failed get folder files", common.LogFileToken, path,
				common.LogSystemToken, logSystem)
			return err
		}

		if f.IsDir() || !IsValidConfigFileName(path) {
			return nil
		}

		fileList = append(fileList, path)
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(fileList)
	return fileList, nil
}
