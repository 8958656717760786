package secret

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Secrets file name inside of the configs folder.
const secretsFileName = "_secrets.yaml"

// Default file system secrets store.
// Secrets are kept in a flat yaml map next to the config files.
type fsSecret struct {
	sync.Mutex
	fileName string
	logger   common.ILoggerProvider
	secrets  map[string]string
}

// Init loads existing secrets file.
// Missing file is not an error: it's created on the first Set.
func (s *fsSecret) Init(options map[string]string, logger common.ILoggerProvider) error {
	s.logger = logger
	s.secrets = make(map[string]string)

	loc, ok := options["location"]
	if !ok || "" == loc {
		loc = utils.GetDefaultConfigsDir()
	}

	s.fileName = filepath.Join(loc, secretsFileName)

	data, err := os.ReadFile(s.fileName)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("Secrets file doesn't exist", common.LogFileToken, s.fileName)
			return nil
		}

		return errors.Wrap(err, "read secrets file")
	}

	if err := yaml.Unmarshal(data, &s.secrets); err != nil {
		s.logger.Error("Failed to parse secrets file", err, common.LogFileToken, s.fileName)
		s.secrets = make(map[string]string)
		return errors.Wrap(err, "parse secrets file")
	}

	return nil
}

// Get returns secret value.
func (s *fsSecret) Get(name string) (string, error) {
	s.Lock()
	defer s.Unlock()

	val, ok := s.secrets[name]
	if !ok {
		return "", &ErrNotFound{Name: name}
	}

	return val, nil
}

// Set saves a new secret or updates existing one and re-writes the file.
func (s *fsSecret) Set(name string, data string) error {
	s.Lock()
	defer s.Unlock()

	old, existed := s.secrets[name]
	s.secrets[name] = data

	out, err := yaml.Marshal(s.secrets)
	if nil == err {
		err = os.WriteFile(s.fileName, out, 0600)
	}

	if err != nil {
		if existed {
			s.secrets[name] = old
		} else {
			delete(s.secrets, name)
		}

		s.logger.Error("Failed to save secrets file", err, common.LogFileToken, s.fileName)
		return errors.Wrap(err, "save secrets file")
	}

	return nil
}

// UpdateLogger sets a new logger.
func (s *fsSecret) UpdateLogger(provider common.ILoggerProvider) {
	s.Lock()
	defer s.Unlock()

	s.logger = provider
}
