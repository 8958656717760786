package security

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
	"golang.org/x/crypto/bcrypt"
)

// Basic auth users storage.
type basicAuth struct {
	logger          common.ILoggerProvider
	secret          providers.ISecretProvider
	presetPasswords map[string]string
}

// Loads regular htpasswd file.
// Passwords must be generated with -B option.
func newBasicAuth(logger common.ILoggerProvider, secret providers.ISecretProvider, fileName string) *basicAuth {
	b := &basicAuth{
		logger: logger,
		secret: secret,
	}

	if !b.readFile(fileName) {
		b.logger.Warn("Users file is not found, going to use secret store only",
			common.LogSystemToken, logSystem, common.LogFileToken, fileName)
	}

	return b
}

// Validates basic auth header against loaded file.
// If user is not found, falls back to secret store.
func (b *basicAuth) Authorize(headers map[string][]string) (string, error) {
	values := headers["Authorization"]
	if 1 != len(values) {
		return "", &ErrNoHeader{}
	}

	auth := strings.SplitN(values[0], " ", 2)
	if 2 != len(auth) || "Basic" != auth[0] {
		return "", &ErrNoHeader{}
	}

	payload, err := base64.StdEncoding.DecodeString(auth[1])
	if err != nil {
		b.logger.Warn("Failed to decode basic auth header", common.LogSystemToken, logSystem)
		return "", &ErrMalformedHeader{Reason: "not base64"}
	}

	pair := strings.SplitN(string(payload), ":", 2)
	if 2 != len(pair) {
		b.logger.Warn("Corrupted basic auth header", common.LogSystemToken, logSystem)
		return "", &ErrMalformedHeader{Reason: "no user and password pair"}
	}

	pwd, ok := b.presetPasswords[pair[0]]
	if ok && nil == bcrypt.CompareHashAndPassword([]byte(pwd), []byte(pair[1])) {
		b.logger.Debug("Found user in users file", common.LogSystemToken, logSystem, common.LogUserToken, pair[0])
		return pair[0], nil
	}

	if nil != b.secret {
		pwd, err = b.secret.Get(pair[0])
		if nil == err && pwd == pair[1] {
			b.logger.Debug("Found user in secret store", common.LogSystemToken, logSystem,
				common.LogUserToken, pair[0])
			return pair[0], nil
		}
	}

	b.logger.Warn("User is unauthorized", common.LogSystemToken, logSystem, common.LogUserToken, pair[0])
	return "", &ErrUserNotFound{User: pair[0]}
}

// Reads htpasswd file.
func (b *basicAuth) readFile(name string) bool {
	b.presetPasswords = make(map[string]string)
	if "" == name {
		return false
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return false
	}

	for _, v := range strings.Split(string(data), "\n") {
		v = strings.TrimSpace(v)
		if 0 == len(v) || strings.HasPrefix(v, "#") {
			continue
		}

		parts := strings.SplitN(v, ":", 2)
		if 2 != len(parts) {
			continue
		}

		b.presetPasswords[parts[0]] = parts[1]
	}

	return true
}
