package security

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-home-io/wled-effects/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Creates basic auth header.
func authHeader(usr, pwd string) map[string][]string {
	pair := fmt.Sprintf("%s:%s", usr, pwd)
	return map[string][]string{"Authorization": {
		fmt.Sprintf("Basic %s", base64.StdEncoding.EncodeToString([]byte(pair)))}}
}

// Creates htpasswd record.
func fileRecord(t *testing.T, usr, pwd string) string {
	b, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", usr, string(b))
}

// Writes users file.
func usersFile(t *testing.T, records ...string) string {
	name := filepath.Join(t.TempDir(), "_users")
	require.NoError(t, os.WriteFile(name, []byte(strings.Join(records, "\n")), 0600))
	return name
}

// Tests missing users file.
func TestFileAccessError(t *testing.T) {
	logFound := false
	newBasicAuth(mocks.FakeNewLogger(func(m string) {
		logFound = logFound || "Users file is not found, going to use secret store only" == m
	}), nil, filepath.Join(t.TempDir(), "_users"))

	assert.True(t, logFound)
}

// Tests incorrect headers.
func TestIncorrectHeaders(t *testing.T) {
	b := newBasicAuth(mocks.FakeNewLogger(nil), nil, "")

	_, err := b.Authorize(map[string][]string{})
	assert.IsType(t, &ErrNoHeader{}, err)

	_, err = b.Authorize(map[string][]string{"Authorization": {"Bearer token"}})
	assert.IsType(t, &ErrNoHeader{}, err)

	_, err = b.Authorize(map[string][]string{"Authorization": {"Basic Wrong header"}})
	assert.IsType(t, &ErrMalformedHeader{}, err)

	_, err = b.Authorize(map[string][]string{"Authorization": {
		"Basic " + base64.StdEncoding.EncodeToString([]byte("no-password"))}})
	assert.IsType(t, &ErrMalformedHeader{}, err)
}

// Tests users from htpasswd file.
func TestFileUsers(t *testing.T) {
	name := usersFile(t, "# comment", fileRecord(t, "admin", "secret"), "", "broken", fileRecord(t, "guest", "pass"))
	b := newBasicAuth(mocks.FakeNewLogger(nil), nil, name)

	usr, err := b.Authorize(authHeader("admin", "secret"))
	require.NoError(t, err)
	assert.Equal(t, "admin", usr)

	usr, err = b.Authorize(authHeader("guest", "pass"))
	require.NoError(t, err)
	assert.Equal(t, "guest", usr)

	_, err = b.Authorize(authHeader("admin", "pass"))
	assert.IsType(t, &ErrUserNotFound{}, err)

	_, err = b.Authorize(authHeader("broken", ""))
	assert.IsType(t, &ErrUserNotFound{}, err)
}

// Tests fallback to secret store.
func TestSecretUsers(t *testing.T) {
	b := newBasicAuth(mocks.FakeNewLogger(nil), mocks.FakeNewSecretStore(map[string]string{"ha": "token"}, true), "")

	usr, err := b.Authorize(authHeader("ha", "token"))
	require.NoError(t, err)
	assert.Equal(t, "ha", usr)

	_, err = b.Authorize(authHeader("ha", "wrong"))
	assert.Error(t, err)
}
