package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-home-io/wled-effects/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reads all chunks.
func readAll(c chan []byte) []string {
	res := make([]string, 0)
	for d := range c {
		res = append(res, string(d))
	}

	return res
}

// Tests correct folder loading.
func TestFSConfig(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"data.yaml":         "test",
		"_secrets.yaml":     "test1",
		"data.txt":          "test2",
		"nested/effect.yml": "test3",
	}

	for k, v := range files {
		name := filepath.Join(dir, k)
		require.NoError(t, os.MkdirAll(filepath.Dir(name), 0700))
		require.NoError(t, os.WriteFile(name, []byte(v), 0600))
	}

	c := NewConfigProvider(&ConstructConfig{Location: dir, Logger: mocks.FakeNewLogger(nil)})
	assert.Equal(t, []string{"test", "test3"}, readAll(c.Load()))
}

// Tests single file loading.
func TestFSConfigSingleFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "effects.conf")
	require.NoError(t, os.WriteFile(name, []byte("test"), 0600))

	c := NewConfigProvider(&ConstructConfig{Location: name, Logger: mocks.FakeNewLogger(nil)})
	assert.Equal(t, []string{"test"}, readAll(c.Load()))
}

// Tests missing location.
func TestFSConfigMissing(t *testing.T) {
	c := NewConfigProvider(&ConstructConfig{
		Location: filepath.Join(t.TempDir(), "missing"),
		Logger:   mocks.FakeNewLogger(nil),
	})

	assert.Nil(t, c.Load())
}

// Tests config file names.
func TestCorrectNames(t *testing.T) {
	names := []string{"1-2-3.yaml", "тест7.yaml", "-data.yml", "test.data.yaml", "dir/EFFECTS.YAML"}

	for _, v := range names {
		assert.True(t, IsValidConfigFileName(v), v)
	}
}

// Tests wrong config file names.
func TestInCorrectNames(t *testing.T) {
	names := []string{"__", ".", "123.data", "test.yaml.data", "_secrets.yaml"}

	for _, v := range names {
		assert.False(t, IsValidConfigFileName(v), v)
	}
}
