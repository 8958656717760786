package utils

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Tests that we're returning current time.
func TestTimeNow(t *testing.T) {
	assert.InDelta(t, time.Now().UTC().Unix(), TimeNow(), 1)
}

// Tests names normalization.
func TestNormalizeName(t *testing.T) {
	data := []struct {
		in  string
		out string
	}{
		{in: "Kitchen Strip", out: "kitchen_strip"},
		{in: " sensor.cpu-load ", out: "sensor_cpu_load"},
		{in: "a/b\\c:d;e$f%g", out: "a_b_c_d_e_f_g"},
	}

	for _, v := range data {
		assert.Equal(t, v.out, NormalizeName(v.in), v.in)
	}
}

// Tests default config location.
func TestDefaultConfigPath(t *testing.T) {
	cwd, _ := os.Getwd()
	ConfigPath = ""
	assert.Equal(t, fmt.Sprintf("%s/configs/effects.yaml", cwd), GetDefaultConfigPath())

	ConfigPath = "/tmp/test.yaml"
	defer func() { ConfigPath = "" }()
	assert.Equal(t, "/tmp/test.yaml", GetDefaultConfigPath())
}
