package wled

import (
	"strings"
	"time"
)

const (
	// MaxBufferESP8266 is the conservative default JSON buffer size.
	MaxBufferESP8266 = 10000
	// MaxBufferESP32 is the JSON buffer size of ESP32 based devices.
	MaxBufferESP32 = 24000
)

// BufferSettings defines per-LED payload size heuristic.
// Estimation uses a fixed per-element cost instead of the real serialization.
type BufferSettings struct {
	ESP8266         int           `yaml:"esp8266" validate:"gt=0"`
	ESP32           int           `yaml:"esp32" validate:"gt=0"`
	Overhead        int           `yaml:"overhead" validate:"min=0"`
	BytesPerElement int           `yaml:"bytes_per_element" validate:"gt=0"`
	SafetyMargin    float64       `yaml:"safety_margin" validate:"gt=0"`
	BatchRatio      float64       `yaml:"batch_ratio" validate:"gt=0,lte=1"`
	BatchDelay      time.Duration `yaml:"batch_delay" validate:"min=0"`
}

// NewBufferSettings returns default heuristic.
func NewBufferSettings() *BufferSettings {
	return &BufferSettings{
		ESP8266:         MaxBufferESP8266,
		ESP32:           MaxBufferESP32,
		Overhead:        20,
		BytesPerElement: 10,
		SafetyMargin:    1.2,
		BatchRatio:      0.8,
		BatchDelay:      50 * time.Millisecond,
	}
}

// Estimate returns approximate payload size of the "i" array with given number of elements.
func (b *BufferSettings) Estimate(elements int) int {
	return int(float64(b.Overhead+elements*b.BytesPerElement) * b.SafetyMargin)
}

// BatchSize returns number of LEDs which fit into a single request.
func (b *BufferSettings) BatchSize(maxBuffer int) int {
	size := int((float64(maxBuffer)*b.BatchRatio - float64(b.Overhead)) / float64(b.BytesPerElement))
	if size < 1 {
		return 1
	}

	return size
}

// ForArch returns buffer size for device architecture.
func (b *BufferSettings) ForArch(arch string) int {
	if strings.Contains(strings.ToLower(arch), "esp32") {
		return b.ESP32
	}

	return b.ESP8266
}
