// Package common contains shared data available for all systems and effects.
package common

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Color defines RGB color parameter type.
// Config files may define it as "R,G,B" string, [R, G, B] list or {r, g, b} map.
type Color struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// Black is the "LED off" color.
var Black = Color{}

// White is the full-on color.
var White = Color{R: 255, G: 255, B: 255}

// NewColor clamps channels into 0-255 range and constructs a new color.
func NewColor(r, g, b int) Color {
	return Color{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

// ParseColor parses "R,G,B" string.
func ParseColor(raw string) (Color, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return Black, &ErrConfiguration{Message: fmt.Sprintf("wrong color format: %s", raw)}
	}

	ch := make([]int, 3)
	for ii, v := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 || n > 255 {
			return Black, &ErrConfiguration{Message: fmt.Sprintf("wrong color channel: %s", v)}
		}

		ch[ii] = n
	}

	return NewColor(ch[0], ch[1], ch[2]), nil
}

// Hex returns RRGGBB representation used by per-LED API.
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// String returns "R,G,B" representation.
func (c Color) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// Slice returns [R, G, B] representation used by segment API.
func (c Color) Slice() []int {
	return []int{int(c.R), int(c.G), int(c.B)}
}

// IsBlack checks whether all channels are off.
func (c Color) IsBlack() bool {
	return 0 == c.R && 0 == c.G && 0 == c.B
}

// UnmarshalYAML supports string, list and map color definitions.
func (c *Color) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err == nil {
		parsed, err := ParseColor(str)
		if err != nil {
			return err
		}

		*c = parsed
		return nil
	}

	var list []int
	if err := unmarshal(&list); err == nil {
		return c.fromList(list)
	}

	m := struct {
		R int `yaml:"r"`
		G int `yaml:"g"`
		B int `yaml:"b"`
	}{}
	if err := unmarshal(&m); err != nil {
		return &ErrConfiguration{Message: "unknown color format"}
	}

	*c = NewColor(m.R, m.G, m.B)
	return nil
}

// MarshalJSON outputs color as [R, G, B].
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Slice())
}

// UnmarshalJSON supports string and list color definitions.
func (c *Color) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		parsed, err := ParseColor(str)
		if err != nil {
			return err
		}

		*c = parsed
		return nil
	}

	var list []int
	if err := json.Unmarshal(data, &list); err != nil {
		return &ErrConfiguration{Message: "unknown color format"}
	}

	return c.fromList(list)
}

// Fills color from [R, G, B] list.
func (c *Color) fromList(list []int) error {
	if len(list) != 3 {
		return &ErrConfiguration{Message: "color must have 3 channels"}
	}

	*c = NewColor(list[0], list[1], list[2])
	return nil
}

// Clamps channel value.
func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}

	if v > 255 {
		return 255
	}

	return uint8(v)
}
