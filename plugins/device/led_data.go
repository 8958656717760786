package device

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-home-io/wled-effects/plugins/common"
)

// LEDData defines per-LED "i" array. Elements are ints or "RRGGBB" strings.
// Three encodings are supported:
//  [index, "RRGGBB", ...] sets single LEDs,
//  [start, stop, "RRGGBB"] sets range with exclusive stop,
//  [start, "RRGGBB", "RRGGBB", ...] sets contiguous run beginning at start.
type LEDData []interface{}

// LEDAssignment defines a single LED color produced by the data.
type LEDAssignment struct {
	Index int
	Color common.Color
}

// NewLEDRun creates contiguous run. Zero start is omitted.
func NewLEDRun(start int, colors []common.Color) LEDData {
	d := make(LEDData, 0, len(colors)+1)
	if start > 0 {
		d = append(d, start)
	}

	for _, v := range colors {
		d = append(d, v.Hex())
	}

	return d
}

// NewLEDBatch creates contiguous run with explicit start.
func NewLEDBatch(start int, hex []string) LEDData {
	d := make(LEDData, 0, len(hex)+1)
	d = append(d, start)
	for _, v := range hex {
		d = append(d, v)
	}

	return d
}

// NewLEDIndex creates single LED data.
func NewLEDIndex(index int, color common.Color) LEDData {
	return LEDData{index, color.Hex()}
}

// NewLEDRange creates range data, stop is exclusive.
func NewLEDRange(start int, stop int, color common.Color) LEDData {
	return LEDData{start, stop, color.Hex()}
}

// Elements returns number of array elements.
func (d LEDData) Elements() int {
	return len(d)
}

// UnmarshalJSON normalizes numbers into ints.
func (d *LEDData) UnmarshalJSON(data []byte) error {
	raw := make([]interface{}, 0)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(LEDData, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case float64:
			out = append(out, int(val))
		case string:
			out = append(out, val)
		default:
			return &common.ErrConfiguration{Message: fmt.Sprintf("wrong LED data element: %v", v)}
		}
	}

	*d = out
	return nil
}

// Expand resolves data into ordered LED assignments.
func (d LEDData) Expand() ([]*LEDAssignment, error) {
	result := make([]*LEDAssignment, 0)
	pending := make([]int, 0, 2)
	next := 0

	for _, v := range d {
		switch val := v.(type) {
		case int:
			if len(pending) == 2 {
				return nil, &common.ErrConfiguration{Message: "more than two indexes before color"}
			}
			pending = append(pending, val)
		case string:
			c, err := parseHex(val)
			if err != nil {
				return nil, err
			}

			switch len(pending) {
			case 0:
				result = append(result, &LEDAssignment{Index: next, Color: c})
				next++
			case 1:
				result = append(result, &LEDAssignment{Index: pending[0], Color: c})
				next = pending[0] + 1
			case 2:
				for ii := pending[0]; ii < pending[1]; ii++ {
					result = append(result, &LEDAssignment{Index: ii, Color: c})
				}
				next = pending[1]
			}

			pending = pending[:0]
		default:
			return nil, &common.ErrConfiguration{Message: fmt.Sprintf("wrong LED data element: %v", v)}
		}
	}

	if len(pending) > 0 {
		return nil, &common.ErrConfiguration{Message: "LED data ends with an index"}
	}

	return result, nil
}

// Parses "RRGGBB" string.
func parseHex(raw string) (common.Color, error) {
	if len(raw) != 6 {
		return common.Black, &common.ErrConfiguration{Message: fmt.Sprintf("wrong hex color: %s", raw)}
	}

	n, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return common.Black, &common.ErrConfiguration{Message: fmt.Sprintf("wrong hex color: %s", raw)}
	}

	return common.NewColor(int(n>>16&0xFF), int(n>>8&0xFF), int(n&0xFF)), nil
}
