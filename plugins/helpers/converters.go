package helpers

import (
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v2"
)

// DecodeSettings converts loosely typed config data into a settings structure.
// Data un-marshaled from yaml arrives as map[interface{}]interface{} and JSON data
// as map[string]interface{}, round-trip through yaml normalizes both.
func DecodeSettings(from interface{}, to interface{}) error {
	if nil == from {
		return nil
	}

	data, err := yaml.Marshal(from)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, to)
}

// ToFloat converts raw state value into number.
func ToFloat(x interface{}) (float64, bool) {
	switch v := x.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}

	return 0, false
}

// IsTruthy checks whether raw state represents asserted value.
func IsTruthy(x interface{}) bool {
	switch v := x.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on", "true", "1", "acknowledged":
			return true
		}
	default:
		if f, ok := ToFloat(v); ok {
			return 1 == f
		}
	}

	return false
}

// StateDeepEqual compares two state values.
// Numbers of different numeric types are compared by value.
func StateDeepEqual(x, y interface{}) bool {
	xf, xok := ToFloat(x)
	yf, yok := ToFloat(y)
	if xok && yok {
		_, xs := x.(string)
		_, ys := y.(string)
		if xs == ys {
			return xf == yf
		}
	}

	return cmp.Equal(x, y)
}
