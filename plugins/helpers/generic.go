package helpers

import (
	"strings"
)

// GetNameFromID converts entity ID to readable name.
// Used if name is not overwritten.
func GetNameFromID(entityID string) string {
	parts := strings.Split(entityID, ".")
	return strings.Replace(parts[len(parts)-1], "_", " ", -1)
}

// SliceContainsString slice.contains implementation for strings.
func SliceContainsString(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}

// ClampFloat limits value to the range.
func ClampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}

	if v > max {
		return max
	}

	return v
}

// ClampInt limits value to the range.
func ClampInt(v, min, max int) int {
	if v < min {
		return min
	}

	if v > max {
		return max
	}

	return v
}
