package utils

import "strings"

// OneOfFold returns true if s is one of values, ignoring case
func OneOfFold(s string, values []string) bool {
	for _, v := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}

	return false
}
