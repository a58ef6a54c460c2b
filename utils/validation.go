package utils

import (
	"strconv"
	"strings"
)

// IsValidPropertyID checks the external listing id shape: "PROP" followed
// by a number of at least 1000.
func IsValidPropertyID(id string) bool {
	if !strings.HasPrefix(id, "PROP") {
		return false
	}
	numStr := strings.TrimPrefix(id, "PROP")
	num, err := strconv.Atoi(numStr)
	if err != nil || num < 1000 {
		return false
	}
	return true
}
