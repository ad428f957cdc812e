package groupstanding

import (
	"strings"
	"time"
)

// Standing is the official final order of one group, set by an administrator.
type Standing struct {
	GroupLabel string
	Teams      []string
	UpdatedAt  time.Time
}

// NormalizeLabel canonicalises a group label so "a", " A " and "A" are one group.
func NormalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}
