package enums

import "fmt"

// AdjustMode selects how a manual stock adjustment is interpreted: set replaces
// a counter outright, change applies a signed delta.
type AdjustMode string

const (
	AdjustModeSet    AdjustMode = "set"
	AdjustModeChange AdjustMode = "change"
)

var validAdjustModes = []AdjustMode{
	AdjustModeSet,
	AdjustModeChange,
}

// IsValid reports whether the value matches the canonical adjust mode enum.
func (m AdjustMode) IsValid() bool {
	for _, candidate := range validAdjustModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseAdjustMode converts raw input into AdjustMode.
func ParseAdjustMode(value string) (AdjustMode, error) {
	for _, candidate := range validAdjustModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjust mode %q", value)
}
