package enums

import "fmt"

// LifecycleState maps to the lifecycle_state_enum enum in Postgres. Entities
// are never hard-deleted from customer-facing queries; they move to inactive
// (hidden but restorable) or archived (terminal).
type LifecycleState string

const (
	LifecycleStateActive   LifecycleState = "active"
	LifecycleStateInactive LifecycleState = "inactive"
	LifecycleStateArchived LifecycleState = "archived"
)

var validLifecycleStates = []LifecycleState{
	LifecycleStateActive,
	LifecycleStateInactive,
	LifecycleStateArchived,
}

// IsValid reports whether the value matches the canonical lifecycle enum.
func (s LifecycleState) IsValid() bool {
	for _, candidate := range validLifecycleStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the entity should be visible to sale paths.
func (s LifecycleState) IsActive() bool {
	return s == LifecycleStateActive
}

// ParseLifecycleState converts raw input into LifecycleState.
func ParseLifecycleState(value string) (LifecycleState, error) {
	for _, candidate := range validLifecycleStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lifecycle state %q", value)
}
