package enums

import "fmt"

// MovementReason maps to the movement_reason_enum enum in Postgres.
type MovementReason string

const (
	MovementReasonOrderCreated     MovementReason = "order_created"
	MovementReasonOrderCanceled    MovementReason = "order_canceled"
	MovementReasonOrderFulfilled   MovementReason = "order_fulfilled"
	MovementReasonManualAdjustment MovementReason = "manual_adjustment"
	MovementReasonRecount          MovementReason = "recount"
	MovementReasonDamage           MovementReason = "damage"
	MovementReasonReceived         MovementReason = "received"
	MovementReasonReturned         MovementReason = "returned"
)

var validMovementReasons = []MovementReason{
	MovementReasonOrderCreated,
	MovementReasonOrderCanceled,
	MovementReasonOrderFulfilled,
	MovementReasonManualAdjustment,
	MovementReasonRecount,
	MovementReasonDamage,
	MovementReasonReceived,
	MovementReasonReturned,
}

// IsValid reports whether the value matches the canonical movement reason enum.
func (r MovementReason) IsValid() bool {
	for _, candidate := range validMovementReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseMovementReason converts raw input into MovementReason.
func ParseMovementReason(value string) (MovementReason, error) {
	for _, candidate := range validMovementReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement reason %q", value)
}
