package enums

import "fmt"

// CouponUsageType maps to the coupon_usage_type_enum enum in Postgres.
type CouponUsageType string

const (
	CouponUsageTypeUnlimited  CouponUsageType = "unlimited"
	CouponUsageTypeSingleUse  CouponUsageType = "single_use"
	CouponUsageTypeLimitedUse CouponUsageType = "limited_use"
)

var validCouponUsageTypes = []CouponUsageType{
	CouponUsageTypeUnlimited,
	CouponUsageTypeSingleUse,
	CouponUsageTypeLimitedUse,
}

// IsValid reports whether the value matches the canonical usage type enum.
func (u CouponUsageType) IsValid() bool {
	for _, candidate := range validCouponUsageTypes {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseCouponUsageType converts raw input into CouponUsageType.
func ParseCouponUsageType(value string) (CouponUsageType, error) {
	for _, candidate := range validCouponUsageTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon usage type %q", value)
}
