package enums

import "fmt"

// ChannelType maps to the channel_type_enum enum in Postgres. A channel is a
// sales surface whose orders draw down the shared inventory pool.
type ChannelType string

const (
	ChannelTypeWeb       ChannelType = "web"
	ChannelTypeAmazon    ChannelType = "amazon"
	ChannelTypeEbay      ChannelType = "ebay"
	ChannelTypeWholesale ChannelType = "wholesale"
	ChannelTypePOS       ChannelType = "pos"
)

var validChannelTypes = []ChannelType{
	ChannelTypeWeb,
	ChannelTypeAmazon,
	ChannelTypeEbay,
	ChannelTypeWholesale,
	ChannelTypePOS,
}

// IsValid reports whether the value matches the canonical channel enum.
func (c ChannelType) IsValid() bool {
	for _, candidate := range validChannelTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChannelType converts raw input into ChannelType.
func ParseChannelType(value string) (ChannelType, error) {
	for _, candidate := range validChannelTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid channel type %q", value)
}
