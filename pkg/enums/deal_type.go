package enums

import "fmt"

// DealType distinguishes how a vehicle transaction is structured.
type DealType string

const (
	DealTypeRetail    DealType = "retail"
	DealTypeWholesale DealType = "wholesale"
	DealTypeLease     DealType = "lease"
)

var validDealTypes = []DealType{
	DealTypeRetail,
	DealTypeWholesale,
	DealTypeLease,
}

// String implements fmt.Stringer.
func (d DealType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DealType.
func (d DealType) IsValid() bool {
	for _, candidate := range validDealTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDealType converts raw input into a DealType.
func ParseDealType(value string) (DealType, error) {
	for _, candidate := range validDealTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deal type %q", value)
}
