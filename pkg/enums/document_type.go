package enums

import "fmt"

// DocumentType labels the generated artifacts attached to a deal.
type DocumentType string

const (
	DocumentTypeBillOfSale      DocumentType = "bill_of_sale"
	DocumentTypeBuyersGuide     DocumentType = "buyers_guide"
	DocumentTypeOdometer        DocumentType = "odometer_statement"
	DocumentTypeTitleTransfer   DocumentType = "title_transfer"
	DocumentTypePowerOfAttorney DocumentType = "power_of_attorney"
	DocumentTypeOther           DocumentType = "other"
)

var validDocumentTypes = []DocumentType{
	DocumentTypeBillOfSale,
	DocumentTypeBuyersGuide,
	DocumentTypeOdometer,
	DocumentTypeTitleTransfer,
	DocumentTypePowerOfAttorney,
	DocumentTypeOther,
}

// String implements fmt.Stringer.
func (d DocumentType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DocumentType.
func (d DocumentType) IsValid() bool {
	for _, candidate := range validDocumentTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentType converts raw input into a DocumentType.
func ParseDocumentType(value string) (DocumentType, error) {
	for _, candidate := range validDocumentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document type %q", value)
}
