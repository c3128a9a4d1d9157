// Package validation holds the SKU format rule and the request validator
// used at the HTTP boundary.
package validation

import (
	"fmt"
	"regexp"
)

// SKUFormat is the human readable form of the SKU rule.
const SKUFormat = "SKU-XXXXXXXX"

var skuPattern = regexp.MustCompile(`^SKU-[A-Za-z0-9]{8}$`)

// InvalidSKUError reports a candidate that does not match the SKU format.
type InvalidSKUError struct {
	SKU string
}

func (e *InvalidSKUError) Error() string {
	return fmt.Sprintf("Invalid SKU format: %s. Expected format is '%s' (8 alphanumeric characters)", e.SKU, SKUFormat)
}

// IsValidSKU reports whether candidate is "SKU-" followed by exactly eight
// ASCII letters or digits.
func IsValidSKU(candidate string) bool {
	return candidate != "" && skuPattern.MatchString(candidate)
}

// ValidateSKU returns an *InvalidSKUError when candidate is not a valid SKU.
func ValidateSKU(candidate string) error {
	if !IsValidSKU(candidate) {
		return &InvalidSKUError{SKU: candidate}
	}
	return nil
}
