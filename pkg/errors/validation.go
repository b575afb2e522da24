package errors

import (
	"math"
	"unicode"
)

// MaxGraphNameLen bounds graph names accepted from untrusted input.
const MaxGraphNameLen = 256

// ValidateFraction checks that v is a finite number in [0, 1].
func ValidateFraction(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return New(ErrCodeInvalidInput, "%s must be in [0, 1], got %v", name, v)
	}
	return nil
}

// ValidateCost checks that v is finite and not negative.
func ValidateCost(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidInput, "%s must be a finite non-negative number, got %v", name, v)
	}
	return nil
}

// ValidateGraphName rejects names that would corrupt node-link output or log
// lines: control characters and overly long names. Empty names are allowed.
func ValidateGraphName(name string) error {
	if len(name) > MaxGraphNameLen {
		return New(ErrCodeInvalidInput, "graph name too long (max %d characters)", MaxGraphNameLen)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "graph name contains invalid control characters")
		}
	}
	return nil
}
