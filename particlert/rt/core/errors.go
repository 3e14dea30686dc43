package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when a component is constructed with
	// knobs it cannot honour (non-positive counts, radii, strides...).
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrAssetDecode marks an image that could not be loaded or decoded.
	ErrAssetDecode = errors.New("asset decode failure")
)

// Invalidf wraps ErrInvalidConfiguration with a formatted reason.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
