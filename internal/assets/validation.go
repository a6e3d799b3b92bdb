package assets

import (
	"fmt"
	"strings"
)

// maxAssetNameLength bounds asset names to something that fits any filesystem.
const maxAssetNameLength = 64

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Returns ErrInvalidAssetName if the name is empty, too long, or contains
// path separators, dots (which could allow extension manipulation), or
// traversal characters.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > maxAssetNameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidAssetName, maxAssetNameLength)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
