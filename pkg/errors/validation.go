package errors

import (
	"regexp"
	"unicode"
)

// maxIdentifierLength bounds node IDs, port names and setting keys.
const maxIdentifierLength = 128

// identifierRegex matches identifiers usable in links ("node.port"), DOT
// output and URL path segments.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ValidateIdentifier validates a node ID, port name or setting key.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No dots (reserved as the node/port separator in link references)
//   - Maximum length of 128 characters
//   - Must start with a letter or underscore
//
// The what argument names the identifier in the error message ("node ID",
// "setting key").
func ValidateIdentifier(what, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", what)
	}

	if len(id) > maxIdentifierLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", what, maxIdentifierLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", what)
		}
	}

	if !identifierRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid %s: %q", what, id)
	}

	return nil
}
