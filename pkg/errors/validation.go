package errors

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/matzehuels/pedsignal/pkg/pedigree"
)

// ParseIndividualID parses a decimal individual ID as typed by a user on
// the command line or in a URL path. Zero is rejected because it is the
// sentinel for an unknown parent, never a real individual.
func ParseIndividualID(raw string) (pedigree.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, New(ErrCodeInvalidInput, "individual ID cannot be empty")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, New(ErrCodeInvalidInput, "invalid individual ID: %q", raw)
	}
	if id <= pedigree.Sentinel {
		return 0, New(ErrCodeInvalidInput, "individual ID must be positive: %d", id)
	}
	return id, nil
}

// ParseIndividualIDs parses each entry of raw, also splitting on commas so
// that "3,4 5" yields [3 4 5].
func ParseIndividualIDs(raw []string) ([]pedigree.ID, error) {
	var ids []pedigree.ID
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := ParseIndividualID(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ValidateIndividualIDs checks that ids is non-empty and holds only
// positive IDs.
func ValidateIndividualIDs(ids []pedigree.ID) error {
	if len(ids) == 0 {
		return New(ErrCodeInvalidInput, "at least one individual is required")
	}
	for _, id := range ids {
		if id <= pedigree.Sentinel {
			return New(ErrCodeInvalidInput, "individual ID must be positive: %d", id)
		}
	}
	return nil
}

// ValidatePath validates a pedigree or output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateURI checks that rawURI is non-empty and uses one of the given
// schemes, e.g. "redis" or "mongodb".
func ValidateURI(rawURI string, schemes ...string) error {
	if rawURI == "" {
		return New(ErrCodeInvalidConfig, "URI cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURI, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "URI must use one of the schemes %v", schemes)
}
