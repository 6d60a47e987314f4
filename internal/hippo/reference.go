package hippo

import (
	"fmt"
	"strings"

	"github.com/hippostore/hippo/internal/common"
)

// FormatReference builds the opaque reference handed out for a stored
// object: "<scheme>:<id>".
func FormatReference(scheme, id string) string {
	return scheme + ":" + id
}

// ParseReference extracts the record id from an opaque reference.
// The "//" of URL-style references ("hippo://<id>") is tolerated; the
// id itself is opaque and passed through untouched.
func ParseReference(scheme, reference string) (string, error) {
	rest, ok := strings.CutPrefix(reference, scheme+":")
	if !ok {
		return "", fmt.Errorf("%w: %q", common.ErrMalformedReference, reference)
	}
	rest = strings.TrimPrefix(rest, "//")
	if rest == "" {
		return "", fmt.Errorf("%w: empty id in %q", common.ErrMalformedReference, reference)
	}
	return rest, nil
}
