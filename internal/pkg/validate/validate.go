package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// collectionRE matches Nextcloud calendar collection URIs such as
// "personal", "contact_birthdays" or "app-generated--deck--board-1".
var collectionRE = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._@-]{0,127}$`)

// CollectionName validates a task list or calendar name before it is
// joined into a DAV path.
func CollectionName(name string) error {
	if !collectionRE.MatchString(name) {
		return fmt.Errorf("invalid collection name %q: expected letters, digits, '.', '_', '@' or '-'", name)
	}
	return nil
}

// maxUIDLength bounds UIDs so the resulting resource name stays within
// common filesystem limits on the server.
const maxUIDLength = 255

// UID validates a component UID that is used as a resource name.
func UID(uid string) error {
	if strings.TrimSpace(uid) == "" {
		return fmt.Errorf("uid is required")
	}
	if len(uid) > maxUIDLength {
		return fmt.Errorf("uid too long (max %d characters)", maxUIDLength)
	}
	if uid == "." || uid == ".." || strings.ContainsAny(uid, `/\`) {
		return fmt.Errorf("invalid uid %q: must not contain path separators", uid)
	}
	if strings.IndexFunc(uid, unicode.IsControl) >= 0 {
		return fmt.Errorf("invalid uid %q: must not contain control characters", uid)
	}
	return nil
}

// Range validates that v lies within [lo, hi].
func Range(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s must be between %d and %d, got %d", field, lo, hi, v)
	}
	return nil
}
