package caldav

import (
	"net/url"
	"strings"
)

// CollectionPath is the path of a user's calendar collection relative to
// the DAV root, with a trailing slash.
func CollectionPath(user, collection string) string {
	return "calendars/" + url.PathEscape(user) + "/" + url.PathEscape(collection) + "/"
}

// ObjectPath is where the object with uid is stored when it was written
// by this server, or by any client that names files after the UID.
func ObjectPath(user, collection, uid string) string {
	return CollectionPath(user, collection) + url.PathEscape(uid) + ".ics"
}

// EndpointFor joins a server base URL and its DAV path.
func EndpointFor(baseURL, davPath string) string {
	base := strings.TrimRight(baseURL, "/") + "/"
	if p := strings.Trim(davPath, "/"); p != "" {
		return base + p + "/"
	}
	return base
}
