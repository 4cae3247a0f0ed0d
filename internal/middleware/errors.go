package middleware

import (
	"errors"
	"fmt"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/caldav"
)

// HandleRemoteError translates Nextcloud CalDAV errors into agent-actionable
// messages. These messages tell the AI what to do next, not the end user.
func HandleRemoteError(err error) error {
	if err == nil {
		return nil
	}

	var remote *caldav.RemoteError
	if !errors.As(err, &remote) {
		return err
	}

	switch remote.Code {
	case 400:
		return fmt.Errorf(
			"bad request: the server rejected the calendar data. Check dates and field values. Detail: %s",
			detail(remote))
	case 401:
		return fmt.Errorf(
			"authentication failed: NEXTCLOUD_USERNAME or NEXTCLOUD_PASSWORD is wrong or the app password was revoked. " +
				"Ask the user to check the server configuration")
	case 403:
		return fmt.Errorf(
			"permission denied: the account cannot access this collection. It may be shared read-only. Detail: %s",
			detail(remote))
	case 404:
		return fmt.Errorf(
			"not found: verify the uid with a list tool and that the task list or calendar name exists (use list_task_lists or list_calendars)")
	case 409:
		return fmt.Errorf(
			"conflict: the collection does not exist or the resource is locked. Detail: %s",
			detail(remote))
	case 412:
		return fmt.Errorf(
			"the record was modified by another client since it was read. Fetch it again and retry the update")
	case 415:
		return fmt.Errorf(
			"the server refused the calendar data format. Detail: %s",
			detail(remote))
	case 429:
		return fmt.Errorf(
			"rate limited by the Nextcloud server: wait 30-60 seconds before retrying this tool call")
	case 500, 502, 503, 504:
		return fmt.Errorf(
			"Nextcloud server error (%d): this is usually transient, retry after a few seconds. Detail: %s",
			remote.Code, detail(remote))
	default:
		return fmt.Errorf("Nextcloud request failed: %w", err)
	}
}

func detail(e *caldav.RemoteError) string {
	if e.Message != "" {
		return e.Message
	}
	return e.Status
}
