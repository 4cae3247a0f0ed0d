package caldav

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/beevik/etree"
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 512

// RemoteError is a non-success HTTP status returned by the server.
type RemoteError struct {
	Method string
	Path   string
	Code   int
	Status string
	// Message is the exception text Nextcloud puts in its XML error body,
	// or the start of the body when it is not XML.
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Status, e.Message)
}

// StatusCode returns the HTTP status of a *RemoteError in err's chain, or 0.
func StatusCode(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Code
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsPreconditionFailed reports whether a conditional request lost its race.
func IsPreconditionFailed(err error) bool {
	return StatusCode(err) == http.StatusPreconditionFailed
}

func newRemoteError(method, path string, resp *http.Response, body []byte) *RemoteError {
	return &RemoteError{
		Method:  method,
		Path:    path,
		Code:    resp.StatusCode,
		Status:  resp.Status,
		Message: errorMessage(body),
	}
}

// errorMessage extracts <s:message> from a Sabre error document.
func errorMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}
	if strings.HasPrefix(text, "<") {
		doc := etree.NewDocument()
		if err := doc.ReadFromString(text); err == nil && doc.Root() != nil {
			for _, el := range doc.Root().ChildElements() {
				if strings.EqualFold(el.Tag, "message") {
					return strings.TrimSpace(el.Text())
				}
			}
		}
	}
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return text
}
