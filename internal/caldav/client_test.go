package caldav

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.Client(), srv.URL+"/remote.php/dav", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

func TestClientReport(t *testing.T) {
	const reply = `<?xml version="1.0"?><d:multistatus xmlns:d="DAV:"/>`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, MethodReport, r.Method)
		assert.Equal(t, "/remote.php/dav/calendars/alice/tasks/", r.URL.Path)
		assert.Equal(t, "1", r.Header.Get("Depth"))
		assert.Equal(t, "application/xml; charset=utf-8", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, BuildTaskQuery(), string(body))

		w.WriteHeader(http.StatusMultiStatus)
		io.WriteString(w, reply)
	})

	got, err := c.Report(context.Background(), CollectionPath("alice", "tasks"), BuildTaskQuery())
	require.NoError(t, err)
	assert.Equal(t, reply, got)
}

func TestClientGetReturnsETag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/remote.php/dav/calendars/alice/tasks/t1.ics", r.URL.Path)
		w.Header().Set("ETag", `"abc"`)
		io.WriteString(w, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	})

	data, etag, err := c.Get(context.Background(), ObjectPath("alice", "tasks", "t1"))
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", data)
	assert.Equal(t, `"abc"`, etag)
}

func TestClientResolvesAbsoluteHref(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/remote.php/dav/calendars/alice/tasks/Some-Other-Name.ics", r.URL.Path)
		io.WriteString(w, "x")
	})

	_, _, err := c.Get(context.Background(), "/remote.php/dav/calendars/alice/tasks/Some-Other-Name.ics")
	require.NoError(t, err)
}

func TestClientPutPreconditions(t *testing.T) {
	tests := []struct {
		name            string
		pre             Precondition
		wantIfMatch     string
		wantIfNoneMatch string
	}{
		{"unconditional", Precondition{}, "", ""},
		{"create only", Precondition{IfNoneMatch: "*"}, "", "*"},
		{"update guarded", Precondition{IfMatch: `"v1"`}, `"v1"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, "text/calendar; charset=utf-8", r.Header.Get("Content-Type"))
				assert.Equal(t, tt.wantIfMatch, r.Header.Get("If-Match"))
				assert.Equal(t, tt.wantIfNoneMatch, r.Header.Get("If-None-Match"))
				body, _ := io.ReadAll(r.Body)
				assert.Equal(t, "DATA", string(body))
				w.Header().Set("ETag", `"v2"`)
				w.WriteHeader(http.StatusCreated)
			})

			etag, err := c.Put(context.Background(), "calendars/alice/tasks/x.ics", "DATA", tt.pre)
			require.NoError(t, err)
			assert.Equal(t, `"v2"`, etag)
		})
	}
}

func TestClientDelete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "", r.Header.Get("If-Match"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(context.Background(), "calendars/alice/tasks/x.ics", ""))
}

func TestClientRemoteErrors(t *testing.T) {
	const sabreError = `<?xml version="1.0" encoding="utf-8"?>
<d:error xmlns:d="DAV:" xmlns:s="http://sabredav.org/ns">
  <s:exception>Sabre\DAV\Exception\NotFound</s:exception>
  <s:message>File with name x.ics could not be located</s:message>
</d:error>`

	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		notFound    bool
		precond     bool
	}{
		{"sabre not found", http.StatusNotFound, sabreError, "File with name x.ics could not be located", true, false},
		{"plain unauthorized", http.StatusUnauthorized, "nope", "nope", false, false},
		{"precondition failed", http.StatusPreconditionFailed, "", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, _, err := c.Get(context.Background(), "calendars/alice/tasks/x.ics")
			require.Error(t, err)

			var re *RemoteError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.status, re.Code)
			assert.Equal(t, http.MethodGet, re.Method)
			assert.Equal(t, tt.wantMessage, re.Message)
			assert.Equal(t, tt.notFound, IsNotFound(err))
			assert.Equal(t, tt.precond, IsPreconditionFailed(err))
		})
	}
}

func TestClientReportRequiresMultiStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>login</html>")
	})

	_, err := c.Report(context.Background(), "calendars/alice/tasks/", BuildTaskQuery())
	require.Error(t, err)
	assert.Equal(t, http.StatusOK, StatusCode(err))
}

func TestNewClientRejectsBadEndpoints(t *testing.T) {
	for _, endpoint := range []string{"", "ftp://example.com", "://bad"} {
		_, err := NewClient(nil, endpoint, nil)
		assert.Error(t, err, endpoint)
	}
}
