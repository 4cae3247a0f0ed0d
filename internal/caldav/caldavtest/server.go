// Package caldavtest provides an in-memory CalDAV server for tests.
//
// It understands the subset of WebDAV and CalDAV that the rest of the
// module speaks: PROPFIND discovery of principal, calendar home and
// collections, calendar-query REPORTs (UID text-match filters are applied,
// time ranges are not), and GET, PUT and DELETE of single objects with
// If-Match and If-None-Match preconditions.
package caldavtest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/beevik/etree"
)

// DAVPath is the DAV root the fake serves, matching Nextcloud's.
const DAVPath = "/remote.php/dav"

type object struct {
	data string
	etag string
}

// Request is one request the server received.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

// Server is a fake CalDAV server for a single user.
type Server struct {
	*httptest.Server

	user string

	mu          sync.Mutex
	collections map[string][]string
	objects     map[string]object
	failures    map[string][]int
	requests    []Request
	nextETag    int
}

// NewServer starts a server for user and closes it when the test ends.
func NewServer(t testing.TB, user string) *Server {
	t.Helper()
	s := &Server{
		user:        user,
		collections: make(map[string][]string),
		objects:     make(map[string]object),
		failures:    make(map[string][]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)
	return s
}

// Endpoint is the DAV root URL.
func (s *Server) Endpoint() string {
	return s.URL + DAVPath + "/"
}

// AddCollection creates a calendar collection restricted to components.
// No components means the collection accepts everything.
func (s *Server) AddCollection(name string, components ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = components
}

// CollectionPath is the absolute path of a collection.
func (s *Server) CollectionPath(collection string) string {
	return fmt.Sprintf("%s/calendars/%s/%s/", DAVPath, s.user, collection)
}

// PutObject stores data under file name in collection and returns its etag.
func (s *Server) PutObject(collection, name, data string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.CollectionPath(collection) + name
	o := object{data: data, etag: s.newETag()}
	s.objects[p] = o
	return o.etag
}

// Object returns the stored data of the file name in collection.
func (s *Server) Object(collection, name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[s.CollectionPath(collection)+name]
	return o.data, ok
}

// Objects returns the file names stored in collection, sorted.
func (s *Server) Objects(collection string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := s.CollectionPath(collection)
	var names []string
	for p := range s.objects {
		if strings.HasPrefix(p, prefix) {
			names = append(names, strings.TrimPrefix(p, prefix))
		}
	}
	slices.Sort(names)
	return names
}

// FailNext makes the next requests with method fail with the given status
// codes, one per request.
func (s *Server) FailNext(method string, codes ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], codes...)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

func (s *Server) newETag() string {
	s.nextETag++
	return fmt.Sprintf(`"etag-%d"`, s.nextETag)
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   string(body),
	})

	if codes := s.failures[r.Method]; len(codes) > 0 {
		s.failures[r.Method] = codes[1:]
		http.Error(w, http.StatusText(codes[0]), codes[0])
		return
	}

	switch r.Method {
	case "PROPFIND":
		s.propfind(w, r)
	case "REPORT":
		s.report(w, r, string(body))
	case http.MethodGet:
		o, ok := s.objects[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("ETag", o.etag)
		io.WriteString(w, o.data)
	case http.MethodPut:
		s.put(w, r, string(body))
	case http.MethodDelete:
		o, ok := s.objects[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if m := r.Header.Get("If-Match"); m != "" && m != o.etag {
			w.WriteHeader(http.StatusPreconditionFailed)
			return
		}
		delete(s.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) put(w http.ResponseWriter, r *http.Request, body string) {
	if _, ok := s.collectionOf(r.URL.Path); !ok {
		http.Error(w, "collection not found", http.StatusNotFound)
		return
	}
	existing, exists := s.objects[r.URL.Path]
	if r.Header.Get("If-None-Match") == "*" && exists {
		w.WriteHeader(http.StatusPreconditionFailed)
		return
	}
	if m := r.Header.Get("If-Match"); m != "" && (!exists || m != existing.etag) {
		w.WriteHeader(http.StatusPreconditionFailed)
		return
	}
	o := object{data: body, etag: s.newETag()}
	s.objects[r.URL.Path] = o
	w.Header().Set("ETag", o.etag)
	if exists {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// collectionOf returns the collection an object path belongs to.
func (s *Server) collectionOf(p string) (string, bool) {
	dir := path.Dir(p) + "/"
	for name := range s.collections {
		if s.CollectionPath(name) == dir {
			return name, true
		}
	}
	return "", false
}

func (s *Server) report(w http.ResponseWriter, r *http.Request, body string) {
	var prefix string
	for name := range s.collections {
		if p := s.CollectionPath(name); p == r.URL.Path || strings.TrimSuffix(p, "/") == r.URL.Path {
			prefix = p
		}
	}
	if prefix == "" {
		http.NotFound(w, r)
		return
	}

	match := textMatch(body)

	doc, ms := newMultistatus()
	var paths []string
	for p := range s.objects {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	for _, p := range paths {
		o := s.objects[p]
		if match != "" && !strings.Contains(o.data, match) {
			continue
		}
		prop := addResponse(ms, p)
		prop.CreateElement("d:getetag").SetText(o.etag)
		prop.CreateElement("cal:calendar-data").SetText(o.data)
	}
	writeMultistatus(w, doc)
}

// textMatch returns the text of the first text-match element in a
// calendar-query body.
func textMatch(body string) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return ""
	}
	if el := doc.FindElement("//text-match"); el != nil {
		return el.Text()
	}
	return ""
}

func (s *Server) propfind(w http.ResponseWriter, r *http.Request) {
	principal := fmt.Sprintf("%s/principals/users/%s/", DAVPath, s.user)
	home := fmt.Sprintf("%s/calendars/%s/", DAVPath, s.user)

	doc, ms := newMultistatus()
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case DAVPath:
		prop := addResponse(ms, DAVPath+"/")
		prop.CreateElement("d:current-user-principal").CreateElement("d:href").SetText(principal)
	case strings.TrimSuffix(principal, "/"):
		prop := addResponse(ms, principal)
		prop.CreateElement("cal:calendar-home-set").CreateElement("d:href").SetText(home)
	case strings.TrimSuffix(home, "/"):
		prop := addResponse(ms, home)
		prop.CreateElement("d:resourcetype").CreateElement("d:collection")

		names := make([]string, 0, len(s.collections))
		for name := range s.collections {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			prop := addResponse(ms, s.CollectionPath(name))
			rt := prop.CreateElement("d:resourcetype")
			rt.CreateElement("d:collection")
			rt.CreateElement("cal:calendar")
			prop.CreateElement("d:displayname").SetText(strings.ToUpper(name[:1]) + name[1:])
			if comps := s.collections[name]; len(comps) > 0 {
				set := prop.CreateElement("cal:supported-calendar-component-set")
				for _, c := range comps {
					set.CreateElement("cal:comp").CreateAttr("name", c)
				}
			}
		}
	default:
		http.NotFound(w, r)
		return
	}
	writeMultistatus(w, doc)
}

func newMultistatus() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	ms := doc.CreateElement("d:multistatus")
	ms.CreateAttr("xmlns:d", "DAV:")
	ms.CreateAttr("xmlns:cal", "urn:ietf:params:xml:ns:caldav")
	return doc, ms
}

// addResponse appends a response for href with a 200 propstat and returns
// its prop element.
func addResponse(ms *etree.Element, href string) *etree.Element {
	resp := ms.CreateElement("d:response")
	resp.CreateElement("d:href").SetText(href)
	propstat := resp.CreateElement("d:propstat")
	prop := propstat.CreateElement("d:prop")
	propstat.CreateElement("d:status").SetText("HTTP/1.1 200 OK")
	return prop
}

func writeMultistatus(w http.ResponseWriter, doc *etree.Document) {
	out, _ := doc.WriteToString()
	// Keep CRLF line endings of calendar data through XML parsing.
	out = strings.ReplaceAll(out, "\r", "&#13;")
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusMultiStatus)
	io.WriteString(w, out)
}
