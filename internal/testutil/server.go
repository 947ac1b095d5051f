package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// Call records one request the fixture server received.
type Call struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
}

// Server is an httptest-backed stand-in for a GitLab instance. Tests stub
// individual method/path combinations and assert afterwards on the recorded
// calls. Unstubbed paths answer 404 with the GitLab error envelope.
type Server struct {
	// HTTP is the underlying test server; its URL is the base URL handed to
	// the client under test.
	HTTP *httptest.Server

	mu    sync.Mutex
	calls []Call
	stubs map[string]stub
}

type stub struct {
	status int
	body   []byte
}

// NewServer starts a fixture server, registered for cleanup with t.
func NewServer(t *testing.T) *Server {
	t.Helper()
	server := &Server{stubs: map[string]stub{}}
	server.HTTP = httptest.NewServer(http.HandlerFunc(server.handle))
	t.Cleanup(server.HTTP.Close)
	return server
}

// URL returns the base URL of the fixture server.
func (s *Server) URL() string { return s.HTTP.URL }

// Stub registers a canned response for the method and path. path must be the
// full request path including the /api/v4 prefix.
func (s *Server) Stub(method, path string, status int, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs[method+" "+path] = stub{status: status, body: body}
}

// Calls returns a snapshot of the recorded requests in arrival order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]Call, len(s.calls))
	copy(snapshot, s.calls)
	return snapshot
}

// CallCount returns how many requests matched the method and path.
func (s *Server) CallCount(method, path string) int {
	count := 0
	for _, call := range s.Calls() {
		if call.Method == method && call.Path == path {
			count++
		}
	}
	return count
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	// EscapedPath keeps percent-encoded segments (such as namespace%2Fproject
	// IDs) distinguishable from literal slashes.
	path := r.URL.EscapedPath()
	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method:   r.Method,
		Path:     path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
	})
	canned, ok := s.stubs[r.Method+" "+path]
	s.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"404 Not Found"}`))
		return
	}

	if len(canned.body) > 0 {
		w.Header().Set("Content-Length", strconv.Itoa(len(canned.body)))
	}
	w.WriteHeader(canned.status)
	if len(canned.body) > 0 {
		_, _ = w.Write(canned.body)
	}
}
