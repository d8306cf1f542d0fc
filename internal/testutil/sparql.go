package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// ReceivedQuery is one request observed by a SPARQLServer.
type ReceivedQuery struct {
	Method      string
	ContentType string
	Accept      string
	Query       string
}

// SPARQLServer is a fake SPARQL endpoint backed by httptest.
//
// It answers every request with the configured status and body and records
// what it received. Thread-safety: All methods are safe for concurrent use.
type SPARQLServer struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	received []ReceivedQuery
}

// NewSPARQLServer starts a fake endpoint answering 200 with body.
// The server is closed when the test finishes.
func NewSPARQLServer(t testing.TB, body string) *SPARQLServer {
	t.Helper()
	s := &SPARQLServer{status: http.StatusOK, body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Respond changes the status and body returned for subsequent requests.
func (s *SPARQLServer) Respond(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// Received returns a copy of the requests seen so far.
func (s *SPARQLServer) Received() []ReceivedQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReceivedQuery, len(s.received))
	copy(out, s.received)
	return out
}

// LastQuery returns the query text of the most recent request, or "".
func (s *SPARQLServer) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.received) == 0 {
		return ""
	}
	return s.received[len(s.received)-1].Query
}

func (s *SPARQLServer) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(raw))

	s.mu.Lock()
	s.received = append(s.received, ReceivedQuery{
		Method:      r.Method,
		ContentType: r.Header.Get("Content-Type"),
		Accept:      r.Header.Get("Accept"),
		Query:       form.Get("query"),
	})
	status, body := s.status, s.body
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/sparql-results+json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
