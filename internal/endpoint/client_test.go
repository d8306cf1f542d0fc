package endpoint

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparqlconn/internal/connerr"
	"github.com/roach88/sparqlconn/internal/testutil"
)

const okBody = `{
  "head": { "vars": ["city", "population", "founded"] },
  "results": { "bindings": [
    {
      "city": { "type": "literal", "value": "Lyon", "xml:lang": "fr" },
      "population": { "type": "literal", "value": "522250", "datatype": "http://www.w3.org/2001/XMLSchema#integer" },
      "founded": { "type": "literal", "value": "-0043-10-09", "datatype": "http://www.w3.org/2001/XMLSchema#date" }
    }
  ] }
}`

func newTestClient() *Client {
	return NewClient(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func TestQuery_WireProtocol(t *testing.T) {
	srv := testutil.NewSPARQLServer(t, okBody)
	c := newTestClient()

	_, err := c.Query(context.Background(), srv.URL, "SELECT ?city WHERE { ?s ?p ?city } # & = +")
	require.NoError(t, err)

	got := srv.Received()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodPost, got[0].Method)
	assert.Equal(t, "application/x-www-form-urlencoded", got[0].ContentType)
	assert.Equal(t, "application/sparql-results+json", got[0].Accept)
	assert.Equal(t, "SELECT ?city WHERE { ?s ?p ?city } # & = +", got[0].Query)
}

func TestQuery_DecodesBindings(t *testing.T) {
	srv := testutil.NewSPARQLServer(t, okBody)
	c := newTestClient()

	res, err := c.Query(context.Background(), srv.URL, "SELECT ...")
	require.NoError(t, err)

	assert.Equal(t, []string{"city", "population", "founded"}, res.Head.Vars)
	require.Len(t, res.Results.Bindings, 1)
	b := res.Results.Bindings[0]
	assert.Equal(t, "Lyon", b["city"].Value)
	assert.Equal(t, "fr", b["city"].Lang)
	assert.Equal(t, "http://www.w3.org/2001/XMLSchema#integer", b["population"].Datatype)
}

func TestQuery_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   connerr.Code
	}{
		{"server error", http.StatusInternalServerError, "boom", connerr.CodeEndpointUnreachable},
		{"bad request", http.StatusBadRequest, "parse error", connerr.CodeEndpointUnreachable},
		{"html body", http.StatusOK, "<html>nope</html>", connerr.CodeMalformedResponse},
		{"empty body", http.StatusOK, "", connerr.CodeMalformedResponse},
		{"missing head", http.StatusOK, `{"results":{"bindings":[]}}`, connerr.CodeUnsupportedResultFormat},
		{"missing results", http.StatusOK, `{"head":{"vars":[]}}`, connerr.CodeUnsupportedResultFormat},
		{"boolean ask result", http.StatusOK, `{"head":{},"boolean":true}`, connerr.CodeUnsupportedResultFormat},
		{"json array", http.StatusOK, `[1,2]`, connerr.CodeUnsupportedResultFormat},
		{"null head", http.StatusOK, `{"head":null,"results":{"bindings":[]}}`, connerr.CodeUnsupportedResultFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewSPARQLServer(t, tt.body)
			srv.Respond(tt.status, tt.body)

			_, err := newTestClient().Query(context.Background(), srv.URL, "SELECT ...")
			require.Error(t, err)
			assert.Equal(t, tt.code, connerr.CodeOf(err))
			assert.True(t, connerr.IsUserSafe(err))
		})
	}
}

func TestQuery_Unreachable(t *testing.T) {
	srv := testutil.NewSPARQLServer(t, okBody)
	addr := srv.URL
	srv.Close()

	_, err := newTestClient().Query(context.Background(), addr, "SELECT ...")
	require.Error(t, err)
	assert.True(t, errors.Is(err, connerr.ErrEndpointUnreachable))
	assert.Equal(t, msgExecuteFailed, connerr.UserMessage(err))
}

func TestQuery_CancelledContext(t *testing.T) {
	srv := testutil.NewSPARQLServer(t, okBody)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient().Query(ctx, srv.URL, "SELECT ...")
	assert.Equal(t, connerr.CodeEndpointUnreachable, connerr.CodeOf(err))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestProbe(t *testing.T) {
	srv := testutil.NewSPARQLServer(t, `{"head":{"vars":["x","y","z"]},"results":{"bindings":[]}}`)
	c := newTestClient()

	require.NoError(t, c.Probe(context.Background(), srv.URL))
	assert.Equal(t, ProbeQuery, srv.LastQuery())

	srv.Respond(http.StatusOK, "not json")
	err := c.Probe(context.Background(), srv.URL)
	assert.Equal(t, connerr.CodeMalformedResponse, connerr.CodeOf(err))
	assert.Equal(t, msgProbeFailed, connerr.UserMessage(err))

	srv.Respond(http.StatusOK, `{"boolean":true}`)
	err = c.Probe(context.Background(), srv.URL)
	assert.Equal(t, connerr.CodeUnsupportedResultFormat, connerr.CodeOf(err))

	srv.Respond(http.StatusServiceUnavailable, "")
	err = c.Probe(context.Background(), srv.URL)
	assert.Equal(t, connerr.CodeEndpointUnreachable, connerr.CodeOf(err))
	assert.Equal(t, msgProbeFailed, connerr.UserMessage(err))
}

func TestQuery_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(Options{
		Timeout: 50 * time.Millisecond,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	_, err := c.Query(context.Background(), srv.URL, "SELECT ...")
	assert.Equal(t, connerr.CodeEndpointUnreachable, connerr.CodeOf(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestQuery_RateLimited(t *testing.T) {
	srv := testutil.NewSPARQLServer(t, okBody)
	c := NewClient(Options{
		RequestsPerSecond: 20,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Query(context.Background(), srv.URL, "SELECT ...")
		require.NoError(t, err)
	}
	// Burst of 1: the second and third requests each wait ~50ms.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Len(t, srv.Received(), 3)
}

func TestDecode(t *testing.T) {
	res, err := Decode([]byte(`{"head":{"vars":["a"]},"results":{"bindings":[{}]}}`))
	require.NoError(t, err)
	assert.Len(t, res.Results.Bindings, 1)
	assert.Empty(t, res.Results.Bindings[0])
}
