package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/roach88/sparqlconn/internal/connector"
	"github.com/roach88/sparqlconn/internal/connerr"
	"github.com/roach88/sparqlconn/internal/endpoint"
	"github.com/roach88/sparqlconn/internal/query"
	"github.com/roach88/sparqlconn/internal/schema"
	"github.com/roach88/sparqlconn/internal/store"
	"github.com/roach88/sparqlconn/internal/testutil"
	"github.com/roach88/sparqlconn/internal/translate"
)

// DefaultNow is the scenario clock start when a scenario sets none.
const DefaultNow = "2024-06-15T12:00:00Z"

// emptyResults is what the endpoint answers until a step sets a response.
const emptyResults = `{"head":{"vars":[]},"results":{"bindings":[]}}`

// Harness is the scenario execution environment.
type Harness struct {
	server *testutil.SPARQLServer
	store  *store.Store
	clock  *testutil.FixedClock
	conn   *connector.Connector
	cfg    connector.Config
}

// Run executes a scenario and returns the result.
//
// Expect and assertion mismatches are reported in Result.Errors; the
// returned error is reserved for failures to set up the scenario.
//
// Execution flow:
// 1. Start a fake endpoint and a fresh in-memory run log
// 2. Wire a connector with a frozen clock and sequential run ids
// 3. Execute steps, checking each expect clause
// 4. Evaluate assertions
func Run(t testing.TB, scenario *Scenario) (*Result, error) {
	t.Helper()

	now := scenario.Now
	if now == "" {
		now = DefaultNow
	}
	start, err := time.Parse(time.RFC3339, now)
	if err != nil {
		return nil, fmt.Errorf("invalid now %q: %w", now, err)
	}
	mode, err := translate.ParseMode(scenario.Mode)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	// Suppress logs in tests
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := testutil.NewFixedClock(start)
	srv := testutil.NewSPARQLServer(t, emptyResults)

	h := &Harness{
		server: srv,
		store:  st,
		clock:  clock,
		cfg: connector.Config{
			Endpoint: srv.URL,
			Query:    scenario.Query,
			Schema:   scenario.Schema,
		},
	}
	h.conn = connector.New(connector.Options{
		Client:             endpoint.NewClient(endpoint.Options{Logger: logger}),
		Preparer:           &query.Preparer{Now: clock.Now, Logger: logger},
		Translator:         translate.New(mode, logger),
		Cache:              schema.NewCache(),
		Recorder:           st,
		IDs:                testutil.NewSequenceIDGenerator("run"),
		ValidateOnDescribe: !scenario.SkipProbe,
		Logger:             logger,
	})

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		event := h.executeStep(ctx, i, step)
		result.AddTrace(event)
		if step.Expect != nil {
			for _, msg := range checkExpect(step.Expect, event) {
				result.AddError(fmt.Sprintf("step %d (%s): %s", i, step.Op, msg))
			}
		}
		clock.Advance(time.Second)
	}

	for _, a := range scenario.Assertions {
		if err := h.evaluate(ctx, a, result); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, i int, step Step) TraceEvent {
	if step.Response != nil {
		status := step.Response.Status
		if status == 0 {
			status = http.StatusOK
		}
		h.server.Respond(status, step.Response.Body)
	}
	before := len(h.server.Received())

	event := TraceEvent{Step: i, Op: step.Op}
	var err error

	switch step.Op {
	case OpValidate:
		err = h.conn.ValidateEndpoint(ctx, h.cfg.Endpoint)
	case OpDescribe:
		var resp *connector.SchemaResponse
		resp, err = h.conn.DescribeSchema(ctx, h.cfg)
		if err == nil {
			event.Columns = columnNames(resp.Schema)
		}
	case OpFetch:
		var resp *connector.DataResponse
		resp, err = h.conn.FetchData(ctx, h.cfg, connector.Request{
			Fields:           step.Fields,
			DateRange:        step.DateRange,
			Pagination:       step.Pagination,
			SampleExtraction: step.Sample,
		})
		if err == nil {
			event.Columns = columnNames(resp.Schema)
			for _, row := range resp.Rows {
				event.Rows = append(event.Rows, row.Values)
			}
		}
	}

	received := h.server.Received()[before:]
	event.Requests = len(received)
	if len(received) > 0 {
		event.Query = received[len(received)-1].Query
	}

	if err != nil {
		event.ErrorCode = string(connerr.CodeOf(err))
		if event.ErrorCode == "" {
			event.ErrorCode = "UNCLASSIFIED"
		}
		event.Message = connerr.UserMessage(err)
		event.UserSafe = connerr.IsUserSafe(err)
	}
	return event
}

func columnNames(s schema.Schema) []string {
	names := make([]string, len(s))
	for i, col := range s {
		if col != nil {
			names[i] = col.Name
		}
	}
	return names
}
