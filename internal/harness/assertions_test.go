package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sparqlconn/internal/connector"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestCheckExpect(t *testing.T) {
	ok := TraceEvent{Op: OpFetch, Columns: []string{"a", ""}, Rows: [][]any{{"x", int64(3)}}}
	failed := TraceEvent{Op: OpFetch, ErrorCode: "MALFORMED_RESPONSE", Message: "Failed to parse", UserSafe: true}

	tests := []struct {
		name   string
		exp    Expect
		ev     TraceEvent
		errors int
	}{
		{"success matches", Expect{RowCount: intPtr(1), Rows: [][]any{{"x", 3}}, Columns: []string{"a", ""}}, ok, 0},
		{"unexpected error", Expect{}, failed, 1},
		{"wrong error code", Expect{Error: "ENDPOINT_UNREACHABLE"}, failed, 1},
		{"error matches", Expect{Error: "MALFORMED_RESPONSE", Message: "parse", UserSafe: boolPtr(true)}, failed, 0},
		{"user safe mismatch", Expect{Error: "MALFORMED_RESPONSE", UserSafe: boolPtr(false)}, failed, 1},
		{"message mismatch", Expect{Error: "MALFORMED_RESPONSE", Message: "timeout"}, failed, 1},
		{"columns mismatch", Expect{Columns: []string{"a"}}, ok, 1},
		{"row values mismatch", Expect{Rows: [][]any{{"x", "3"}}}, ok, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, checkExpect(&tt.exp, tt.ev), tt.errors)
		})
	}
}

func TestAssertRuns(t *testing.T) {
	// newest first, as ListRuns returns them
	runs := []connector.Run{
		{ID: "run-2", Status: connector.RunStatusError},
		{ID: "run-1", Status: connector.RunStatusSuccess},
	}

	assert.NoError(t, assertRuns(runs, Assertion{Type: AssertRunCount, Count: 2}, nil))
	assert.Error(t, assertRuns(runs, Assertion{Type: AssertRunCount, Count: 1}, nil))
	assert.NoError(t, assertRuns(runs, Assertion{Type: AssertRunStatuses, Statuses: []string{"success", "error"}}, nil))
	assert.Error(t, assertRuns(runs, Assertion{Type: AssertRunStatuses, Statuses: []string{"error", "success"}}, nil))
}

func TestAssertQueryContains(t *testing.T) {
	trace := []TraceEvent{{Step: 0, Op: OpFetch, Requests: 1, Query: "SELECT * {}\nLIMIT 5"}}

	assert.NoError(t, assertQueryContains(trace, Assertion{Type: AssertQueryContains, Step: 0, Text: "LIMIT 5"}))
	assert.Error(t, assertQueryContains(trace, Assertion{Type: AssertQueryContains, Step: 0, Text: "OFFSET"}))
	assert.Error(t, assertQueryContains(trace, Assertion{Type: AssertQueryContains, Step: 4, Text: "x"}))
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertRequestCount,
		Expected: "2 endpoint request(s)",
		Actual:   "3 endpoint request(s)",
		Trace: []TraceEvent{
			{Step: 0, Op: OpValidate, Requests: 1},
			{Step: 1, Op: OpFetch, Requests: 2, ErrorCode: "ENDPOINT_UNREACHABLE"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: request_count")
	assert.Contains(t, msg, "Expected: 2 endpoint request(s)")
	assert.Contains(t, msg, "Actual: 3 endpoint request(s)")
	assert.Contains(t, msg, "[0] validate requests=1 ok")
	assert.Contains(t, msg, "[1] fetch requests=2 ENDPOINT_UNREACHABLE")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
