package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/sparqlconn/internal/connector"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		outcome := "ok"
		if event.ErrorCode != "" {
			outcome = event.ErrorCode
		}
		fmt.Fprintf(&buf, "  [%d] %s requests=%d %s\n", event.Step, event.Op, event.Requests, outcome)
	}

	return buf.String()
}

func (h *Harness) evaluate(ctx context.Context, a Assertion, result *Result) error {
	switch a.Type {
	case AssertQueryContains:
		return assertQueryContains(result.Trace, a)
	case AssertRequestCount:
		if got := result.RequestCount(); got != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d endpoint request(s)", a.Count),
				Actual:   fmt.Sprintf("%d endpoint request(s)", got),
				Trace:    result.Trace,
			}
		}
		return nil
	case AssertRunCount, AssertRunStatuses:
		runs, err := h.store.ListRuns(ctx, 0)
		if err != nil {
			return fmt.Errorf("%s: %w", a.Type, err)
		}
		return assertRuns(runs, a, result.Trace)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertQueryContains checks the query sent during a.Step contains a.Text.
func assertQueryContains(trace []TraceEvent, a Assertion) error {
	if a.Step >= len(trace) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("step %d to have run", a.Step),
			Actual:   fmt.Sprintf("%d step(s) ran", len(trace)),
			Trace:    trace,
		}
	}
	q := trace[a.Step].Query
	if !strings.Contains(q, a.Text) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("step %d query containing %q", a.Step, a.Text),
			Actual:   fmt.Sprintf("%q", q),
			Trace:    trace,
		}
	}
	return nil
}

// assertRuns checks the run log. runs are newest first.
func assertRuns(runs []connector.Run, a Assertion, trace []TraceEvent) error {
	if a.Type == AssertRunCount {
		if len(runs) != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d recorded run(s)", a.Count),
				Actual:   fmt.Sprintf("%d recorded run(s)", len(runs)),
				Trace:    trace,
			}
		}
		return nil
	}

	statuses := make([]string, len(runs))
	for i, r := range runs {
		statuses[len(runs)-1-i] = r.Status
	}
	if !slices.Equal(statuses, a.Statuses) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%v", a.Statuses),
			Actual:   fmt.Sprintf("%v", statuses),
			Trace:    trace,
		}
	}
	return nil
}

// checkExpect compares one step outcome with its expect clause.
func checkExpect(exp *Expect, ev TraceEvent) []string {
	var errs []string

	switch {
	case exp.Error == "" && ev.ErrorCode != "":
		errs = append(errs, fmt.Sprintf("expected success, got %s: %s", ev.ErrorCode, ev.Message))
	case exp.Error != "" && ev.ErrorCode != exp.Error:
		got := ev.ErrorCode
		if got == "" {
			got = "success"
		}
		errs = append(errs, fmt.Sprintf("expected error %s, got %s", exp.Error, got))
	}

	if exp.Message != "" && !strings.Contains(ev.Message, exp.Message) {
		errs = append(errs, fmt.Sprintf("expected message containing %q, got %q", exp.Message, ev.Message))
	}
	if exp.UserSafe != nil && *exp.UserSafe != ev.UserSafe {
		errs = append(errs, fmt.Sprintf("expected user_safe=%v, got %v", *exp.UserSafe, ev.UserSafe))
	}
	if exp.Columns != nil && !slices.Equal(exp.Columns, ev.Columns) {
		errs = append(errs, fmt.Sprintf("expected columns %q, got %q", exp.Columns, ev.Columns))
	}
	if exp.RowCount != nil && *exp.RowCount != len(ev.Rows) {
		errs = append(errs, fmt.Sprintf("expected %d row(s), got %d", *exp.RowCount, len(ev.Rows)))
	}
	if exp.Rows != nil {
		want, _ := json.Marshal(exp.Rows)
		got, _ := json.Marshal(ev.Rows)
		if !bytes.Equal(want, got) {
			errs = append(errs, fmt.Sprintf("expected rows %s, got %s", want, got))
		}
	}

	return errs
}
