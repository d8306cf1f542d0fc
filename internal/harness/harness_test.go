package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(strings.TrimSuffix(filepath.Base(path), ".yaml"), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(scenario.Steps))
		})
	}
}

func TestRunWithGolden_WeeklyVisits(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/weekly_visits.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/endpoint_failures.yaml")
	require.NoError(t, err)

	first, err := Run(t, scenario)
	require.NoError(t, err)
	second, err := Run(t, scenario)
	require.NoError(t, err)

	a, err := MarshalSnapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := MarshalSnapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_ReportsMismatches(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_expectations
description: Every expectation here is wrong.
query: SELECT ?a WHERE { ?s ?p ?a }
schema: '[{"name":"a","dataType":"STRING"}]'
steps:
  - op: fetch
    fields: [a]
    response:
      body: '{"head":{"vars":["a"]},"results":{"bindings":[{"a":{"type":"literal","value":"x"}},{"a":{"type":"literal","value":"y"}}]}}'
    expect:
      error: ENDPOINT_UNREACHABLE
      row_count: 5
      rows: [["z"]]
assertions:
  - type: request_count
    count: 9
  - type: run_count
    count: 0
  - type: query_contains
    step: 0
    text: LIMIT
`))
	require.NoError(t, err)

	result, err := Run(t, scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)

	joined := strings.Join(result.Errors, "\n")
	assert.Contains(t, joined, "expected error ENDPOINT_UNREACHABLE, got success")
	assert.Contains(t, joined, "expected 5 row(s), got 2")
	assert.Contains(t, joined, `expected rows [["z"]], got [["x"],["y"]]`)
	assert.Contains(t, joined, "9 endpoint request(s)")
	assert.Contains(t, joined, "0 recorded run(s)")
	assert.Contains(t, joined, `containing "LIMIT"`)
}

func TestRun_InvalidNow(t *testing.T) {
	scenario := &Scenario{
		Name: "bad_clock", Description: "d", Query: "q", Schema: "[]",
		Now:   "yesterday",
		Steps: []Step{{Op: OpValidate}},
	}
	_, err := Run(t, scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid now")
}

func TestRun_ResponseCarriesOver(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: carry_over
description: A response stays in place until a later step replaces it.
skip_probe: true
query: SELECT ?a WHERE { ?s ?p ?a }
schema: '[{"name":"a","dataType":"STRING"}]'
steps:
  - op: fetch
    fields: [a]
    response:
      status: 500
      body: boom
    expect:
      error: ENDPOINT_UNREACHABLE
  - op: validate
    expect:
      error: ENDPOINT_UNREACHABLE
  - op: describe
    expect:
      columns: [a]
`))
	require.NoError(t, err)

	result, err := Run(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 0, result.Trace[2].Requests, "describe without probe makes no request")
}
