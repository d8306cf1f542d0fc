// Package harness runs connector conformance scenarios.
//
// A scenario is a YAML file describing a connector configuration and a list
// of steps. Each step optionally changes what the fake SPARQL endpoint
// answers, then calls one connector operation (validate, describe or
// fetch) and checks the outcome against its expect clause. Assertions at
// the end of a scenario inspect the sent queries and the run log.
//
// Every scenario runs against a fresh httptest endpoint, a fresh in-memory
// run log, a frozen clock that advances one second per step and sequential
// run ids, so the resulting trace is deterministic and can be compared
// against a golden file with RunWithGolden.
//
// Example scenario:
//
//	name: empty_aggregate
//	description: A COUNT with nothing matched yields no rows.
//	query: SELECT (COUNT(?s) AS ?n) ?g WHERE { ?s ?p ?g } GROUP BY ?g
//	schema: '[{"name":"n","dataType":"NUMBER"}]'
//	steps:
//	  - op: fetch
//	    fields: [n]
//	    response:
//	      body: '{"head":{"vars":["n","g"]},"results":{"bindings":[{"n":{"type":"literal","value":"0"}}]}}'
//	    expect:
//	      row_count: 0
package harness
