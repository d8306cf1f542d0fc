package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sparqlconn/internal/query"
	"github.com/roach88/sparqlconn/internal/translate"
)

// Scenario defines a connector conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Now is the RFC 3339 start time of the scenario clock.
	// Defaults to DefaultNow.
	Now string `yaml:"now,omitempty"`

	// Mode is the row failure mode: lenient (default) or strict.
	Mode string `yaml:"mode,omitempty"`

	// SkipProbe disables the endpoint probe before describe.
	SkipProbe bool `yaml:"skip_probe,omitempty"`

	// Query is the SPARQL template and Schema the column declaration JSON.
	Query  string `yaml:"query"`
	Schema string `yaml:"schema"`

	Steps []Step `yaml:"steps"`

	// Assertions are evaluated after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one connector call.
type Step struct {
	// Op is the operation: validate, describe or fetch.
	Op string `yaml:"op"`

	// Response replaces what the endpoint answers from this step on.
	// If nil, the previous answer stays in place.
	Response *Response `yaml:"response,omitempty"`

	// Fetch request parameters.
	Fields     []string          `yaml:"fields,omitempty"`
	DateRange  *query.DateRange  `yaml:"date_range,omitempty"`
	Pagination *query.Pagination `yaml:"pagination,omitempty"`
	Sample     bool              `yaml:"sample,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, no validation is performed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Response is a canned endpoint answer.
type Response struct {
	// Status defaults to 200.
	Status int    `yaml:"status,omitempty"`
	Body   string `yaml:"body"`
}

// Expect specifies expected step behavior. Unset fields are not checked.
type Expect struct {
	// Error is the expected connerr code. Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Message must be a substring of the user-facing message.
	Message string `yaml:"message,omitempty"`

	UserSafe *bool `yaml:"user_safe,omitempty"`

	// Columns are the returned schema names; "" stands for an unknown field.
	Columns []string `yaml:"columns,omitempty"`

	Rows     [][]any `yaml:"rows,omitempty"`
	RowCount *int    `yaml:"row_count,omitempty"`
}

// Assertion validates the whole scenario run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "query_contains": the query sent during Step contains Text
	// - "request_count": the endpoint received Count requests in total
	// - "run_count": the run log holds Count runs
	// - "run_statuses": run log statuses, oldest first, equal Statuses
	Type string `yaml:"type"`

	Step     int      `yaml:"step,omitempty"`
	Text     string   `yaml:"text,omitempty"`
	Count    int      `yaml:"count,omitempty"`
	Statuses []string `yaml:"statuses,omitempty"`
}

// Operation names.
const (
	OpValidate = "validate"
	OpDescribe = "describe"
	OpFetch    = "fetch"
)

// Assertion type constants.
const (
	AssertQueryContains = "query_contains"
	AssertRequestCount  = "request_count"
	AssertRunCount      = "run_count"
	AssertRunStatuses   = "run_statuses"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML from memory.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Query == "" {
		return fmt.Errorf("query is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if _, err := translate.ParseMode(s.Mode); err != nil {
		return err
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch step.Op {
		case OpValidate, OpDescribe:
		case OpFetch:
			if len(step.Fields) == 0 {
				return fmt.Errorf("step %d: fetch requires fields", i)
			}
		default:
			return fmt.Errorf("step %d: unknown op %q (must be validate, describe or fetch)", i, step.Op)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertQueryContains:
			if a.Step < 0 || a.Step >= len(s.Steps) {
				return fmt.Errorf("assertion %d: step %d out of range", i, a.Step)
			}
			if a.Text == "" {
				return fmt.Errorf("assertion %d: query_contains requires text", i)
			}
		case AssertRequestCount, AssertRunCount:
		case AssertRunStatuses:
			if len(a.Statuses) == 0 {
				return fmt.Errorf("assertion %d: run_statuses requires statuses", i)
			}
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
	}

	return nil
}
