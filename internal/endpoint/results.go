package endpoint

import (
	"encoding/json"
	"fmt"
)

// Term is one bound value in a SPARQL 1.1 JSON results binding.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Binding maps variable names to their bound terms. Unbound variables are
// absent from the map.
type Binding map[string]Term

// Head lists the projected variables.
type Head struct {
	Vars []string `json:"vars"`
}

// ResultSet holds the solution sequence.
type ResultSet struct {
	Bindings []Binding `json:"bindings"`
}

// Results is a decoded application/sparql-results+json document.
type Results struct {
	Head    Head      `json:"head"`
	Results ResultSet `json:"results"`
}

// envelope detects whether head and results are present at all.
type envelope struct {
	Head    json.RawMessage `json:"head"`
	Results json.RawMessage `json:"results"`
}

// notJSONError and shapeError distinguish the two decode failures.
type notJSONError struct{ err error }

func (e notJSONError) Error() string { return fmt.Sprintf("response is not JSON: %v", e.err) }
func (e notJSONError) Unwrap() error { return e.err }

type shapeError struct{ reason string }

func (e shapeError) Error() string { return "unexpected result shape: " + e.reason }

// Decode parses a response body, requiring both the head and results
// sections to be present.
func Decode(body []byte) (*Results, error) {
	if !json.Valid(body) {
		var v any
		return nil, notJSONError{json.Unmarshal(body, &v)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, shapeError{"body is not a JSON object"}
	}
	if isAbsent(env.Head) {
		return nil, shapeError{"missing head"}
	}
	if isAbsent(env.Results) {
		return nil, shapeError{"missing results"}
	}

	var res Results
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, shapeError{err.Error()}
	}
	return &res, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
