// Package schema holds the user-declared column schema and the name index
// used to filter requested columns and to default missing cells.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/sparqlconn/internal/connerr"
)

// DataType is the declared semantic type of a column.
type DataType string

const (
	String  DataType = "STRING"
	Number  DataType = "NUMBER"
	Boolean DataType = "BOOLEAN"
)

// Column is one declared output column.
//
// The raw JSON object the column was parsed from is retained so that the
// schema can be handed back to the host exactly as the user wrote it.
type Column struct {
	Name     string   `json:"name"`
	DataType DataType `json:"dataType"`

	raw json.RawMessage
}

// MarshalJSON returns the original JSON object when available.
func (c *Column) MarshalJSON() ([]byte, error) {
	if len(c.raw) > 0 {
		return c.raw, nil
	}
	type plain Column
	return json.Marshal((*plain)(c))
}

// Schema is an ordered sequence of columns.
type Schema []*Column

// Names returns the column names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Parse decodes the user-authored schema text: a JSON array of objects with
// at least "name" and "dataType". Names must be non-empty and unique.
func Parse(text string) (Schema, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raws); err != nil {
		return nil, invalid(fmt.Errorf("schema is not a JSON array: %w", err))
	}

	seen := make(map[string]int, len(raws))
	cols := make(Schema, 0, len(raws))
	for i, raw := range raws {
		var c Column
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, invalid(fmt.Errorf("column %d: %w", i, err))
		}
		if strings.TrimSpace(c.Name) == "" {
			return nil, invalid(fmt.Errorf("column %d: missing name", i))
		}
		key := Normalize(c.Name)
		if prev, dup := seen[key]; dup {
			return nil, invalid(fmt.Errorf("column %d: duplicate name %q (first declared at %d)", i, c.Name, prev))
		}
		seen[key] = i
		c.raw = compact(raw)
		cols = append(cols, &c)
	}
	return cols, nil
}

// DefaultValue is the value used when a row has no binding for a column:
// 0 for NUMBER, false for BOOLEAN and "" for everything else.
func DefaultValue(c *Column) any {
	switch c.DataType {
	case Number:
		return int64(0)
	case Boolean:
		return false
	default:
		return ""
	}
}

func invalid(err error) error {
	return connerr.Wrap(connerr.CodeInvalidSchema,
		"Failed to parse the schema. Please, check that it is a JSON array of {\"name\", \"dataType\"} objects with unique names.",
		true, err)
}

func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
