// Package translate converts SPARQL JSON results into host row tuples.
package translate

import (
	"fmt"
	"log/slog"

	"github.com/roach88/sparqlconn/internal/connerr"
	"github.com/roach88/sparqlconn/internal/endpoint"
	"github.com/roach88/sparqlconn/internal/schema"
	"github.com/roach88/sparqlconn/internal/xsd"
)

// Mode controls what happens when a single row cannot be translated.
type Mode int

const (
	// ModeLenient reformats unparseable durations to 0 and drops, with a
	// warning, only rows that request an undeclared field.
	ModeLenient Mode = iota
	// ModeStrict aborts the whole translation with ROW_TRANSLATION_FAILURE.
	ModeStrict
)

// ParseMode maps "lenient" / "strict" (or "") to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "lenient":
		return ModeLenient, nil
	case "strict":
		return ModeStrict, nil
	default:
		return ModeLenient, fmt.Errorf("unknown translation mode %q: must be lenient or strict", s)
	}
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if m == ModeStrict {
		return "strict"
	}
	return "lenient"
}

// Row is one output record; Values align with the requested fields.
type Row struct {
	Values []any `json:"values"`
}

// Translator turns result bindings into rows.
type Translator struct {
	Mode   Mode
	Logger *slog.Logger
}

// New creates a Translator. A nil logger uses slog.Default().
func New(mode Mode, logger *slog.Logger) *Translator {
	return &Translator{Mode: mode, Logger: logger}
}

// Translate produces one Row per binding, with one value per requested field
// in request order.
//
// Present cells are converted by their XSD datatype; absent cells take the
// column's default. An empty result set (see IsEmpty) yields an empty,
// non-nil slice. Row failures follow the translator's Mode.
func (t *Translator) Translate(res *endpoint.Results, fields []string, idx *schema.Index) ([]Row, error) {
	rows := []Row{}
	if IsEmpty(res) {
		t.logger().Debug("query result is empty", "fields", len(fields))
		return rows, nil
	}

	for i, binding := range res.Results.Bindings {
		row, err := t.translateRow(binding, fields, idx)
		if err != nil {
			rowErr := connerr.Wrap(connerr.CodeRowTranslation,
				fmt.Sprintf("failed to translate row %d", i), false, err)
			if t.Mode == ModeStrict {
				return nil, rowErr
			}
			t.logger().Warn("dropping row", "row", i, "error", err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// IsEmpty reports whether a result set carries no real data: no bindings at
// all, or a single binding that leaves at least one head variable unbound
// (the shape aggregate queries return when nothing matched). Two or more
// bindings are never empty.
func IsEmpty(res *endpoint.Results) bool {
	switch len(res.Results.Bindings) {
	case 0:
		return true
	case 1:
		only := res.Results.Bindings[0]
		for _, v := range res.Head.Vars {
			if _, bound := only[v]; !bound {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// translateRow builds one row. Binding keys and field names are compared in
// NFC form.
func (t *Translator) translateRow(binding endpoint.Binding, fields []string, idx *schema.Index) (Row, error) {
	cells := make(map[string]endpoint.Term, len(binding))
	for name, cell := range binding {
		cells[schema.Normalize(name)] = cell
	}

	values := make([]any, len(fields))
	for j, name := range fields {
		if cell, ok := cells[schema.Normalize(name)]; ok {
			v, err := t.convert(cell)
			if err != nil {
				return Row{}, fmt.Errorf("field %q: %w", name, err)
			}
			values[j] = v
			continue
		}

		col, ok := idx.Lookup(name)
		if !ok {
			return Row{}, fmt.Errorf("field %q: not declared in schema", name)
		}
		values[j] = schema.DefaultValue(col)
	}
	return Row{Values: values}, nil
}

// convert reformats one cell. Strict mode rejects unparseable durations;
// lenient mode turns them into 0 and keeps the row.
func (t *Translator) convert(cell endpoint.Term) (any, error) {
	if t.Mode == ModeStrict {
		return xsd.Convert(cell.Value, cell.Datatype)
	}
	return xsd.Reformat(cell.Value, cell.Datatype), nil
}

func (t *Translator) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}
