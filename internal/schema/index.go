package schema

import "golang.org/x/text/unicode/norm"

// Index maps column names to their declarations. It is read-only once built.
//
// Names are NFC normalized on insert and lookup, so a variable name sent by
// the endpoint in decomposed form still matches its declared column.
type Index struct {
	columns Schema
	byName  map[string]*Column
}

// NewIndex builds an index over cols. Later duplicates are ignored; Parse
// already rejects them.
func NewIndex(cols Schema) *Index {
	idx := &Index{
		columns: cols,
		byName:  make(map[string]*Column, len(cols)),
	}
	for _, c := range cols {
		key := Normalize(c.Name)
		if _, exists := idx.byName[key]; !exists {
			idx.byName[key] = c
		}
	}
	return idx
}

// Lookup returns the column declared under name.
func (idx *Index) Lookup(name string) (*Column, bool) {
	c, ok := idx.byName[Normalize(name)]
	return c, ok
}

// Filter returns the declaration for each requested name, in request order.
// Unknown names yield a nil entry.
func (idx *Index) Filter(names []string) Schema {
	out := make(Schema, len(names))
	for i, name := range names {
		out[i] = idx.byName[Normalize(name)]
	}
	return out
}

// Columns returns the indexed schema in declaration order.
func (idx *Index) Columns() Schema {
	return idx.columns
}

// Len returns the number of indexed columns.
func (idx *Index) Len() int {
	return len(idx.byName)
}

// Normalize returns name in Unicode NFC form, the form the index keys on.
func Normalize(name string) string {
	return norm.NFC.String(name)
}
