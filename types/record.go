package types

import "fmt"

// Record is a single row keyed by field name. Values read from CSV are
// strings; values read from JSON keep their decoded types.
type Record map[string]interface{}

// String returns the field as a string pointer. Missing and nil values
// return nil; other non-string values are stringified.
func (r Record) String(field string) *string {
	v, ok := r[field]
	if !ok || v == nil {
		return nil
	}
	if s, isStr := v.(string); isStr {
		return &s
	}
	s := fmt.Sprint(v)
	return &s
}

func (r Record) Clone() Record {
	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}

// Table is an ordered collection of records. Fields is the schema in column
// order; every row indexes into the same field set.
type Table struct {
	Fields []string `json:"fields"`
	Rows   []Record `json:"rows"`
}

func NewTable(fields ...string) *Table {
	return &Table{Fields: fields}
}

func (t *Table) HasField(name string) bool {
	for _, f := range t.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// AddField appends a field to the schema unless it is already present.
func (t *Table) AddField(name string) {
	if !t.HasField(name) {
		t.Fields = append(t.Fields, name)
	}
}

// MissingFields reports which of the given fields are absent from the schema,
// in the order they were asked for.
func (t *Table) MissingFields(names ...string) []string {
	var missing []string
	for _, name := range names {
		if !t.HasField(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func (t *Table) Clone() *Table {
	clone := &Table{
		Fields: append([]string(nil), t.Fields...),
		Rows:   make([]Record, len(t.Rows)),
	}
	for i, row := range t.Rows {
		clone.Rows[i] = row.Clone()
	}
	return clone
}
