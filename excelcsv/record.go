package excelcsv

import (
	"fmt"
)

// Record is a single row: an ordered list of fields and their values.
// Field order is kept so that a record can be written without a schema
// (see InferSchema). A missing value is an empty string, keys are never
// omitted.
type Record struct {
	fields []string
	values map[string]string
}

// NewRecord creates a record from key/value pairs, in order.
// Panics on odd number of arguments.
func NewRecord(kv ...string) *Record {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("NewRecord: invalid number of args: %d. Should be multiple of 2", len(kv)))
	}
	r := &Record{
		fields: make([]string, 0, len(kv)/2),
		values: make(map[string]string, len(kv)/2),
	}
	for i := 0; i < len(kv); i += 2 {
		r.Set(kv[i], kv[i+1])
	}
	return r
}

// RecordFromMap creates a record from an unordered map using schema
// for field order. Fields missing from m get an empty value.
// Keys of m not in schema are an error.
func RecordFromMap(schema Schema, m map[string]string) (*Record, error) {
	for k := range m {
		if !schema.Has(k) {
			return nil, fmt.Errorf("%w '%s'", ErrExtraField, k)
		}
	}
	r := &Record{
		values: make(map[string]string, len(schema)),
	}
	for _, f := range schema {
		r.Set(f, m[f])
	}
	return r, nil
}

// RecordsFromMaps converts unordered maps to records, see RecordFromMap
func RecordsFromMaps(schema Schema, maps []map[string]string) ([]*Record, error) {
	res := make([]*Record, 0, len(maps))
	for i, m := range maps {
		r, err := RecordFromMap(schema, m)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		res = append(res, r)
	}
	return res, nil
}

// Get returns a value of a field
func (r *Record) Get(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Value returns a value of a field, "" if record doesn't have it
func (r *Record) Value(field string) string {
	return r.values[field]
}

func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Set sets a value of a field. A new field is added at the end.
func (r *Record) Set(field, value string) {
	if r.values == nil {
		r.values = map[string]string{}
	}
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = value
}

// Delete removes a field. Returns false if record doesn't have it.
func (r *Record) Delete(field string) bool {
	if _, ok := r.values[field]; !ok {
		return false
	}
	delete(r.values, field)
	for i, f := range r.fields {
		if f == field {
			r.fields = append(r.fields[:i], r.fields[i+1:]...)
			break
		}
	}
	return true
}

// Fields returns names of fields, in order
func (r *Record) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Len returns number of fields
func (r *Record) Len() int {
	return len(r.fields)
}

// Map returns a copy of field values
func (r *Record) Map() map[string]string {
	res := make(map[string]string, len(r.values))
	for k, v := range r.values {
		res[k] = v
	}
	return res
}

func (r *Record) Clone() *Record {
	return &Record{
		fields: r.Fields(),
		values: r.Map(),
	}
}

// Equal returns true if both records have the same fields, in the same
// order, with the same values
func (r *Record) Equal(other *Record) bool {
	if len(r.fields) != len(other.fields) {
		return false
	}
	for i, f := range r.fields {
		if other.fields[i] != f || other.values[f] != r.values[f] {
			return false
		}
	}
	return true
}

// Values returns values in schema order. A field of schema missing
// in the record is an error.
func (r *Record) Values(schema Schema) ([]string, error) {
	res := make([]string, len(schema))
	for i, f := range schema {
		v, ok := r.values[f]
		if !ok {
			return nil, fmt.Errorf("%w '%s'", ErrMissingField, f)
		}
		res[i] = v
	}
	return res, nil
}

func (r *Record) String() string {
	s := "{"
	for i, f := range r.fields {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%q: %q", f, r.values[f])
	}
	return s + "}"
}
