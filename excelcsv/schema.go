package excelcsv

import (
	"fmt"
	"slices"
	"strings"
)

// Schema is an ordered list of field names. It defines the order of columns
// in the file. Uniqueness of names is not enforced.
// Methods don't modify the schema, they return a new one.
type Schema []string

// Index returns position of the first field with a given name, -1 if not found
func (s Schema) Index(name string) int {
	return slices.Index(s, name)
}

// Has returns true if schema has a field
func (s Schema) Has(name string) bool {
	return s.Index(name) >= 0
}

func (s Schema) Clone() Schema {
	res := make(Schema, len(s))
	copy(res, s)
	return res
}

func (s Schema) Equal(other Schema) bool {
	return slices.Equal(s, other)
}

func (s Schema) String() string {
	return strings.Join(s, ",")
}

// Insert inserts names at position at, preserving their order.
// Panics if at is out of range.
func (s Schema) Insert(at int, names ...string) Schema {
	if at < 0 || at > len(s) {
		panic(fmt.Sprintf("Schema.Insert: position %d out of range [0, %d]", at, len(s)))
	}
	res := make(Schema, 0, len(s)+len(names))
	res = append(res, s[:at]...)
	res = append(res, names...)
	return append(res, s[at:]...)
}

// Prepend inserts names at the beginning
func (s Schema) Prepend(names ...string) Schema {
	return s.Insert(0, names...)
}

// Append inserts names at the end
func (s Schema) Append(names ...string) Schema {
	return s.Insert(len(s), names...)
}

// InsertAfter inserts names right after target field
func (s Schema) InsertAfter(target string, names ...string) (Schema, error) {
	idx := s.Index(target)
	if idx < 0 {
		return nil, fmt.Errorf("insert after '%s': %w", target, ErrFieldNotFound)
	}
	return s.Insert(idx+1, names...), nil
}

// Remove removes the first field with a given name
func (s Schema) Remove(field string) (Schema, error) {
	idx := s.Index(field)
	if idx < 0 {
		return nil, fmt.Errorf("remove '%s': %w", field, ErrFieldNotFound)
	}
	res := s.Clone()
	return slices.Delete(res, idx, idx+1), nil
}

// Rename changes the name of the first field called old
func (s Schema) Rename(old, to string) (Schema, error) {
	idx := s.Index(old)
	if idx < 0 {
		return nil, fmt.Errorf("rename '%s': %w", old, ErrFieldNotFound)
	}
	res := s.Clone()
	res[idx] = to
	return res, nil
}

// isPermutationOf returns true if s has the same fields as other,
// in any order
func (s Schema) isPermutationOf(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	counts := map[string]int{}
	for _, f := range other {
		counts[f]++
	}
	for _, f := range s {
		counts[f]--
		if counts[f] < 0 {
			return false
		}
	}
	return true
}

// InferSchema returns field order of the first record. Returns false if
// there are no records, in which case the schema is unspecified.
// All records are expected to have the same fields.
func InferSchema(records []*Record) (Schema, bool) {
	if len(records) == 0 {
		return nil, false
	}
	return Schema(records[0].Fields()), true
}
