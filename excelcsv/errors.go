package excelcsv

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMismatch is returned when records don't have exactly
	// the fields of the schema
	ErrSchemaMismatch = errors.New("record doesn't match schema")
	// ErrMissingField is returned when writing a record that lacks a schema field
	ErrMissingField = fmt.Errorf("%w: missing field", ErrSchemaMismatch)
	// ErrExtraField is returned when writing a record with a field not in schema
	ErrExtraField = fmt.Errorf("%w: field not in schema", ErrSchemaMismatch)

	// ErrFieldNotFound is returned when an operation names a field not in schema
	ErrFieldNotFound = errors.New("field not found")
	// ErrAmbiguousOrder is returned when constructing from unordered
	// records without a schema
	ErrAmbiguousOrder = errors.New("field order of unordered records is ambiguous, provide a schema")
	// ErrInvalidChoices is returned for inconsistent ChoiceOptions
	ErrInvalidChoices = errors.New("invalid choices")
	// ErrLastField is returned when removing the only field
	ErrLastField = errors.New("can't remove the last field")
)

// FileState tells if the store file existed when it was accessed.
// A missing file is a valid, empty store and not an error.
type FileState int

const (
	Absent FileState = iota
	Present
)

func (s FileState) String() string {
	if s == Present {
		return "present"
	}
	return "absent"
}
