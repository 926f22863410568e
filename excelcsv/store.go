package excelcsv

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kjk/excelcsv/log"
)

// Store is a CSV file with a header row, read and written as a list
// of records
type Store struct {
	path   string
	schema Schema
}

// Option changes behavior of operations that write the whole file
type Option func(*options)

type options struct {
	outputPath string
}

// OutputPath writes the result to path instead of the store file.
// After a successful write the store uses path as its file.
func OutputPath(path string) Option {
	return func(o *options) {
		o.outputPath = path
	}
}

func (s *Store) targetPath(opts []Option) string {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if o.outputPath != "" {
		return o.outputPath
	}
	return s.path
}

// Open creates a store for path with schema read from the header.
// A missing file gives an empty schema.
func Open(path string) (*Store, error) {
	schema, state, err := LoadSchema(path)
	if err != nil {
		return nil, err
	}
	log.Verbosef("excelcsv.Open: '%s' %s, fields: %s\n", path, state, schema)
	return &Store{path: path, schema: schema}, nil
}

// NewFromRecords creates a store with schema taken from the first record
// and writes the records. Without records the schema is empty and
// no file is written, the assumption is that records will be added later.
func NewFromRecords(path string, records []*Record) (*Store, error) {
	s := &Store{path: path, schema: Schema{}}
	if len(records) == 0 {
		return s, nil
	}
	s.UpdateSchemaFromRecords(records)
	if err := s.Write(records); err != nil {
		return nil, err
	}
	return s, nil
}

// NewWithSchema creates a store with a given schema and updates the header
// of the file if it exists. Data rows are not changed.
func NewWithSchema(path string, schema Schema) (*Store, error) {
	s := &Store{path: path, schema: schema.Clone()}
	state, err := SyncHeader(path, s.schema)
	if err != nil {
		return nil, err
	}
	if state == Present {
		log.Event("excelcsv.header", "path", path, "fields", s.schema.String())
	}
	return s, nil
}

// New creates a store with a given schema and writes the records
func New(path string, schema Schema, records []*Record) (*Store, error) {
	s := &Store{path: path, schema: schema.Clone()}
	if err := s.Write(records); err != nil {
		return nil, err
	}
	return s, nil
}

// NewFromMaps is like New but with unordered records. Field order can't
// be derived from a map so schema is required unless there are no records.
func NewFromMaps(path string, schema Schema, maps []map[string]string) (*Store, error) {
	if schema == nil {
		if len(maps) > 0 {
			return nil, ErrAmbiguousOrder
		}
		return &Store{path: path, schema: Schema{}}, nil
	}
	records, err := RecordsFromMaps(schema, maps)
	if err != nil {
		return nil, err
	}
	return New(path, schema, records)
}

// Path returns path of the store file
func (s *Store) Path() string {
	return s.path
}

// Schema returns a copy of the current schema
func (s *Store) Schema() Schema {
	return s.schema.Clone()
}

// SetPath changes the store file. If the current file exists,
// it's moved to path.
func (s *Store) SetPath(path string) error {
	if path == s.path {
		return nil
	}
	err := os.Rename(s.path, path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err == nil {
		log.Event("excelcsv.move", "from", s.path, "to", path)
	}
	s.path = path
	return nil
}

// UpdateSchemaFromRecords sets schema to field order of the first record.
// With no records the schema is left unchanged: an empty result, e.g. of
// a search, says nothing about fields.
// Only the in-memory schema changes, the file is updated by the next Write.
func (s *Store) UpdateSchemaFromRecords(records []*Record) {
	if schema, ok := InferSchema(records); ok {
		s.schema = schema
	}
}

// Read returns all records. A missing file has no records.
func (s *Store) Read() ([]*Record, error) {
	records, _, err := Decode(s.path)
	return records, err
}

// Write replaces the file with header and records. Every record must have
// exactly the fields of the schema.
func (s *Store) Write(records []*Record, opts ...Option) error {
	timeStart := time.Now()
	path := s.targetPath(opts)
	if err := Encode(path, s.schema, records); err != nil {
		return err
	}
	s.path = path
	log.Verbosef("excelcsv.Write: wrote %d records to '%s'\n", len(records), path)
	log.EventWithDuration("excelcsv.write", time.Since(timeStart), "path", path, "rows", len(records))
	return nil
}

// Append appends records without rewriting the header. The schema must
// match the header of the file, this is not checked.
func (s *Store) Append(records []*Record) error {
	if err := EncodeAppend(s.path, s.schema, records); err != nil {
		return fmt.Errorf("append to '%s': %w", s.path, err)
	}
	log.Event("excelcsv.append", "path", s.path, "rows", len(records))
	return nil
}

// PrependFields adds fields at the beginning and updates the header
func (s *Store) PrependFields(names ...string) error {
	return s.Change().Prepend(names...).Commit()
}

// AppendFields adds fields at the end and updates the header
func (s *Store) AppendFields(names ...string) error {
	return s.Change().Append(names...).Commit()
}

// InsertFieldsAfter adds fields after target and updates the header
func (s *Store) InsertFieldsAfter(target string, names ...string) error {
	return s.Change().InsertAfter(target, names...).Commit()
}

// RenameField changes the name of a field in the header
func (s *Store) RenameField(old, to string) error {
	return s.Change().Rename(old, to).Commit()
}
