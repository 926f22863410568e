package excelcsv

import (
	"github.com/kjk/excelcsv/log"
)

// SchemaChange is a pending change of the schema of a Store. Changes
// only rewrite the header, data rows keep their values by position.
// Nothing is written until Commit.
//
//	err := s.Change().Prepend("id").InsertAfter("name", "nickname").Commit()
//
// The first error is remembered, the following changes are ignored
// and Commit returns it.
type SchemaChange struct {
	store  *Store
	schema Schema
	err    error
}

// Change starts a schema change from the current schema
func (s *Store) Change() *SchemaChange {
	return &SchemaChange{
		store:  s,
		schema: s.schema.Clone(),
	}
}

func (c *SchemaChange) Prepend(names ...string) *SchemaChange {
	if c.err == nil {
		c.schema = c.schema.Prepend(names...)
	}
	return c
}

func (c *SchemaChange) Append(names ...string) *SchemaChange {
	if c.err == nil {
		c.schema = c.schema.Append(names...)
	}
	return c
}

func (c *SchemaChange) InsertAfter(target string, names ...string) *SchemaChange {
	return c.apply(func(s Schema) (Schema, error) {
		return s.InsertAfter(target, names...)
	})
}

func (c *SchemaChange) Rename(old, to string) *SchemaChange {
	return c.apply(func(s Schema) (Schema, error) {
		return s.Rename(old, to)
	})
}

func (c *SchemaChange) apply(fn func(Schema) (Schema, error)) *SchemaChange {
	if c.err != nil {
		return c
	}
	schema, err := fn(c.schema)
	if err != nil {
		c.err = err
		return c
	}
	c.schema = schema
	return c
}

// Schema returns the pending schema
func (c *SchemaChange) Schema() Schema {
	return c.schema.Clone()
}

func (c *SchemaChange) Err() error {
	return c.err
}

// Commit updates the header of the file and then the schema of the store.
// If the file doesn't exist only the store is updated.
// On error neither the file nor the store change.
func (c *SchemaChange) Commit() error {
	if c.err != nil {
		return c.err
	}
	s := c.store
	state, err := SyncHeader(s.path, c.schema)
	if err != nil {
		return err
	}
	s.schema = c.schema.Clone()
	log.Verbosef("excelcsv: schema of '%s' (%s) is now: %s\n", s.path, state, s.schema)
	if state == Present {
		log.Event("excelcsv.header", "path", s.path, "fields", s.schema.String())
	}
	return nil
}
