package excelcsv

import (
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"
)

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFromRecords(filepath.Join(dir, "people.csv"), peopleRecords())
	assert.NoError(t, err)

	for _, name := range []string{"snap.csv", "snap.csv.gz", "snap.csv.zst", "snap.csv.br"} {
		dst := filepath.Join(dir, name)
		err = s.Snapshot(dst)
		assert.NoError(t, err, name)
		schema, records, err := ReadSnapshot(dst)
		assert.NoError(t, err, name)
		assert.Equal(t, s.Schema(), schema)
		assertRecords(t, peopleRecords(), records)
	}
	assert.Equal(t, readFile(t, s.Path()), readFile(t, filepath.Join(dir, "snap.csv")))
}

func TestSnapshotMissingFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewWithSchema(filepath.Join(dir, "missing.csv"), Schema{"a", "b"})
	assert.NoError(t, err)
	dst := filepath.Join(dir, "snap.csv.zst")
	err = s.Snapshot(dst)
	assert.NoError(t, err)
	schema, records, err := ReadSnapshot(dst)
	assert.NoError(t, err)
	assert.Equal(t, Schema{"a", "b"}, schema)
	assert.Equal(t, 0, len(records))

	_, _, err = ReadSnapshot(filepath.Join(dir, "nope.csv"))
	assert.Error(t, err)
}
