package excelcsv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"
)

const bomStr = "\xEF\xBB\xBF"

func writeFile(t *testing.T, path string, s string) {
	err := os.WriteFile(path, []byte(s), 0644)
	assert.NoError(t, err)
}

func readFile(t *testing.T, path string) string {
	d, err := os.ReadFile(path)
	assert.NoError(t, err)
	return string(d)
}

func testPath(t *testing.T, name string) string {
	return filepath.Join(t.TempDir(), name)
}

// fieldsAndValues flattens records to comparable [][]string, each
// row being field, value, field, value...
func fieldsAndValues(records []*Record) [][]string {
	var res [][]string
	for _, r := range records {
		var row []string
		for _, f := range r.Fields() {
			row = append(row, f, r.Value(f))
		}
		res = append(res, row)
	}
	return res
}

func assertRecords(t *testing.T, exp []*Record, got []*Record) {
	t.Helper()
	assert.Equal(t, fieldsAndValues(exp), fieldsAndValues(got))
}

func peopleRecords() []*Record {
	return []*Record{
		NewRecord("name", "Ann", "age", "31", "pet", "Cat, Dog"),
		NewRecord("name", "Bob", "age", "", "pet", "No data"),
		NewRecord("name", "Zoë \"Z\"", "age", "27", "pet", ""),
	}
}

var errSimulated = errors.New("simulated write failure")

// failingWriter fails once more than left bytes were written
type failingWriter struct {
	atomicWriter
	left int
}

func (w *failingWriter) Write(d []byte) (int, error) {
	if len(d) > w.left {
		return 0, errSimulated
	}
	w.left -= len(d)
	return w.atomicWriter.Write(d)
}

// failWritesAfter makes file rewrites fail after n bytes
func failWritesAfter(t *testing.T, n int) {
	orig := openAtomic
	openAtomic = func(path string) (atomicWriter, error) {
		f, err := orig(path)
		if err != nil {
			return nil, err
		}
		return &failingWriter{atomicWriter: f, left: n}, nil
	}
	t.Cleanup(func() {
		openAtomic = orig
	})
}

func assertOnlyFile(t *testing.T, path string) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(path))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}
