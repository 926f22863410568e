package excelcsv

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/alecthomas/assert"
)

func TestEncodeFormat(t *testing.T) {
	path := testPath(t, "people.csv")
	records := []*Record{
		NewRecord("name", "Ann", "age", "31"),
		NewRecord("name", "Smith, John", "age", ""),
	}
	err := Encode(path, Schema{"name", "age"}, records)
	assert.NoError(t, err)
	exp := bomStr + "name,age\r\nAnn,31\r\n\"Smith, John\",\r\n"
	assert.Equal(t, exp, readFile(t, path))
}

func TestEncodeProjectsThroughSchema(t *testing.T) {
	path := testPath(t, "a.csv")
	// record field order doesn't matter, schema order does
	err := Encode(path, Schema{"a", "b"}, []*Record{NewRecord("b", "2", "a", "1")})
	assert.NoError(t, err)
	assert.Equal(t, bomStr+"a,b\r\n1,2\r\n", readFile(t, path))
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		schema  Schema
		records []*Record
	}{
		{"people", Schema{"name", "age", "pet"}, peopleRecords()},
		{"no records", Schema{"a", "b"}, nil},
		{"single empty field", Schema{"a"}, []*Record{NewRecord("a", ""), NewRecord("a", "x"), NewRecord("a", "")}},
		{"quoting", Schema{"q", "nl"}, []*Record{
			NewRecord("q", `say "hi"`, "nl", "line1\nline2"),
			NewRecord("q", `""`, "nl", " leading and trailing "),
		}},
		{"unicode", Schema{"名前", "emoji"}, []*Record{NewRecord("名前", "Zoë", "emoji", "🐈")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := testPath(t, "data.csv")
			err := Encode(path, tc.schema, tc.records)
			assert.NoError(t, err)
			schema, state, err := LoadSchema(path)
			assert.NoError(t, err)
			assert.Equal(t, Present, state)
			assert.Equal(t, tc.schema, schema)
			got, state, err := Decode(path)
			assert.NoError(t, err)
			assert.Equal(t, Present, state)
			assertRecords(t, tc.records, got)
		})
	}
}

func TestDecodeMissingFile(t *testing.T) {
	path := testPath(t, "missing.csv")
	records, state, err := Decode(path)
	assert.NoError(t, err)
	assert.Equal(t, Absent, state)
	assert.Equal(t, 0, len(records))

	schema, state, err := LoadSchema(path)
	assert.NoError(t, err)
	assert.Equal(t, Absent, state)
	assert.Equal(t, 0, len(schema))
	assert.False(t, schema == nil)
}

func TestDecodeBOMOptional(t *testing.T) {
	for _, prefix := range []string{"", bomStr} {
		path := testPath(t, "a.csv")
		writeFile(t, path, prefix+"a,b\n1,2\n")
		schema, _, err := LoadSchema(path)
		assert.NoError(t, err)
		assert.Equal(t, Schema{"a", "b"}, schema)
		records, _, err := Decode(path)
		assert.NoError(t, err)
		assertRecords(t, []*Record{NewRecord("a", "1", "b", "2")}, records)
	}
}

func TestDecodeEmptyFile(t *testing.T) {
	path := testPath(t, "empty.csv")
	writeFile(t, path, "")
	records, state, err := Decode(path)
	assert.NoError(t, err)
	assert.Equal(t, Present, state)
	assert.Equal(t, 0, len(records))
	schema, state, err := LoadSchema(path)
	assert.NoError(t, err)
	assert.Equal(t, Present, state)
	assert.Equal(t, 0, len(schema))
}

func TestDecodeShortAndLongRows(t *testing.T) {
	schema, records, err := DecodeReader(strings.NewReader("a,b,c\r\n1\r\n1,2\r\n"))
	assert.NoError(t, err)
	assert.Equal(t, Schema{"a", "b", "c"}, schema)
	exp := []*Record{
		NewRecord("a", "1", "b", "", "c", ""),
		NewRecord("a", "1", "b", "2", "c", ""),
	}
	assertRecords(t, exp, records)

	_, _, err = DecodeReader(strings.NewReader("a,b\r\n1,2\r\n1,2,3\r\n"))
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	assert.True(t, strings.Contains(err.Error(), "line 3"))
}

func TestEncodeSchemaMismatch(t *testing.T) {
	path := testPath(t, "a.csv")
	err := Encode(path, Schema{"a", "b"}, []*Record{NewRecord("a", "1")})
	assert.True(t, errors.Is(err, ErrMissingField))
	assert.False(t, fileExists(path))

	err = Encode(path, Schema{"a"}, []*Record{NewRecord("a", "1", "b", "2")})
	assert.True(t, errors.Is(err, ErrExtraField))
	assert.False(t, fileExists(path))

	// existing file is not touched
	writeFile(t, path, "a\r\n1\r\n")
	err = Encode(path, Schema{"a"}, []*Record{NewRecord("a", "1"), NewRecord("b", "2")})
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	assert.Equal(t, "a\r\n1\r\n", readFile(t, path))
}

func TestEncodeWriteFailure(t *testing.T) {
	path := testPath(t, "a.csv")
	err := Encode(path, Schema{"n"}, []*Record{NewRecord("n", "1")})
	assert.NoError(t, err)
	orig := readFile(t, path)

	failWritesAfter(t, 10)
	var records []*Record
	for i := 0; i < 1000; i++ {
		records = append(records, NewRecord("n", strings.Repeat("x", 100)))
	}
	err = Encode(path, Schema{"n"}, records)
	assert.True(t, errors.Is(err, errSimulated))
	assert.Equal(t, orig, readFile(t, path))
	assertOnlyFile(t, path)
}

func TestEncodeAppend(t *testing.T) {
	path := testPath(t, "a.csv")
	schema := Schema{"a", "b"}
	// creates the file with a header
	err := EncodeAppend(path, schema, []*Record{NewRecord("a", "1", "b", "2")})
	assert.NoError(t, err)
	err = EncodeAppend(path, schema, []*Record{NewRecord("b", "4", "a", "3")})
	assert.NoError(t, err)
	assert.Equal(t, bomStr+"a,b\r\n1,2\r\n3,4\r\n", readFile(t, path))

	err = EncodeAppend(path, schema, []*Record{NewRecord("a", "5")})
	assert.True(t, errors.Is(err, ErrMissingField))
	assert.Equal(t, bomStr+"a,b\r\n1,2\r\n3,4\r\n", readFile(t, path))
}

func TestEncodeAppendNoTrailingNewline(t *testing.T) {
	path := testPath(t, "a.csv")
	writeFile(t, path, "a,b\n1,2")
	err := EncodeAppend(path, Schema{"a", "b"}, []*Record{NewRecord("a", "3", "b", "4")})
	assert.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\r\n3,4\r\n", readFile(t, path))
	records, _, err := Decode(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(records))
}

func TestEncodeWriter(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeWriter(&buf, Schema{"a"}, []*Record{NewRecord("a", "1")})
	assert.NoError(t, err)
	assert.Equal(t, bomStr+"a\r\n1\r\n", buf.String())
	schema, records, err := DecodeReader(&buf)
	assert.NoError(t, err)
	assert.Equal(t, Schema{"a"}, schema)
	assertRecords(t, []*Record{NewRecord("a", "1")}, records)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestLoadSchemaIsDir(t *testing.T) {
	_, _, err := LoadSchema(t.TempDir())
	assert.Error(t, err)
}
