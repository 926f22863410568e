package excelcsv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kjk/excelcsv/atomicfile"
)

// utf-8 byte order marker. Excel 2007+ needs it to detect utf-8
var bom = []byte{0xEF, 0xBB, 0xBF}

// atomicWriter is implemented by *atomicfile.File
type atomicWriter interface {
	io.Writer
	Close() error
	Abort()
}

// replaced in tests to simulate write failures
var openAtomic = func(path string) (atomicWriter, error) {
	return atomicfile.New(path)
}

// skipBOM advances br past a byte order marker, if there is one.
// Returns number of bytes skipped.
func skipBOM(br *bufio.Reader) int {
	d, err := br.Peek(len(bom))
	if err == nil && bytes.Equal(d, bom) {
		_, _ = br.Discard(len(bom))
		return len(bom)
	}
	return 0
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	// rows shorter than the header are allowed, see DecodeReader
	cr.FieldsPerRecord = -1
	return cr
}

func newCSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return cw
}

// writeRow writes a single row. csv.Writer writes a lone empty field as
// an empty line, which readers skip, so it's written as "" instead.
func writeRow(cw *csv.Writer, w io.Writer, row []string) error {
	if len(row) == 1 && row[0] == "" {
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\"\"\r\n")
		return err
	}
	return cw.Write(row)
}

// DecodeReader reads the header and all rows. Rows shorter than the header
// get empty values for the missing fields. A row longer than the header
// is an error because its extra values have no field name.
func DecodeReader(r io.Reader) (Schema, []*Record, error) {
	br := bufio.NewReader(r)
	skipBOM(br)
	cr := newCSVReader(br)
	header, err := cr.Read()
	if err == io.EOF {
		return Schema{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	schema := Schema(header)
	var records []*Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(row) > len(schema) {
			line, _ := cr.FieldPos(0)
			return nil, nil, fmt.Errorf("line %d: %w: row has %d fields, header has %d", line, ErrSchemaMismatch, len(row), len(schema))
		}
		rec := &Record{
			fields: make([]string, 0, len(schema)),
			values: make(map[string]string, len(schema)),
		}
		for i, f := range schema {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			rec.Set(f, v)
		}
		records = append(records, rec)
	}
	return schema, records, nil
}

// Decode reads all records from a file. A missing file returns no
// records, Absent and no error.
func Decode(path string) ([]*Record, FileState, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Absent, nil
		}
		return nil, Absent, err
	}
	defer f.Close()
	_, records, err := DecodeReader(f)
	if err != nil {
		return nil, Present, fmt.Errorf("decode '%s': %w", path, err)
	}
	return records, Present, nil
}

// validateRecords checks that every record has exactly the fields of schema
func validateRecords(schema Schema, records []*Record) error {
	known := make(map[string]bool, len(schema))
	for _, f := range schema {
		known[f] = true
	}
	for i, r := range records {
		for _, f := range schema {
			if !r.Has(f) {
				return fmt.Errorf("record %d: %w '%s'", i, ErrMissingField, f)
			}
		}
		for _, f := range r.fields {
			if !known[f] {
				return fmt.Errorf("record %d: %w '%s'", i, ErrExtraField, f)
			}
		}
	}
	return nil
}

func encodeRows(w io.Writer, schema Schema, records []*Record) error {
	cw := newCSVWriter(w)
	for _, r := range records {
		row, err := r.Values(schema)
		if err != nil {
			return err
		}
		if err = writeRow(cw, w, row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeHeader(w io.Writer, schema Schema) error {
	if _, err := w.Write(bom); err != nil {
		return err
	}
	cw := newCSVWriter(w)
	if err := writeRow(cw, w, schema); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// EncodeWriter writes byte order marker, header and records, each
// projected through schema
func EncodeWriter(w io.Writer, schema Schema, records []*Record) error {
	if err := validateRecords(schema, records); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := encodeHeader(bw, schema); err != nil {
		return err
	}
	if err := encodeRows(bw, schema, records); err != nil {
		return err
	}
	return bw.Flush()
}

// Encode replaces path with header and records. Records must have exactly
// the fields of schema, otherwise nothing is written and the error wraps
// ErrSchemaMismatch.
func Encode(path string, schema Schema, records []*Record) error {
	if err := validateRecords(schema, records); err != nil {
		return err
	}
	f, err := openAtomic(path)
	if err != nil {
		return err
	}
	defer f.Abort()
	if err = EncodeWriter(f, schema, records); err != nil {
		return fmt.Errorf("encode '%s': %w", path, err)
	}
	return f.Close()
}

// endsWithNewline returns true if the file is empty or its last byte is '\n'
func endsWithNewline(f *os.File) (bool, error) {
	st, err := f.Stat()
	if err != nil {
		return false, err
	}
	if st.Size() == 0 {
		return true, nil
	}
	var last [1]byte
	if _, err = f.ReadAt(last[:], st.Size()-1); err != nil {
		return false, err
	}
	return last[0] == '\n', nil
}

// EncodeAppend appends records to path without touching the header.
// It doesn't check that schema matches the header of the file, reading
// it on every append would be too expensive.
// If the file doesn't exist, it's created with a header.
func EncodeAppend(path string, schema Schema, records []*Record) error {
	if err := validateRecords(schema, records); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND, 0)
	if errors.Is(err, os.ErrNotExist) {
		return Encode(path, schema, records)
	}
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	hasNewline, err := endsWithNewline(f)
	if err != nil {
		f.Close()
		return err
	}
	if !hasNewline {
		buf.WriteString("\r\n")
	}
	if err = encodeRows(&buf, schema, records); err != nil {
		f.Close()
		return err
	}
	// a single write so that a failure doesn't leave a partial row
	if _, err = f.Write(buf.Bytes()); err != nil {
		f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
