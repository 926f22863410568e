package excelcsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// LoadSchema reads the header of a file. A missing file returns an empty
// schema, Absent and no error.
func LoadSchema(path string) (Schema, FileState, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Schema{}, Absent, nil
		}
		return nil, Absent, err
	}
	defer f.Close()
	br := bufio.NewReader(f)
	skipBOM(br)
	header, err := newCSVReader(br).Read()
	if err == io.EOF {
		return Schema{}, Present, nil
	}
	if err != nil {
		return nil, Present, fmt.Errorf("read header of '%s': %w", path, err)
	}
	return Schema(header), Present, nil
}

// headerEnd returns offset in f of the first byte after the header row
// and the header, or -1 if the file has no header.
func headerEnd(f *os.File) (int64, Schema, error) {
	br := bufio.NewReader(f)
	n := skipBOM(br)
	cr := newCSVReader(br)
	header, err := cr.Read()
	if err == io.EOF {
		return -1, nil, nil
	}
	if err != nil {
		return 0, nil, err
	}
	return int64(n) + cr.InputOffset(), Schema(header), nil
}

// SyncHeader replaces the header row of the file with schema. Data rows
// are copied byte for byte, without parsing. The new content is streamed
// to a temporary file which replaces the original only after everything
// was written, so on error the original is unchanged.
// A missing file is a no-op and returns Absent.
// schema can't have fewer fields than the current header because rows
// would then have values without a field name. That's ErrSchemaMismatch
// and the file is not changed.
func SyncHeader(path string, schema Schema) (FileState, error) {
	src, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Absent, nil
		}
		return Absent, err
	}
	// closing twice is harmless, src must be closed before the rename
	defer src.Close()

	dataStart, header, err := headerEnd(src)
	if err != nil {
		return Present, fmt.Errorf("read header of '%s': %w", path, err)
	}
	if len(schema) < len(header) {
		return Present, fmt.Errorf("sync header of '%s' to '%s': %w: file has %d fields", path, schema, ErrSchemaMismatch, len(header))
	}

	dst, err := openAtomic(path)
	if err != nil {
		return Present, err
	}
	defer dst.Abort()

	if err = encodeHeader(dst, schema); err != nil {
		return Present, err
	}
	if dataStart >= 0 {
		if _, err = src.Seek(dataStart, io.SeekStart); err != nil {
			return Present, err
		}
		if _, err = io.Copy(dst, src); err != nil {
			return Present, fmt.Errorf("copy rows of '%s': %w", path, err)
		}
	}
	if err = src.Close(); err != nil {
		return Present, err
	}
	return Present, dst.Close()
}
