package excelcsv

import (
	"errors"
	"fmt"
	"os"

	"github.com/kjk/excelcsv/log"
	"github.com/kjk/excelcsv/u"
)

// Snapshot copies the store file to dst, compressed according to dst
// extension (.gz, .zst, .br or none). If the store file doesn't exist,
// the snapshot only has the header.
func (s *Store) Snapshot(dst string) error {
	err := u.CopyFileMaybeCompressed(dst, s.path)
	if errors.Is(err, os.ErrNotExist) && !u.FileExists(s.path) {
		err = s.writeEmptySnapshot(dst)
	}
	if err != nil {
		return fmt.Errorf("snapshot of '%s' to '%s': %w", s.path, dst, err)
	}
	log.Event("excelcsv.snapshot", "path", s.path, "dst", dst, "size", u.FileSize(dst))
	return nil
}

func (s *Store) writeEmptySnapshot(dst string) error {
	f, err := u.CreateFileMaybeCompressed(dst)
	if err != nil {
		return err
	}
	if err = EncodeWriter(f, s.schema, nil); err != nil {
		f.Abort()
		return err
	}
	return f.Close()
}

// ReadSnapshot reads schema and records of a file written by Snapshot
func ReadSnapshot(path string) (Schema, []*Record, error) {
	r, err := u.OpenFileMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	defer u.CloseNoError(r)
	return DecodeReader(r)
}
