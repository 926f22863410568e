package atomicfile

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Some references:
// - https://www.slideshare.net/nan1nan1/eat-my-data
// - https://lwn.net/Articles/457667/

var (
	// ErrAborted is returned by calls subsequent to Abort()
	ErrAborted = errors.New("aborted")

	_ io.WriteCloser = &File{}
)

// default permissions for files that don't exist yet
const defaultPerm fs.FileMode = 0644

// File is written to a temporary file in the same directory as
// the destination. Close() renames it over the destination only
// if every write succeeded. Otherwise the temporary file is removed
// and the destination is left as it was.
type File struct {
	dstPath string
	dir     string
	tmpFile *os.File
	tmpPath string
	err     error
}

// New creates a temporary file for path. If path already exists,
// the temporary file gets the same permission bits so that replacing
// the file doesn't change its mode.
func New(path string) (*File, error) {
	dir, fName := filepath.Split(path)
	if fName == "" {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	perm := defaultPerm
	if st, err := os.Stat(path); err == nil {
		perm = st.Mode().Perm()
	}

	tmpFile, err := os.CreateTemp(dir, fName+".tmp-*")
	if err != nil {
		return nil, err
	}
	if err = tmpFile.Chmod(perm); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return nil, err
	}

	return &File{
		dstPath: path,
		dir:     dir,
		tmpFile: tmpFile,
		tmpPath: tmpFile.Name(),
	}, nil
}

// TempPath returns path of the temporary file
func (f *File) TempPath() string {
	return f.tmpPath
}

// Path returns the destination path
func (f *File) Path() string {
	return f.dstPath
}

func (f *File) handleError(err error) error {
	if err == nil {
		return nil
	}
	// remember the first error
	if f.err == nil {
		f.err = err
	}
	// deletes the temporary file
	_ = f.Close()
	return err
}

// Write writes data to the temporary file
func (f *File) Write(d []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.closed() {
		return 0, os.ErrClosed
	}
	n, err := f.tmpFile.Write(d)
	return n, f.handleError(err)
}

// WriteString writes s to the temporary file
func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// ReadFrom copies r into the temporary file. It allows io.Copy
// to skip an intermediate buffer.
func (f *File) ReadFrom(r io.Reader) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.closed() {
		return 0, os.ErrClosed
	}
	n, err := f.tmpFile.ReadFrom(r)
	return n, f.handleError(err)
}

func (f *File) closed() bool {
	return f.tmpFile == nil
}

// Abort removes the temporary file without touching the destination.
// Meant to be deferred right after New() so that an early return
// or a panic doesn't leave a half-written file behind.
// Abort after a successful Close is a no-op.
func (f *File) Abort() {
	if f == nil || f.closed() {
		return
	}
	f.err = ErrAborted
	_ = f.Close()
}

// Close finishes writing and replaces the destination.
// Can be called multiple times, returns the first error.
func (f *File) Close() error {
	if f.closed() {
		return f.err
	}
	tmpFile := f.tmpFile
	f.tmpFile = nil

	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	errSync := tmpFile.Sync()
	errClose := tmpFile.Close()

	didRename := false
	defer func() {
		if !didRename {
			_ = os.Remove(f.tmpPath)
		}
	}()

	if f.err != nil {
		return f.err
	}

	err := errSync
	if err == nil {
		err = errClose
	}
	if err == nil {
		// over-writes dstPath if it exists
		err = os.Rename(f.tmpPath, f.dstPath)
		didRename = (err == nil)
		// sync the directory so that the rename survives a crash
		fdir, _ := os.Open(f.dir)
		if fdir != nil {
			_ = fdir.Sync()
			_ = fdir.Close()
		}
	}

	f.err = err
	return err
}
