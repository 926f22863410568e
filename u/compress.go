package u

import (
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"

	"github.com/kjk/excelcsv/atomicfile"
)

// Compression names a compression format, derived from file extension
type Compression string

const (
	CompressionNone   Compression = ""
	CompressionGzip   Compression = "gzip"
	CompressionBzip2  Compression = "bzip2"
	CompressionZstd   Compression = "zstd"
	CompressionBrotli Compression = "brotli"
)

// CompressionFromPath returns compression implied by the file extension
// TODO: could sniff file content instead of checking file extension
func CompressionFromPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return CompressionGzip
	case ".bz2":
		return CompressionBzip2
	case ".zst", ".zstd":
		return CompressionZstd
	case ".br":
		return CompressionBrotli
	}
	return CompressionNone
}

// implement io.ReadCloser over os.File wrapped with io.Reader.
// io.Closer goes to os.File, io.Reader goes to wrapping reader
type readerWrappedFile struct {
	f       *os.File
	r       io.Reader
	closeFn func()
}

func (rc *readerWrappedFile) Close() error {
	if rc.closeFn != nil {
		rc.closeFn()
	}
	return rc.f.Close()
}

func (rc *readerWrappedFile) Read(p []byte) (int, error) {
	return rc.r.Read(p)
}

// OpenFileMaybeCompressed opens a file that might be compressed with gzip,
// bzip2, zstd or brotli. Returned reader yields uncompressed data.
func OpenFileMaybeCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc := &readerWrappedFile{f: f}
	switch CompressionFromPath(path) {
	case CompressionGzip:
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		rc.r = r
	case CompressionBzip2:
		rc.r = bzip2.NewReader(f)
	case CompressionZstd:
		r, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		rc.r = r
		rc.closeFn = r.Close
	case CompressionBrotli:
		rc.r = brotli.NewReader(f)
	default:
		return f, nil
	}
	return rc, nil
}

// CompressedFile is an atomically written file whose content is compressed
// according to the extension of its path.
// Close() finishes compression and moves the file in place.
type CompressedFile struct {
	f *atomicfile.File
	// nil when not compressing
	cw io.WriteCloser
	w  io.Writer
}

// CreateFileMaybeCompressed creates path atomically. Data written
// is compressed with gzip, zstd or brotli, based on the extension.
// bzip2 is read-only in the standard library so it's not supported.
func CreateFileMaybeCompressed(path string) (*CompressedFile, error) {
	f, err := atomicfile.New(path)
	if err != nil {
		return nil, err
	}
	res := &CompressedFile{f: f, w: f}
	switch CompressionFromPath(path) {
	case CompressionGzip:
		res.cw, err = gzip.NewWriterLevel(f, gzip.BestCompression)
	case CompressionZstd:
		res.cw, err = zstdNewWriter(f)
	case CompressionBrotli:
		res.cw = brotli.NewWriterLevel(f, brotli.DefaultCompression)
	case CompressionBzip2:
		err = &os.PathError{Op: "create", Path: path, Err: os.ErrInvalid}
	}
	if err != nil {
		f.Abort()
		return nil, err
	}
	if res.cw != nil {
		res.w = res.cw
	}
	return res, nil
}

func (c *CompressedFile) Write(d []byte) (int, error) {
	return c.w.Write(d)
}

// Abort removes the temporary file, the destination is not touched
func (c *CompressedFile) Abort() {
	c.f.Abort()
}

// Close flushes the compressor and replaces the destination
func (c *CompressedFile) Close() error {
	var err error
	if c.cw != nil {
		err = c.cw.Close()
		c.cw = nil
	}
	if err != nil {
		c.f.Abort()
		return err
	}
	return c.f.Close()
}

func getErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func zstdNewWriter(dst io.Writer) (*zstd.Encoder, error) {
	// in my tests:
	// - zstd.SpeedBestCompression is much slower and not much better
	// - default concurrency is GONUMPROCS() but adding concurrency of any value
	//   doesn't consistently speed things up
	return zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

// CopyFileMaybeCompressed copies src to dst, compressing based on
// dst extension. dst is replaced atomically.
func CopyFileMaybeCompressed(dst string, src string) error {
	fSrc, err := os.Open(src)
	if err != nil {
		return err
	}
	defer fSrc.Close()
	fDst, err := CreateFileMaybeCompressed(dst)
	if err != nil {
		return err
	}
	_, err = io.Copy(fDst, fSrc)
	if err != nil {
		fDst.Abort()
		return err
	}
	return getErr(fDst.Close(), fSrc.Close())
}
