package siser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Reader reads blocks written by Writer or MarshalLine
type Reader struct {
	r *bufio.Reader

	// hints that the data was written without a timestamp.
	// We're permissive i.e. we'll read timestamp if it's there.
	NoTimestamp bool

	// Data / Name / Timestamp are available after ReadNext.
	// They are over-written in next ReadNext.
	Data      []byte
	Name      string
	Timestamp time.Time

	err  error
	done bool
}

// NewReader creates a new reader
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br}
}

// Done returns true if we're finished reading
func (r *Reader) Done() bool {
	return r.err != nil || r.done
}

// Err returns a read error. io.EOF is not an error.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) badHeader(hdr []byte) bool {
	r.err = fmt.Errorf("unexpected header '%s'", string(bytes.TrimSpace(hdr)))
	return false
}

// ReadNext reads the next block. Returns false when there are no
// more blocks, check Err() to see if it was an error.
func (r *Reader) ReadNext() bool {
	if r.Done() {
		return false
	}
	r.Name = ""
	r.Timestamp = time.Time{}

	hdr, err := r.r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(hdr) == 0 {
			r.done = true
		} else if err == io.EOF {
			r.err = io.ErrUnexpectedEOF
		} else {
			r.err = err
		}
		return false
	}
	if !bytes.HasPrefix(hdr, hdrPrefix) {
		return r.badHeader(hdr)
	}
	parts := bytes.SplitN(hdr[len(hdrPrefix):len(hdr)-1], []byte{' '}, 3)

	size, err := strconv.Atoi(string(parts[0]))
	if err != nil || size < 0 {
		return r.badHeader(hdr)
	}
	parts = parts[1:]
	if len(parts) > 0 {
		// a timestamp is all digits, anything else is a name
		if ms, err := strconv.ParseInt(string(parts[0]), 10, 64); err == nil && (!r.NoTimestamp || len(parts) == 2) {
			r.Timestamp = TimeFromUnixMillisecond(ms)
			parts = parts[1:]
		}
	}
	if len(parts) > 0 {
		r.Name = string(bytes.Join(parts, []byte{' '}))
	}

	// re-use r.Data as long as it doesn't grow beyond 1 MB
	if cap(r.Data) > 1024*1024 || size > cap(r.Data) {
		r.Data = make([]byte, size)
	} else {
		r.Data = r.Data[:size]
	}
	if _, err = io.ReadFull(r.r, r.Data); err != nil {
		r.err = err
		return false
	}
	// skip the newline added for readability
	if size > 0 && r.Data[size-1] != '\n' {
		if _, err = r.r.Discard(1); err != nil {
			r.err = err
			return false
		}
	}
	return true
}
