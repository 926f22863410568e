package log

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/toon-format/toon-go"

	"github.com/kjk/excelcsv/siser"
)

func panicIf(cond bool, msg string) {
	if cond {
		panic(msg)
	}
}

// simpleTypeToStr converts simple types to string
// panics if v is of complex type
func simpleTypeToStr(v any) string {
	rt := reflect.TypeOf(v)
	kind := rt.Kind()
	switch kind {
	case reflect.Array, reflect.Slice, reflect.Struct, reflect.Map, reflect.Chan, reflect.Interface, reflect.Pointer:
		panic(fmt.Sprintf("toStr: value is of kind %v", kind))
	case reflect.String:
		return v.(string)
	}
	return fmt.Sprintf("%v", v)
}

// MarshalEvent encodes key/value pairs in toon format
func MarshalEvent(vals ...any) ([]byte, error) {
	n := len(vals)
	panicIf(n%2 != 0, "odd number of key/value arguments")
	if n == 0 {
		return nil, nil
	}
	m := map[string]any{}
	for i := 0; i < n; i += 2 {
		k := simpleTypeToStr(vals[i])
		m[k] = vals[i+1]
	}
	return toon.Marshal(m)
}

// Event records a named event with key/value pairs in the events journal.
// It's a no-op if Init() wasn't called.
func Event(name string, vals ...any) {
	if events == nil {
		return
	}
	d, err := MarshalEvent(vals...)
	if err != nil {
		Errorf("log.Event('%s'): %s", name, err)
		return
	}
	if _, err = events.Write(d, time.Now().UTC(), name); err != nil {
		Errorf("log.Event('%s'): %s", name, err)
	}
}

// EventWithDuration is Event with "durms" set to how long the
// operation took
func EventWithDuration(name string, dur time.Duration, vals ...any) {
	vals = append(vals, "durms", dur.Milliseconds())
	Event(name, vals...)
}

// EventRecord is an event read back from the events log
type EventRecord struct {
	Name      string
	Timestamp time.Time
	// toon-encoded key/value pairs
	Data string
}

// ReadEvents reads all events logged in dir (the directory given
// to Init()), oldest first
func ReadEvents(dir string) ([]*EventRecord, error) {
	pattern := filepath.Join(dir, "events", "*.txt")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	// file names are YYYY-MM-DD.txt so they sort by date
	sort.Strings(paths)
	var res []*EventRecord
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		r := siser.NewReader(f)
		for r.ReadNext() {
			res = append(res, &EventRecord{
				Name:      r.Name,
				Timestamp: r.Timestamp,
				Data:      strings.TrimSuffix(string(r.Data), "\n"),
			})
		}
		f.Close()
		if err = r.Err(); err != nil {
			return nil, fmt.Errorf("reading events from '%s': %w", path, err)
		}
	}
	return res, nil
}
