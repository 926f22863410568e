// Package log prints progress of store operations and keeps journals
// of what happened in a log directory:
//
//	${dir}/log/     messages from Logf and Verbosef
//	${dir}/errors/  messages from Errorf, with the caller's stack
//	${dir}/events/  file changes recorded with Event, see ReadEvents
//
// Until Init is called only Out gets messages and events are dropped,
// so the store can be used as a library without any setup.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/kjk/excelcsv/siser"
)

var (
	logJournal    *journal
	errorsJournal *journal
	eventsJournal *journal
	events        *siser.Writer

	// if true, Verbosef() prints messages
	Verbose bool

	// Out is where messages are printed, a CLI sets it to os.Stderr
	Out io.Writer = os.Stdout
)

type Config struct {
	// log directory, journals go into its log, errors and events
	// subdirectories
	Dir string
}

// Init starts writing journals to config.Dir
func Init(config *Config) {
	Close()
	dir := config.Dir
	logJournal = newJournal(filepath.Join(dir, "log"))
	errorsJournal = newJournal(filepath.Join(dir, "errors"))
	eventsJournal = newJournal(filepath.Join(dir, "events"))
	events = siser.NewWriter(eventsJournal)
}

// Close flushes and closes journals. Logging after Close only
// prints to Out.
func Close() {
	_ = logJournal.Close()
	_ = errorsJournal.Close()
	_ = eventsJournal.Close()
	logJournal, errorsJournal, eventsJournal = nil, nil, nil
	events = nil
}

func timestamped(s string) []byte {
	return []byte(time.Now().UTC().Format("15:04:05.000 ") + s)
}

// Logf prints a message. The log journal gets it with a timestamp.
func Logf(format string, args ...any) {
	s := format
	if len(args) > 0 {
		s = fmt.Sprintf(format, args...)
	}
	fmt.Fprint(Out, s)
	_, _ = logJournal.Write(timestamped(s))
}

// Verbosef is Logf that only prints if Verbose is set
func Verbosef(format string, args ...any) {
	if Verbose {
		Logf(format, args...)
	}
}

// callers returns "file:line" of callers, skipping skip frames
// and stopping at the runtime
func callers(skip int) []string {
	var pcs [32]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	var res []string
	for {
		frame, more := frames.Next()
		if strings.HasPrefix(frame.Function, "runtime.") {
			break
		}
		res = append(res, fmt.Sprintf("%s:%d", frame.File, frame.Line))
		if !more {
			break
		}
	}
	return res
}

// Errorf logs an error. The errors journal also gets the call stack
// of the caller.
func Errorf(format string, args ...any) {
	s := format
	if len(args) > 0 {
		s = fmt.Sprintf(format, args...)
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	Logf("%s", s)
	stack := strings.Join(callers(1), "\n")
	_, _ = errorsJournal.Write(timestamped(s + stack + "\n"))
}
