package log

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// journal appends to ${dir}/${YYYY-MM-DD}.txt, switching to a new file
// when the day (UTC) changes. A nil *journal discards writes.
type journal struct {
	dir string
	day string
	f   *os.File
	mu  sync.Mutex
}

func newJournal(dir string) *journal {
	return &journal{dir: dir}
}

// fileForDay must be called with mu held
func (j *journal) fileForDay(day string) (*os.File, error) {
	if j.f != nil && j.day == day {
		return j.f, nil
	}
	if j.f != nil {
		_ = j.f.Close()
		j.f = nil
	}
	if err := os.MkdirAll(j.dir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(j.dir, day+".txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	j.f = f
	j.day = day
	return f, nil
}

// Write appends d with a single write so that concurrent
// processes don't interleave partial entries
func (j *journal) Write(d []byte) (int, error) {
	if j == nil {
		return len(d), nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := j.fileForDay(time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	return f.Write(d)
}

func (j *journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return nil
	}
	err := j.f.Sync()
	if err2 := j.f.Close(); err == nil {
		err = err2
	}
	j.f = nil
	return err
}
