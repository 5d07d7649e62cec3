package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"
)

// History appends call results to a JSONL file. Appends take a file
// lock so concurrent invocations interleave whole lines.
type History struct {
	path string
}

// NewHistory returns a History writing to path. An empty path yields a
// nil History, and Append on a nil History is a no-op.
func NewHistory(path string) *History {
	if path == "" {
		return nil
	}
	return &History{path: path}
}

// NewID returns a lexicographically sortable result ID.
func NewID() string {
	return ulid.Make().String()
}

// Append writes one result as a JSON line.
func (h *History) Append(res Result) error {
	if h == nil {
		return nil
	}
	if res.ID == "" {
		res.ID = NewID()
	}
	if res.Timestamp.IsZero() {
		res.Timestamp = time.Now().UTC()
	}
	res.ElapsedMs = float64(res.Duration) / float64(time.Millisecond)

	line, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	lock := flock.New(h.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("history lock: %w", err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}

// Load reads every result currently in the history file. Missing files
// read as empty.
func (h *History) Load() ([]Result, error) {
	if h == nil {
		return nil, nil
	}
	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("history: %w", err)
	}

	var results []Result
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var res Result
		if err := dec.Decode(&res); err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		results = append(results, res)
	}
	return results, nil
}
