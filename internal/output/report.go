// Package output renders call results for the terminal and appends
// them to a history file.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/tidwall/gjson"
)

// Result captures the outcome of one GraphQL call.
type Result struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Endpoint  string          `json:"endpoint"`
	Duration  time.Duration   `json:"-"`
	ElapsedMs float64         `json:"elapsed_ms"`
	Data      json.RawMessage `json:"data,omitempty"`
	Errors    []string        `json:"errors,omitempty"`
	Failure   string          `json:"failure,omitempty"`
}

// Options controls how a result is rendered.
type Options struct {
	JSON    bool
	Extract string
}

// Render writes a result to w. With Extract set, the gjson path is
// applied to the response data; with JSON set, the whole result is
// emitted as a JSON document; otherwise the data is pretty-printed.
func Render(w io.Writer, res Result, opts Options) error {
	if opts.JSON {
		res.ElapsedMs = float64(res.Duration) / float64(time.Millisecond)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if res.Failure != "" {
		fmt.Fprintf(w, "request failed: %s\n", res.Failure)
		return nil
	}

	if opts.Extract != "" {
		value := gjson.GetBytes(res.Data, opts.Extract)
		if !value.Exists() {
			return fmt.Errorf("extract path %q matched nothing", opts.Extract)
		}
		fmt.Fprintln(w, value.String())
	} else if len(res.Data) > 0 {
		var pretty json.RawMessage = res.Data
		if indented, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			fmt.Fprintln(w, string(indented))
		} else {
			fmt.Fprintln(w, string(res.Data))
		}
	}

	for _, msg := range res.Errors {
		fmt.Fprintf(w, "error: %s\n", msg)
	}
	return nil
}
