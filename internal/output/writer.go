// Package output renders walk results: one record per visited entry and a
// final summary, as plain text lines or JSON lines.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sadopc/treezy/internal/model"
)

// Format selects the record encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q: must be one of text, json", s)
	}
}

// Options tunes the rendering.
type Options struct {
	// ShowHint adds the raw listing hint (dtype) to every record.
	ShowHint bool
	// Color styles the type tag. Text format only.
	Color bool
}

// Writer receives entries during the walk and the summary after it.
// Write errors are sticky: after the first failure further writes are
// dropped and Flush reports the error.
type Writer interface {
	WriteEntry(model.Entry)
	WriteSummary(model.Counts)
	Flush() error
}

// New returns a Writer for format writing to out.
func New(format Format, out io.Writer, opts Options) (Writer, error) {
	bw := bufio.NewWriterSize(out, 64*1024)
	ew := &errWriter{w: bw}
	switch format {
	case FormatText, "":
		return &textWriter{ew: ew, bw: bw, opts: opts, style: newStyles(out, opts.Color)}, nil
	case FormatJSON:
		return &jsonWriter{ew: ew, bw: bw, opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) WriteString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) Write(data []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(data)
	if err != nil {
		ew.err = err
	}
	return n, err
}

func flush(ew *errWriter, bw *bufio.Writer) error {
	if ew.err != nil {
		return fmt.Errorf("writing output: %w", ew.err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
