package output

import (
	"bufio"
	"strconv"

	"github.com/sadopc/treezy/internal/model"
)

// textWriter renders
//
//	<path>:ino=<n>[:dtype=<hint>][:type=<f|d|l>]
//
// one line per entry, and the summary as a blank line followed by
// "files N, dirs N, symlinks N, errors N".
type textWriter struct {
	ew    *errWriter
	bw    *bufio.Writer
	opts  Options
	style styles
	line  []byte
}

func (t *textWriter) WriteEntry(e model.Entry) {
	b := t.line[:0]
	b = append(b, e.Path...)
	b = append(b, ":ino="...)
	b = strconv.AppendUint(b, e.Ino, 10)
	if t.opts.ShowHint {
		b = append(b, ":dtype="...)
		b = strconv.AppendUint(b, uint64(e.Hint), 10)
	}
	if tag := e.Type.Tag(); tag != "" && !e.Degraded() {
		b = append(b, ":type="...)
		b = append(b, t.style.tag(e.Type)...)
	}
	b = append(b, '\n')
	t.line = b
	_, _ = t.ew.Write(b)
}

func (t *textWriter) WriteSummary(c model.Counts) {
	t.ew.WriteString("\n")
	t.ew.WriteString(c.String())
	t.ew.WriteString("\n")
}

func (t *textWriter) Flush() error {
	return flush(t.ew, t.bw)
}
