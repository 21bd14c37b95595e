package output

import (
	"bufio"
	"encoding/json"
	"time"

	"github.com/sadopc/treezy/internal/model"
)

type jsonEntry struct {
	Path      string  `json:"path"`
	Ino       uint64  `json:"ino"`
	DType     *uint8  `json:"dtype,omitempty"`
	Type      string  `json:"type,omitempty"`
	Mode      string  `json:"mode,omitempty"`
	Size      *int64  `json:"size,omitempty"`
	Nlink     uint64  `json:"nlink,omitempty"`
	Mtime     string  `json:"mtime,omitempty"`
	UID       *uint32 `json:"uid,omitempty"`
	GID       *uint32 `json:"gid,omitempty"`
	StatError bool    `json:"stat_error,omitempty"`
}

type jsonSummary struct {
	Summary model.Counts `json:"summary"`
}

// jsonWriter emits one JSON object per line. Entries carry the full status
// result when the stat succeeded; the summary is a final {"summary": {...}}.
type jsonWriter struct {
	ew   *errWriter
	bw   *bufio.Writer
	opts Options
}

func (j *jsonWriter) WriteEntry(e model.Entry) {
	rec := jsonEntry{Path: e.Path, Ino: e.Ino}
	if j.opts.ShowHint {
		h := uint8(e.Hint)
		rec.DType = &h
	}
	if e.Degraded() {
		rec.StatError = true
	} else {
		st := e.Stat
		rec.Type = e.Type.Tag()
		rec.Mode = st.Mode.String()
		size := st.Size
		rec.Size = &size
		rec.Nlink = st.Nlink
		if !st.Mtime.IsZero() {
			rec.Mtime = st.Mtime.UTC().Format(time.RFC3339)
		}
		if st.HasOwner {
			uid, gid := st.UID, st.GID
			rec.UID, rec.GID = &uid, &gid
		}
	}
	j.writeLine(rec)
}

func (j *jsonWriter) WriteSummary(c model.Counts) {
	j.writeLine(jsonSummary{Summary: c})
}

func (j *jsonWriter) writeLine(v any) {
	if j.ew.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		j.ew.err = err
		return
	}
	_, _ = j.ew.Write(data)
	j.ew.WriteString("\n")
}

func (j *jsonWriter) Flush() error {
	return flush(j.ew, j.bw)
}
