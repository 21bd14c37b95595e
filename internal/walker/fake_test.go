package walker

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/sadopc/treezy/internal/model"
)

type fakeNode struct {
	mode     fs.FileMode
	ino      uint64
	hint     model.Hint
	hintSet  bool
	children []string

	errOnOpen bool
	errOnStat bool
	errOnRead bool
}

// fakeFS is an in-memory tree keyed by slash-separated path.
type fakeFS struct {
	nodes  map[string]fakeNode
	opened []string
	closed int
}

func newFakeFS(nodes map[string]fakeNode) *fakeFS {
	return &fakeFS{nodes: nodes}
}

func (f *fakeFS) Separator() byte { return '/' }

func (f *fakeFS) OpenDir(path string) (DirHandle, error) {
	f.opened = append(f.opened, path)
	node, ok := f.nodes[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	if node.errOnOpen {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrPermission}
	}
	if !node.mode.IsDir() {
		return nil, &os.PathError{Op: "open", Path: path, Err: errors.New("not a directory")}
	}

	entries := []DirEntry{{Name: ".", Hint: model.HintDir}, {Name: "..", Hint: model.HintDir}}
	for _, name := range node.children {
		child := f.nodes[joinFake(path, name)]
		hint := model.HintFromMode(child.mode)
		if child.hintSet {
			hint = child.hint
		}
		entries = append(entries, DirEntry{Name: name, Ino: child.ino, Hint: hint})
	}
	return &fakeDir{fs: f, entries: entries, failRead: node.errOnRead}, nil
}

func (f *fakeFS) Lstat(path string) (model.Status, error) {
	node, ok := f.nodes[path]
	if !ok {
		return model.Status{}, &os.PathError{Op: "lstat", Path: path, Err: os.ErrNotExist}
	}
	if node.errOnStat {
		return model.Status{}, &os.PathError{Op: "lstat", Path: path, Err: os.ErrPermission}
	}
	return model.Status{Ino: node.ino, Mode: node.mode, Nlink: 1}, nil
}

type fakeDir struct {
	fs       *fakeFS
	entries  []DirEntry
	done     bool
	failRead bool
}

// ReadBatch returns everything in one batch. With failRead set it returns
// the pseudo-entries plus the first real entry and an error.
func (d *fakeDir) ReadBatch() ([]DirEntry, error) {
	if d.done {
		return nil, io.EOF
	}
	d.done = true
	if d.failRead {
		n := min(3, len(d.entries))
		return d.entries[:n], errors.New("input/output error")
	}
	return d.entries, nil
}

func (d *fakeDir) Close() error {
	d.fs.closed++
	return nil
}

func joinFake(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

// recorder collects walker output.
type recorder struct {
	entries []model.Entry
}

func (r *recorder) WriteEntry(e model.Entry) {
	r.entries = append(r.entries, e)
}

func (r *recorder) paths() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Path
	}
	return out
}

func (r *recorder) find(path string) *model.Entry {
	for i := range r.entries {
		if r.entries[i].Path == path {
			return &r.entries[i]
		}
	}
	return nil
}
