package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	pathpkg "path"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/pkg/sftp"
	"github.com/sadopc/treezy/internal/model"
	"github.com/sadopc/treezy/internal/walker"
	"golang.org/x/crypto/ssh"
)

func TestFS_WalkScenario(t *testing.T) {
	fsys := &FS{client: newFakeSFTP(map[string]fakeNode{
		"/r":           {mode: os.ModeDir | 0o755},
		"/r/a.txt":     {mode: 0o644, size: 3},
		"/r/sub":       {mode: os.ModeDir | 0o755},
		"/r/sub/b.txt": {mode: 0o644},
		"/r/link":      {mode: os.ModeSymlink | 0o777},
	})}

	var rec entryRecorder
	var diag bytes.Buffer
	opts := walker.DefaultOptions()
	opts.Diagnostics = &diag

	counts, err := walker.New(fsys, &rec, opts).Walk("/r", true)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	want := model.Counts{Files: 2, Dirs: 1, Symlinks: 1}
	if counts != want {
		t.Fatalf("expected %v, got %v", want, counts)
	}
	got := rec.lines()
	wantLines := []string{"/r/a.txt:f", "/r/link:l", "/r/sub/b.txt:f", "/r/sub:d"}
	if strings.Join(got, ",") != strings.Join(wantLines, ",") {
		t.Fatalf("expected %v, got %v", wantLines, got)
	}
	if diag.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %q", diag.String())
	}
	for _, e := range rec.entries {
		if e.Ino != 0 {
			t.Fatalf("expected ino 0 over SFTP, got %d for %s", e.Ino, e.Path)
		}
	}
}

func TestFS_UnreadableSubdirCountsOneError(t *testing.T) {
	fsys := &FS{client: newFakeSFTP(map[string]fakeNode{
		"/r":        {mode: os.ModeDir},
		"/r/locked": {mode: os.ModeDir, errOnRead: true},
		"/r/open":   {mode: os.ModeDir},
		"/r/open/x": {mode: 0},
	})}

	var rec entryRecorder
	var diag bytes.Buffer
	opts := walker.DefaultOptions()
	opts.Diagnostics = &diag

	counts, err := walker.New(fsys, &rec, opts).Walk("/r", true)
	if err != nil {
		t.Fatalf("nested failure must not escalate, got %v", err)
	}
	if counts.Errors != 1 || counts.Dirs != 2 || counts.Files != 1 {
		t.Fatalf("expected dirs 2, files 1, errors 1, got %v", counts)
	}
	if !strings.Contains(diag.String(), "error opening directory '/r/locked'") {
		t.Fatalf("expected open diagnostic, got %q", diag.String())
	}
}

func TestFS_LstatFailureDegradesEntry(t *testing.T) {
	client := newFakeSFTP(map[string]fakeNode{
		"/r":      {mode: os.ModeDir},
		"/r/gone": {mode: 0, errOnLstat: true},
	})
	fsys := &FS{client: client}

	var rec entryRecorder
	counts, err := walker.New(fsys, &rec, walker.DefaultOptions()).Walk("/r", true)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if counts.Errors != 1 || counts.Files != 0 {
		t.Fatalf("expected one error and no files, got %v", counts)
	}
	if len(rec.entries) != 1 || !rec.entries[0].Degraded() {
		t.Fatalf("expected one degraded entry, got %+v", rec.entries)
	}
}

func TestFS_OpenDirHintsAndSingleBatch(t *testing.T) {
	fsys := &FS{client: newFakeSFTP(map[string]fakeNode{
		"/r":      {mode: os.ModeDir},
		"/r/d":    {mode: os.ModeDir},
		"/r/f":    {mode: 0},
		"/r/l":    {mode: os.ModeSymlink},
		"/r/pipe": {mode: os.ModeNamedPipe},
	})}

	h, err := fsys.OpenDir("/r")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer h.Close()

	batch, err := h.ReadBatch()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	hints := map[string]model.Hint{}
	for _, e := range batch {
		hints[e.Name] = e.Hint
	}
	want := map[string]model.Hint{
		"d":    model.HintDir,
		"f":    model.HintRegular,
		"l":    model.HintSymlink,
		"pipe": model.HintFIFO,
	}
	for name, hint := range want {
		if hints[name] != hint {
			t.Fatalf("expected hint %d for %s, got %d", hint, name, hints[name])
		}
	}
	if _, err := h.ReadBatch(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after the only batch, got %v", err)
	}
}

func TestFS_EmptyDirReturnsEOF(t *testing.T) {
	fsys := &FS{client: newFakeSFTP(map[string]fakeNode{
		"/empty": {mode: os.ModeDir},
	})}
	h, err := fsys.OpenDir("/empty")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := h.ReadBatch(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestStatusFromRemote_Ownership(t *testing.T) {
	info := fakeInfo{
		name:  "f",
		mode:  0o600,
		size:  42,
		mtime: time.Unix(1700000000, 0),
		sys:   &sftp.FileStat{UID: 1000, GID: 100},
	}
	st := statusFromRemote(info)
	if !st.HasOwner || st.UID != 1000 || st.GID != 100 {
		t.Fatalf("expected owner 1000:100, got %+v", st)
	}
	if st.Size != 42 || st.Mode != 0o600 {
		t.Fatalf("expected size 42 mode 0600, got %+v", st)
	}

	info.sys = nil
	if st := statusFromRemote(info); st.HasOwner {
		t.Fatal("expected no owner without sftp attributes")
	}
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "."},
		{in: "  ", want: "."},
		{in: ".", want: "."},
		{in: "/tmp/../var", want: "/var"},
		{in: "/srv/data/", want: "/srv/data"},
		{in: `C:\temp\x`, want: "C:/temp/x"},
	}

	for _, tc := range tests {
		if got := CleanPath(tc.in); got != tc.want {
			t.Fatalf("CleanPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDial_RejectsBadPort(t *testing.T) {
	_, err := Dial(context.Background(), Config{Target: "alice@example.com", Port: 0})
	if err == nil || !strings.Contains(err.Error(), "between 1 and 65535") {
		t.Fatalf("expected port error, got %v", err)
	}
}

func TestFS_CloseWithoutConnection(t *testing.T) {
	if err := (&FS{}).Close(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestConnectSSH_RespectsContextCancellation(t *testing.T) {
	origDial := dialContext
	origNewClientConn := sshNewClientConn
	t.Cleanup(func() {
		dialContext = origDial
		sshNewClientConn = origNewClientConn
	})

	dialCalled := false
	handshakeCalled := false

	dialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
		dialCalled = true
		<-ctx.Done()
		return nil, ctx.Err()
	}
	sshNewClientConn = func(net.Conn, string, *ssh.ClientConfig) (ssh.Conn, <-chan ssh.NewChannel, <-chan *ssh.Request, error) {
		handshakeCalled = true
		return nil, nil, nil, errors.New("unexpected handshake call")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := connectSSH(ctx, "example.com:22", &ssh.ClientConfig{
		User:            "user",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !dialCalled {
		t.Fatal("expected dial to be called")
	}
	if handshakeCalled {
		t.Fatal("did not expect SSH handshake to start after canceled dial")
	}
}

type entryRecorder struct {
	entries []model.Entry
}

func (r *entryRecorder) WriteEntry(e model.Entry) {
	r.entries = append(r.entries, e)
}

// lines renders path:tag pairs in sorted order; SFTP servers do not promise
// a listing order.
func (r *entryRecorder) lines() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Path+":"+e.Type.Tag())
	}
	sort.Strings(out)
	return out
}

type fakeNode struct {
	mode       os.FileMode
	size       int64
	errOnRead  bool
	errOnLstat bool
}

// fakeSFTP serves a flat path map. Children are derived from path prefixes.
type fakeSFTP struct {
	nodes map[string]fakeNode
}

func newFakeSFTP(nodes map[string]fakeNode) *fakeSFTP {
	return &fakeSFTP{nodes: nodes}
}

func (f *fakeSFTP) ReadDir(dir string) ([]os.FileInfo, error) {
	node, ok := f.nodes[dir]
	if !ok {
		return nil, os.ErrNotExist
	}
	if !node.mode.IsDir() {
		return nil, fmt.Errorf("not a directory")
	}
	if node.errOnRead {
		return nil, os.ErrPermission
	}

	var names []string
	for p := range f.nodes {
		if p != dir && pathpkg.Dir(p) == dir {
			names = append(names, pathpkg.Base(p))
		}
	}
	sort.Strings(names)

	out := make([]os.FileInfo, 0, len(names))
	for _, name := range names {
		child := f.nodes[pathpkg.Join(dir, name)]
		out = append(out, fakeInfo{name: name, mode: child.mode, size: child.size})
	}
	return out, nil
}

func (f *fakeSFTP) Lstat(p string) (os.FileInfo, error) {
	node, ok := f.nodes[p]
	if !ok {
		return nil, os.ErrNotExist
	}
	if node.errOnLstat {
		return nil, os.ErrPermission
	}
	return fakeInfo{
		name: pathpkg.Base(p),
		mode: node.mode,
		size: node.size,
		sys:  &sftp.FileStat{UID: 1000, GID: 1000},
	}, nil
}

type fakeInfo struct {
	name  string
	size  int64
	mode  os.FileMode
	mtime time.Time
	sys   any
}

func (fi fakeInfo) Name() string       { return fi.name }
func (fi fakeInfo) Size() int64        { return fi.size }
func (fi fakeInfo) Mode() os.FileMode  { return fi.mode }
func (fi fakeInfo) ModTime() time.Time { return fi.mtime }
func (fi fakeInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi fakeInfo) Sys() any           { return fi.sys }
