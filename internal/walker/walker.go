package walker

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/sadopc/treezy/internal/model"
)

// ErrOpenDir marks a directory that could not be opened for listing.
var ErrOpenDir = errors.New("error opening directory")

// EntryWriter receives exactly one record per visited entry.
type EntryWriter interface {
	WriteEntry(model.Entry)
}

// Walker performs a sequential depth-first walk. It is not safe for
// concurrent use: the path buffer is shared across the recursion.
type Walker struct {
	fsys FS
	out  EntryWriter
	opts Options
	diag io.Writer
	log  *slog.Logger
	buf  *pathBuf
}

// New creates a walker over fsys that reports entries to out.
func New(fsys FS, out EntryWriter, opts Options) *Walker {
	diag := opts.Diagnostics
	if diag == nil {
		diag = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Walker{
		fsys: fsys,
		out:  out,
		opts: opts,
		diag: diag,
		log:  logger,
		buf:  newPathBuf(fsys.Separator(), opts.MaxPath),
	}
}

// Walk lists path and, when recurse is set, every directory beneath it.
//
// The returned counts include every error recorded during the walk. The error
// is non-nil only when path itself could not be listed; failures further down
// are counted and the walk carries on with the next sibling.
//
// An empty path is a programming error and panics.
func (w *Walker) Walk(path string, recurse bool) (model.Counts, error) {
	if path == "" {
		panic("walker: Walk called with an empty path")
	}
	if err := w.buf.reset(path); err != nil {
		fmt.Fprintf(w.diag, "path too long: %s\n", path)
		w.log.Debug("path too long", "path", path, "max", w.buf.max)
		return model.Counts{Errors: 1}, fmt.Errorf("%q: %w", path, err)
	}
	return w.walkDir(recurse, 1)
}

// walkDir lists the directory currently held in the path buffer.
func (w *Walker) walkDir(recurse bool, depth int) (model.Counts, error) {
	var counts model.Counts
	dirPath := w.buf.String()

	w.log.Debug("visit", "path", dirPath, "recurse", recurse, "depth", depth)

	dir, err := w.fsys.OpenDir(dirPath)
	if err != nil {
		counts.Errors++
		fmt.Fprintf(w.diag, "error opening directory '%s'\n", dirPath)
		w.log.Debug("open failed", "path", dirPath, "error", err)
		return counts, fmt.Errorf("%w '%s': %w", ErrOpenDir, dirPath, err)
	}
	defer func() {
		if err := dir.Close(); err != nil {
			w.log.Debug("close failed", "path", dirPath, "error", err)
		}
	}()

	visit := func(entries []DirEntry) {
		for _, e := range entries {
			counts.Add(w.visit(e, recurse, depth))
		}
	}

	var pending []DirEntry
	for {
		batch, err := dir.ReadBatch()
		if w.opts.Sort {
			pending = append(pending, batch...)
		} else {
			visit(batch)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			counts.Errors++
			fmt.Fprintf(w.diag, "error reading directory '%s'\n", dirPath)
			w.log.Debug("read failed", "path", dirPath, "error", err)
			break
		}
	}

	if w.opts.Sort {
		sort.SliceStable(pending, func(i, j int) bool {
			return model.NameLess(pending[i].Name, pending[j].Name)
		})
		visit(pending)
	}

	return counts, nil
}

// visit handles one listing entry: build its path, stat it, classify,
// report, and descend if it is a directory.
func (w *Walker) visit(e DirEntry, recurse bool, depth int) model.Counts {
	var counts model.Counts
	if e.Name == "." || e.Name == ".." {
		return counts
	}

	mark, err := w.buf.push(e.Name)
	if err != nil {
		full := w.buf.join(e.Name)
		counts.Errors++
		fmt.Fprintf(w.diag, "path too long: %s\n", full)
		w.log.Debug("path too long", "path", full, "max", w.buf.max, "error", err)
		w.out.WriteEntry(model.Entry{Path: full, Ino: e.Ino, Hint: e.Hint})
		return counts
	}
	defer w.buf.pop(mark)

	entry := model.Entry{Path: w.buf.String(), Ino: e.Ino, Hint: e.Hint}

	st, err := w.fsys.Lstat(entry.Path)
	if err != nil {
		counts.Errors++
		fmt.Fprintf(w.diag, "stat failed for %s\n", entry.Path)
		w.log.Debug("lstat failed", "path", entry.Path, "error", err)
		w.out.WriteEntry(entry)
		return counts
	}

	if w.opts.Skip != nil && w.opts.Skip(st) {
		return counts
	}

	entry.Stat = &st
	entry.Type = model.Classify(e.Hint, st.Mode)
	if !model.HintAgrees(e.Hint, st.Mode) {
		w.log.Debug("listing hint overridden by lstat",
			"path", entry.Path, "hint", uint8(e.Hint), "type", entry.Type.String())
	}

	counts.Record(entry.Type)
	w.out.WriteEntry(entry)

	if entry.Type == model.TypeDirectory && recurse && w.descend(depth) {
		// A subdirectory that fails to open is already counted; its error
		// stays local to that subtree.
		sub, _ := w.walkDir(true, depth+1)
		counts.Add(sub)
	}

	return counts
}

func (w *Walker) descend(depth int) bool {
	return w.opts.MaxDepth <= 0 || depth < w.opts.MaxDepth
}
