package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sadopc/treezy/internal/config"
	"github.com/sadopc/treezy/internal/model"
	"github.com/sadopc/treezy/internal/output"
	"github.com/sadopc/treezy/internal/remote"
	"github.com/sadopc/treezy/internal/walker"
)

// walk runs one walk and reports the exit code. A returned error means the
// walk never started or its output could not be written.
func (c *CLI) walk(ctx context.Context, cfg config.Config, tgt target) (int, error) {
	logger := newLogger(c.stderr, cfg.Debug)
	if cfg.File != "" {
		logger.Debug("config", "file", cfg.File)
	}

	fsys, root, closeFS, err := openFS(ctx, cfg, tgt)
	if err != nil {
		return 1, err
	}
	defer closeFS()

	dest := c.stdout
	var file *output.File
	if cfg.Output != "" && cfg.Output != "-" {
		if file, err = output.CreateFile(cfg.Output); err != nil {
			return 1, err
		}
		defer file.Abort()
		dest = file
	}

	var skip func(model.Status) bool
	if file != nil && !tgt.Remote {
		skip = skipOutputFile(fsys, file.Name(), logger)
	}

	out, err := output.New(cfg.Format, dest, output.Options{
		ShowHint: cfg.ShowHint,
		Color:    output.UseColor(cfg.Color, asFile(dest)),
	})
	if err != nil {
		return 1, err
	}

	w := walker.New(fsys, out, walker.Options{
		MaxPath:     cfg.MaxPath,
		MaxDepth:    cfg.MaxDepth,
		Sort:        cfg.Sort,
		Diagnostics: c.stderr,
		Logger:      logger,
		Skip:        skip,
	})

	start := time.Now()
	counts, walkErr := w.Walk(root, cfg.Recurse)
	if walkErr != nil {
		// The starting directory could not be listed. Its diagnostic is
		// already on stderr and there is no summary to print.
		logger.Debug("walk aborted", "path", root, "err", walkErr)
		if err := out.Flush(); err != nil {
			return 1, err
		}
		return 1, nil
	}

	out.WriteSummary(counts)
	if err := out.Flush(); err != nil {
		return 1, err
	}
	if file != nil {
		if err := file.Commit(); err != nil {
			return 1, fmt.Errorf("writing %s: %w", cfg.Output, err)
		}
	}

	logger.Debug("walk finished",
		"entries", humanize.Comma(counts.Total()),
		"errors", humanize.Comma(counts.Errors),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if !counts.OK() {
		return 1, nil
	}
	return 0, nil
}

// openFS picks the backend for tgt and returns it with the path to start
// from and a function that releases it.
//
// Ctrl-C cancels only a pending SSH dial. The walk itself is not cancellable,
// so once the backend is open the default SIGINT behavior applies again.
func openFS(ctx context.Context, cfg config.Config, tgt target) (walker.FS, string, func(), error) {
	if !tgt.Remote {
		return walker.Local(), tgt.Path, func() {}, nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fsys, err := remote.Dial(ctx, remote.Config{
		Target:    tgt.Dest,
		Port:      cfg.SSHPort,
		BatchMode: cfg.SSHBatch,
		Timeout:   cfg.SSHTimeout,
	})
	if err != nil {
		return nil, "", nil, fmt.Errorf("connecting to %s: %w", tgt.Dest, err)
	}
	return fsys, remote.CleanPath(tgt.Path), func() { _ = fsys.Close() }, nil
}

// skipOutputFile matches the temp file behind --output, which sits inside
// the walked tree whenever the destination does. Backends without inode
// numbers cannot tell it apart, so nothing is skipped there.
func skipOutputFile(fsys walker.FS, path string, logger *slog.Logger) func(model.Status) bool {
	self, err := fsys.Lstat(path)
	if err != nil || self.Ino == 0 {
		return nil
	}
	return func(st model.Status) bool {
		if st.Ino != self.Ino || st.Dev != self.Dev {
			return false
		}
		logger.Debug("skipping output file", "path", path)
		return true
	}
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	if !debug {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func asFile(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}
