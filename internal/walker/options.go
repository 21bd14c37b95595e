package walker

import (
	"io"
	"log/slog"

	"github.com/sadopc/treezy/internal/model"
)

// Options configures a Walker.
type Options struct {
	// MaxPath caps the length of any constructed path (0 = DefaultMaxPath).
	MaxPath int
	// MaxDepth limits how many directory levels are listed (0 = unlimited).
	// The starting directory is level 1.
	MaxDepth int
	// Sort lists each directory in natural name order instead of the order
	// the filesystem returns.
	Sort bool
	// Diagnostics receives one human-readable line per recorded error.
	Diagnostics io.Writer
	// Logger receives debug traces. Nil discards them.
	Logger *slog.Logger
	// Skip, when set, drops an entry whose status it matches: no record,
	// no count, no recursion.
	Skip func(model.Status) bool
}

// DefaultOptions returns the options matching the classic behavior: no depth
// limit, listing order, diagnostics discarded until the caller sets them.
func DefaultOptions() Options {
	return Options{
		MaxPath:     DefaultMaxPath,
		MaxDepth:    0,
		Sort:        false,
		Diagnostics: io.Discard,
	}
}
