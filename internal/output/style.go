package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/sadopc/treezy/internal/model"
)

// ColorMode controls when type tags are colored.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a color mode name.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("invalid color mode %q: must be one of auto, always, never", s)
	}
}

// UseColor resolves mode against the destination. Auto colors only a
// terminal and honors NO_COLOR.
func UseColor(mode ColorMode, f *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || f == nil {
		return false
	}
	fd := f.Fd()
	return term.IsTerminal(int(fd)) || isatty.IsCygwinTerminal(fd)
}

type styles struct {
	enabled bool
	file    lipgloss.Style
	dir     lipgloss.Style
	link    lipgloss.Style
}

func newStyles(out io.Writer, enabled bool) styles {
	if !enabled {
		return styles{}
	}
	// The caller already decided on color, so pin the profile instead of
	// letting the renderer sniff out.
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(termenv.ANSI)
	return styles{
		enabled: true,
		file:    r.NewStyle().Foreground(lipgloss.Color("2")),
		dir:     r.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		link:    r.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

func (s styles) tag(t model.EntryType) string {
	tag := t.Tag()
	if !s.enabled {
		return tag
	}
	switch t {
	case model.TypeRegular:
		return s.file.Render(tag)
	case model.TypeDirectory:
		return s.dir.Render(tag)
	case model.TypeSymlink:
		return s.link.Render(tag)
	default:
		return tag
	}
}
