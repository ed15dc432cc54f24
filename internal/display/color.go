package display

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Color modes accepted by ResolveColor.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ValidColorMode reports whether mode is a known color mode.
func ValidColorMode(mode string) bool {
	switch mode {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	}
	return false
}

// ResolveColor decides whether output to w is colorized. In auto mode color is
// used only when w is a terminal and NO_COLOR is unset.
func ResolveColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case ColorAlways:
		return true, nil
	case ColorNever:
		return false, nil
	case ColorAuto, "":
		return isTerminal(w) && os.Getenv("NO_COLOR") == "", nil
	default:
		return false, fmt.Errorf("invalid color mode %q (want auto, always or never)", mode)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// paint returns a color that ignores the global NO_COLOR detection; callers
// decide up front whether to colorize.
func paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}
