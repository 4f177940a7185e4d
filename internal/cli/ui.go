package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode accepts "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid --color %q: use auto, always or never", s)
}

// UI writes status lines to stderr so stdout carries only converted data.
type UI struct {
	out   *termenv.Output
	quiet bool
}

// NewUI creates a UI writing to w. NO_COLOR disables color in every mode.
func NewUI(w io.Writer, mode ColorMode, quiet bool) *UI {
	if os.Getenv("NO_COLOR") != "" {
		mode = ColorNever
	}

	profile := termenv.Ascii
	switch mode {
	case ColorAlways:
		profile = termenv.EnvColorProfile()
		if profile == termenv.Ascii {
			profile = termenv.ANSI256
		}
	case ColorAuto:
		if isTerminal(w) {
			profile = termenv.EnvColorProfile()
		}
	}

	return &UI{
		out:   termenv.NewOutput(w, termenv.WithProfile(profile)),
		quiet: quiet,
	}
}

// Success prints a green status line. Suppressed by --quiet.
func (u *UI) Success(format string, args ...any) {
	if u.quiet {
		return
	}
	u.print("✓ ", termenv.ANSIGreen, format, args...)
}

// Info prints a blue status line. Suppressed by --quiet.
func (u *UI) Info(format string, args ...any) {
	if u.quiet {
		return
	}
	u.print("ℹ ", termenv.ANSIBlue, format, args...)
}

// Warning prints a yellow line. Always shown.
func (u *UI) Warning(format string, args ...any) {
	u.print("⚠ ", termenv.ANSIYellow, format, args...)
}

// Error prints a red line. Always shown.
func (u *UI) Error(format string, args ...any) {
	u.print("✗ ", termenv.ANSIRed, format, args...)
}

func (u *UI) print(prefix string, color termenv.ANSIColor, format string, args ...any) {
	msg := prefix + fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(u.out, u.out.String(msg).Foreground(color))
}

// isTerminal reports whether v is an *os.File attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
