package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the arbor banner with the version in the corner.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text, color string
	}{
		{"                 _               ", "#34d399"},
		{"   __ _ _ __ ___| |__   ___  _ __ ", "#10b981"},
		{"  / _` | '__/ _ \\ '_ \\ / _ \\| '__|", "#059669"},
		{" | (_| | | |  __/ |_) | (_) | |   ", "#047857"},
		{"  \\__,_|_|  \\___|_.__/ \\___/|_|   ", "#065f46"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, p.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
