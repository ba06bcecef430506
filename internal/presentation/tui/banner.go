package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Parley banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Warm apothecary tones, top to bottom.
	lines := []struct {
		text  string
		color string
	}{
		{`  ____            _            `, "#d97706"},
		{` |  _ \ __ _ _ __| | ___ _   _ `, "#ea580c"},
		{` | |_) / _' | '__| |/ _ \ | | |`, "#dc2626"},
		{` |  __/ (_| | |  | |  __/ |_| |`, "#be123c"},
		{` |_|   \__,_|_|  |_|\___|\__, |`, "#9d174d"},
		{`                         |___/ `, "#86198f"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String(" v"+version).Faint())
	fmt.Fprintln(w)
}
