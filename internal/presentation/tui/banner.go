package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"      _             _            _   ", "#22d3ee"},
	{"   __| |_   _ _ __ | |_ _____  _| |_ ", "#38bdf8"},
	{"  / _` | | | | '_ \\| __/ _ \\ \\/ / __|", "#60a5fa"},
	{" | (_| | |_| | | | | ||  __/>  <| |_ ", "#818cf8"},
	{"  \\__,_|\\__, |_| |_|\\__\\___/_/\\_\\\\__|", "#a78bfa"},
	{"        |___/                        ", "#c084fc"},
}

// PrintBanner writes the dyntext banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
