package render

import (
	"hash/fnv"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
)

// palette is the fixed set of bright foreground colors labels hash onto.
// Hashing keeps a label's color stable within a run while staying
// distinguishable across labels.
var palette = []text.Color{
	text.FgHiGreen,
	text.FgHiYellow,
	text.FgHiBlue,
	text.FgHiMagenta,
	text.FgHiCyan,
	text.FgHiRed,
	text.FgHiWhite,
}

// ColorFor deterministically picks a color for the given label.
func ColorFor(label string) text.Colors {
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	return text.Colors{palette[h.Sum32()%uint32(len(palette))]}
}

// Colorize renders the label in its hashed color.
func Colorize(label string) string {
	return ColorFor(label).Sprint(label)
}

func Green(s string) string  { return text.FgGreen.Sprint(s) }
func Yellow(s string) string { return text.FgYellow.Sprint(s) }
func Cyan(s string) string   { return text.FgCyan.Sprint(s) }
func Red(s string) string    { return text.FgRed.Sprint(s) }

// TerminalWidth returns the current terminal width in characters, or 80
// when stdout is not a terminal.
func TerminalWidth() int {
	if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 {
		return cols
	}
	return 80
}

// SetupColors disables color output when stdout is not a terminal.
func SetupColors() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		text.DisableColors()
	}
}
