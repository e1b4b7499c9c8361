package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kattn/djgenetics/pkg/pianoroll"
	"golang.org/x/term"
)

const (
	// DefaultWidth is used when the terminal width cannot be detected
	DefaultWidth = 80
	labelColumns = 5
)

// shades are the glyphs for increasing velocity quartiles
var shades = []string{"░", "▒", "▓", "█"}

// Symbols used by the terminal plot
const (
	symbolRest   = "·"
	symbolSecond = "|"
	symbolAxis   = "-"
)

// TerminalWidth returns the width of the terminal on stdout
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// Terminal writes a text plot of the matrix to w. Time is down-sampled
// to fit width columns, keeping the loudest velocity of each window;
// width 0 means the width of the terminal.
func Terminal(w io.Writer, m *pianoroll.Matrix, fs float64, width int) error {
	if m == nil {
		return errNilMatrix
	}
	if !pianoroll.ValidSampleRate(fs) {
		return pianoroll.ErrInvalidSampleRate
	}
	if width <= 0 {
		width = TerminalWidth()
	}

	r := lipgloss.NewRenderer(w)
	labelStyle := r.NewStyle().Width(labelColumns).Foreground(lipgloss.Color("#888"))
	restStyle := r.NewStyle().Foreground(lipgloss.Color("#555"))
	noteStyles := make([]lipgloss.Style, len(shades))
	for i, c := range []string{"#5f87ff", "#af5fff", "#ff5faf", "#ffaf00"} {
		noteStyles[i] = r.NewStyle().Foreground(lipgloss.Color(c))
	}

	columns := max(width-labelColumns, 1)
	factor := 1
	if m.Steps() > columns {
		factor = (m.Steps() + columns - 1) / columns
	}
	cols := (m.Steps() + factor - 1) / factor

	var b strings.Builder
	low, high := pitchWindow(m)
	for p := high; p >= low; p-- {
		label := ""
		if p%12 == 0 || p == high || p == low {
			label = pianoroll.NoteName(p)
		}
		b.WriteString(labelStyle.Render(label))

		for c := 0; c < cols; c++ {
			v := windowMax(m, p, c*factor, factor)
			if v == 0 {
				b.WriteString(restStyle.Render(symbolRest))
				continue
			}
			q := shade(v)
			b.WriteString(noteStyles[q].Render(shades[q]))
		}
		b.WriteByte('\n')
	}

	b.WriteString(strings.Repeat(" ", labelColumns))
	b.WriteString(restStyle.Render(secondsAxis(cols, factor, fs)))
	b.WriteByte('\n')

	fmt.Fprintf(&b, "%s%.2fs at %g steps/s", strings.Repeat(" ", labelColumns), m.Duration(fs), fs)
	if factor > 1 {
		fmt.Fprintf(&b, ", %d steps per column", factor)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// windowMax returns the loudest velocity of pitch p in steps [from, from+n)
func windowMax(m *pianoroll.Matrix, p, from, n int) uint8 {
	var v uint8
	for t := from; t < from+n && t < m.Steps(); t++ {
		v = max(v, m.At(p, t))
	}
	return v
}

func shade(v uint8) int {
	return (int(v) - 1) * len(shades) / pianoroll.MaxVelocity
}

// secondsAxis marks every column holding the start of a second. Column c
// covers steps [c*factor, (c+1)*factor) and second s lands on step
// round(s*fs), so c is marked when some whole s satisfies
// c*factor-0.5 <= s*fs < (c+1)*factor-0.5.
func secondsAxis(cols, factor int, fs float64) string {
	axis := make([]string, cols)
	for c := range axis {
		from := float64(c*factor) - 0.5
		to := float64((c+1)*factor) - 0.5
		s := math.Ceil(max(from, 0) / fs)
		if s*fs < to {
			axis[c] = symbolSecond
		} else {
			axis[c] = symbolAxis
		}
	}
	return strings.Join(axis, "")
}
