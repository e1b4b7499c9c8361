// Package render draws piano-roll matrices, either as PNG images or as
// plots for the terminal.
package render

import (
	"errors"

	"github.com/kattn/djgenetics/pkg/pianoroll"
)

// octave is the smallest pitch window drawn
const octave = 12

var errNilMatrix = errors.New("render: nil matrix")

// Options sizes the cells of a rendered image
type Options struct {
	CellWidth  float64
	CellHeight float64
}

// DefaultOptions returns the cell size used when none is configured
func DefaultOptions() Options {
	return Options{CellWidth: 8, CellHeight: 6}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.CellWidth <= 0 {
		o.CellWidth = d.CellWidth
	}
	if o.CellHeight <= 0 {
		o.CellHeight = d.CellHeight
	}
	return o
}

// pitchWindow returns the pitch rows worth drawing: the active range,
// widened around its centre to at least an octave. A silent matrix shows
// the octave starting at middle C.
func pitchWindow(m *pianoroll.Matrix) (low, high int) {
	top := m.Pitches() - 1
	if top < 0 {
		return 0, -1
	}

	low, high, ok := m.PitchRange()
	if !ok {
		low, high = 60, 60+octave-1
		if high > top {
			low, high = 0, min(octave-1, top)
		}
		return low, high
	}

	if span := high - low + 1; span < octave {
		low -= (octave - span) / 2
		high = low + octave - 1
	}
	if low < 0 {
		high -= low
		low = 0
	}
	if high > top {
		low -= high - top
		high = top
	}
	return max(low, 0), high
}

// isBlackKey reports whether a pitch falls on a black piano key
func isBlackKey(pitch int) bool {
	switch pitch % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}
