package pianoroll

import (
	"fmt"
	"math"
)

const (
	// NumPitches is the number of MIDI pitches (0-127)
	NumPitches = 128
	// MaxVelocity is the loudest MIDI velocity
	MaxVelocity = 127
	// MaxSteps bounds the time axis of a rasterized roll
	MaxSteps = 1 << 21
)

// Matrix is a pitch × time-step grid of velocities.
// Column t covers the interval [t/fs, (t+1)/fs).
type Matrix struct {
	pitches int
	steps   int
	cells   []uint8 // pitch-major
}

// NewMatrix returns a silent matrix with the given shape
func NewMatrix(pitches, steps int) *Matrix {
	if pitches < 0 {
		pitches = 0
	}
	if steps < 0 {
		steps = 0
	}
	return &Matrix{
		pitches: pitches,
		steps:   steps,
		cells:   make([]uint8, pitches*steps),
	}
}

// FromRows builds a matrix from pitch-major rows, rejecting ragged rows
// and velocities outside [0,127].
func FromRows(rows [][]int) (*Matrix, error) {
	steps := 0
	if len(rows) > 0 {
		steps = len(rows[0])
	}

	m := NewMatrix(len(rows), steps)
	for p, row := range rows {
		if len(row) != steps {
			return nil, fmt.Errorf("%w: row %d has %d steps, want %d", ErrRaggedMatrix, p, len(row), steps)
		}
		for t, v := range row {
			if v < 0 || v > MaxVelocity {
				return nil, fmt.Errorf("%w: got %d at pitch %d, step %d", ErrVelocityRange, v, p, t)
			}
			m.cells[p*steps+t] = uint8(v)
		}
	}
	return m, nil
}

// Pitches returns the number of pitch rows
func (m *Matrix) Pitches() int { return m.pitches }

// Steps returns the number of time-step columns
func (m *Matrix) Steps() int { return m.steps }

// At returns the velocity at pitch p and step t, or 0 outside the matrix.
func (m *Matrix) At(p, t int) uint8 {
	if p < 0 || p >= m.pitches || t < 0 || t >= m.steps {
		return 0
	}
	return m.cells[p*m.steps+t]
}

// Set stores a velocity; values above MaxVelocity are clamped and
// coordinates outside the matrix are ignored.
func (m *Matrix) Set(p, t int, v uint8) {
	if p < 0 || p >= m.pitches || t < 0 || t >= m.steps {
		return
	}
	if v > MaxVelocity {
		v = MaxVelocity
	}
	m.cells[p*m.steps+t] = v
}

// Row returns a copy of one pitch row
func (m *Matrix) Row(p int) []uint8 {
	row := make([]uint8, m.steps)
	if p >= 0 && p < m.pitches {
		copy(row, m.cells[p*m.steps:(p+1)*m.steps])
	}
	return row
}

// Rows returns the matrix as pitch-major integer rows
func (m *Matrix) Rows() [][]int {
	rows := make([][]int, m.pitches)
	for p := range rows {
		rows[p] = make([]int, m.steps)
		for t := range rows[p] {
			rows[p][t] = int(m.cells[p*m.steps+t])
		}
	}
	return rows
}

// Transpose returns a new matrix with pitches and steps swapped.
func (m *Matrix) Transpose() *Matrix {
	out := NewMatrix(m.steps, m.pitches)
	for p := 0; p < m.pitches; p++ {
		for t := 0; t < m.steps; t++ {
			out.cells[t*out.steps+p] = m.cells[p*m.steps+t]
		}
	}
	return out
}

// IsSilent reports whether every cell is zero
func (m *Matrix) IsSilent() bool {
	for _, v := range m.cells {
		if v != 0 {
			return false
		}
	}
	return true
}

// PitchRange returns the lowest and highest sounding pitch.
// ok is false for a silent matrix.
func (m *Matrix) PitchRange() (low, high int, ok bool) {
	low, high = -1, -1
	for p := 0; p < m.pitches; p++ {
		for t := 0; t < m.steps; t++ {
			if m.cells[p*m.steps+t] == 0 {
				continue
			}
			if low < 0 {
				low = p
			}
			high = p
			break
		}
	}
	return low, high, low >= 0
}

// Duration returns the time covered by the matrix at sampling rate fs
func (m *Matrix) Duration(fs float64) float64 {
	if fs <= 0 {
		return 0
	}
	return float64(m.steps) / fs
}

// Equal reports whether two matrices have the same shape and cells
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.pitches != o.pitches || m.steps != o.steps {
		return false
	}
	for i := range m.cells {
		if m.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Resize returns a copy with the given number of steps, padding with
// silence or truncating at the end.
func (m *Matrix) Resize(steps int) *Matrix {
	out := NewMatrix(m.pitches, steps)
	n := min(steps, m.steps)
	for p := 0; p < m.pitches; p++ {
		copy(out.cells[p*out.steps:p*out.steps+n], m.cells[p*m.steps:p*m.steps+n])
	}
	return out
}

// ValidSampleRate reports whether fs can be used as a sampling rate
func ValidSampleRate(fs float64) bool {
	return fs > 0 && !math.IsInf(fs, 0) && !math.IsNaN(fs)
}

// StepAt converts a time in seconds to the nearest column index
func StepAt(seconds, fs float64) int {
	return int(math.Round(seconds * fs))
}

// CheckSteps fails with ErrTooLarge when a roll lasting seconds, sampled
// at fs, would have more than limit columns
func CheckSteps(seconds, fs float64, limit int) error {
	if steps := math.Round(seconds * fs); steps > float64(limit) {
		return fmt.Errorf("%w: %.0f steps, limit %d", ErrTooLarge, steps, limit)
	}
	return nil
}
