package pianoroll

// EncodeOptions controls how velocity runs become notes
type EncodeOptions struct {
	// MergeVelocityChanges keeps a note running when its velocity changes
	// from one non-zero value to another; the note keeps its onset
	// velocity and ends at the next silent step. When false, every change
	// closes the running note and opens a new one.
	MergeVelocityChanges bool
}

// Encode converts a matrix sampled at fs steps per second into notes,
// sorted by start time then pitch.
func Encode(m *Matrix, fs float64) ([]Note, error) {
	return EncodeWithOptions(m, fs, EncodeOptions{})
}

// EncodeWithOptions is Encode with an explicit velocity-change policy.
//
// The time axis is treated as if padded with a silent column on both
// sides, so runs touching the first or last column still produce an
// onset and an offset. A step t is an edge for pitch p when its velocity
// differs from step t-1; the edge happens at t/fs seconds.
func EncodeWithOptions(m *Matrix, fs float64, opts EncodeOptions) ([]Note, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	if !ValidSampleRate(fs) {
		return nil, ErrInvalidSampleRate
	}
	if m.pitches > NumPitches {
		return nil, ErrTooManyPitches
	}

	onVelocity := make([]uint8, m.pitches)
	onTime := make([]float64, m.pitches)
	notes := make([]Note, 0)

	for t := 0; t <= m.steps; t++ {
		at := float64(t) / fs
		for p := 0; p < m.pitches; p++ {
			prev := m.At(p, t-1)
			cur := m.At(p, t)
			if cur == prev {
				continue
			}

			switch {
			case cur == 0:
				notes = append(notes, Note{
					Pitch:    uint8(p),
					Velocity: onVelocity[p],
					Start:    onTime[p],
					End:      at,
				})
				onVelocity[p] = 0
			case onVelocity[p] == 0:
				onVelocity[p] = cur
				onTime[p] = at
			case !opts.MergeVelocityChanges:
				notes = append(notes, Note{
					Pitch:    uint8(p),
					Velocity: onVelocity[p],
					Start:    onTime[p],
					End:      at,
				})
				onVelocity[p] = cur
				onTime[p] = at
			}
		}
	}

	SortNotes(notes)
	return notes, nil
}
