package pianoroll

// Rasterize samples notes onto a grid of fs steps per second with one row
// per pitch. A note covers columns [round(start*fs), round(end*fs)); when
// notes of the same pitch overlap, the later note in the slice wins.
// The matrix spans up to the latest note end. Notes with a pitch outside
// [0, pitches) are skipped. Rolls longer than MaxSteps fail with
// ErrTooLarge.
func Rasterize(notes []Note, fs float64, pitches int) (*Matrix, error) {
	if !ValidSampleRate(fs) {
		return nil, ErrInvalidSampleRate
	}
	if pitches < 0 {
		return nil, ErrInvalidShape
	}
	if err := CheckSteps(EndTime(notes), fs, MaxSteps); err != nil {
		return nil, err
	}

	m := NewMatrix(pitches, StepAt(EndTime(notes), fs))
	for _, n := range notes {
		p := int(n.Pitch)
		if p >= pitches {
			continue
		}
		from := max(StepAt(n.Start, fs), 0)
		to := min(StepAt(n.End, fs), m.steps)
		v := min(n.Velocity, MaxVelocity)
		for t := from; t < to; t++ {
			m.cells[p*m.steps+t] = v
		}
	}
	return m, nil
}
